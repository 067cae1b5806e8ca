// Package api provides the single-flight HTTP client for the exchange's
// pollable resources.
//
// Resources are described by Endpoint values: a URL template with named
// {placeholders}, an in-flight flag, and a cancellation handle. At most one
// request per endpoint is ever in flight; concurrent callers are dropped
// with ErrRequestIgnored rather than queued.
//
// Error taxonomy:
//   - ErrRequestIgnored: endpoint busy (benign, drop)
//   - ErrCancelled: cooperative abort (benign, drop)
//   - TransportError: non-success status or network failure
//   - APIError: logical failure embedded in an otherwise-successful body
package api
