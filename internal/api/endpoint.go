package api

import (
	"context"
	"strings"
	"sync"
)

// Endpoint describes one pollable remote resource: a URL template with
// named {placeholders}, an in-flight flag, and the cancellation handle for
// whatever request is currently running. Created once at startup and
// toggled per request, never destroyed.
type Endpoint struct {
	name     string
	template string

	mu       sync.Mutex
	inFlight bool
	cancel   context.CancelFunc
}

// NewEndpoint creates an endpoint descriptor for a URL template.
func NewEndpoint(name, template string) *Endpoint {
	return &Endpoint{
		name:     name,
		template: template,
	}
}

// Name returns the endpoint's log-friendly name.
func (e *Endpoint) Name() string {
	return e.name
}

// InFlight reports whether a request is currently running.
func (e *Endpoint) InFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// Cancel aborts whatever request is in flight. No-op when idle; idempotent.
func (e *Endpoint) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// expand substitutes params into the template's {name} placeholders.
func (e *Endpoint) expand(params map[string]string) string {
	url := e.template
	for key, val := range params {
		url = strings.ReplaceAll(url, "{"+key+"}", val)
	}
	return url
}

// begin claims the endpoint for a request. Returns false if one is already
// in flight (the caller must then drop, not queue).
func (e *Endpoint) begin(cancel context.CancelFunc) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inFlight {
		return false
	}
	e.inFlight = true
	e.cancel = cancel
	return true
}

// finish releases the endpoint. Called on every outcome.
func (e *Endpoint) finish() {
	e.mu.Lock()
	e.inFlight = false
	e.cancel = nil
	e.mu.Unlock()
}
