// Package registry implements the Market Registry and Diff Engine.
//
// The registry is the authoritative in-memory mapping of market id to
// Market. It is replaced wholesale by Reset on the first successful
// snapshot and thereafter mutated only through ApplyDiff. Diffs are
// computed against either a full poll snapshot (absence means removal) or
// a partial push update (only the mentioned markets participate).
//
// Go runs this preemptively, so unlike a run-to-completion runtime the
// registry guards itself with a mutex; ApplyDiff is the single serialized
// write path.
package registry
