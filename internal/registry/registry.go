package registry

import (
	"log/slog"
	"sync"

	"github.com/dmarsh/market-mirror/internal/model"
)

// Registry is the authoritative mapping of market id to Market.
type Registry struct {
	logger *slog.Logger

	mu      sync.RWMutex
	markets map[int64]model.Market
	primed  bool
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		markets: make(map[int64]model.Market),
	}
}

// Primed reports whether the registry has received its first snapshot.
func (r *Registry) Primed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.primed
}

// Len returns the number of markets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markets)
}

// Get returns a market by id.
func (r *Registry) Get(id int64) (model.Market, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markets[id]
	return m, ok
}

// Markets returns a copy of the full registry contents.
func (r *Registry) Markets() map[int64]model.Market {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]model.Market, len(r.markets))
	for id, m := range r.markets {
		out[id] = m
	}
	return out
}

// Reset replaces the registry wholesale from a snapshot. Used once, for the
// first successful snapshot fetch; later snapshots go through
// ComputeSnapshotDiff + ApplyDiff.
func (r *Registry) Reset(snap model.Snapshot) {
	markets := make(map[int64]model.Market, len(snap))
	for pair, e := range snap {
		markets[e.ID] = model.NewMarket(pair, e)
	}

	r.mu.Lock()
	r.markets = markets
	r.primed = true
	r.mu.Unlock()

	r.logger.Info("registry reset", "markets", len(markets))
}

// ApplyDiff is the sole mutation path after Reset. Three passes, in order:
// tracked-field changes, then additions, then removals. Conflicting writes
// from the poll and push paths resolve last-writer-wins at the point this
// runs; there is no sequence-number reconciliation.
//
// A nil diff is a caller error: callers must treat nil as "nothing
// changed" and skip the call entirely.
func (r *Registry) ApplyDiff(d *model.Diff) {
	if d == nil {
		panic("registry: ApplyDiff called with nil diff")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, mc := range d.Changes {
		m, ok := r.markets[id]
		if !ok {
			// Removed between compute and apply; the removal pass of the
			// diff that dropped it already logged.
			continue
		}
		if mc.Last != nil {
			m.Last = mc.Last.New
		}
		if mc.Active != nil {
			m.IsActive = mc.Active.New
			if mc.Active.New {
				r.logger.Info("market activated", "id", id, "label", m.Label)
			} else {
				r.logger.Info("market deactivated", "id", id, "label", m.Label)
			}
		}
		r.markets[id] = m
	}

	for id, m := range d.Additions {
		r.markets[id] = m
	}

	for id := range d.Removals {
		delete(r.markets, id)
	}

	if len(d.Additions) > 0 || len(d.Removals) > 0 {
		r.logger.Debug("registry updated",
			"changed", len(d.Changes),
			"added", len(d.Additions),
			"removed", len(d.Removals),
			"markets", len(r.markets),
		)
	}
}
