package registry

import "github.com/dmarsh/market-mirror/internal/model"

// ComputeSnapshotDiff computes the minimal change-set between the registry
// and a full poll snapshot. An id present in both contributes a change only
// if a tracked field differs; an id only in the snapshot is an addition; an
// id only in the registry is a removal. Returns nil when nothing observable
// changed.
//
// The membership test decides the branch once, so an id can never be both
// a change and an addition.
func (r *Registry) ComputeSnapshotDiff(snap model.Snapshot) *model.Diff {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d := model.NewDiff()
	seen := make(map[int64]struct{}, len(snap))

	for pair, e := range snap {
		seen[e.ID] = struct{}{}

		m, ok := r.markets[e.ID]
		if !ok {
			d.Additions[e.ID] = model.NewMarket(pair, e)
			continue
		}

		if mc, changed := model.DiffAgainstSnapshot(m, e); changed {
			d.Changes[e.ID] = mc
		}
	}

	for id, m := range r.markets {
		if _, ok := seen[id]; !ok {
			d.Removals[id] = m
		}
	}

	return d.OrNil()
}

// ComputeTickerDiff computes the change-set for a batch of partial push
// records. Only the tracked fields participate. An id the registry has
// never seen yields a placeholder addition with UNKNOWN base/quote rather
// than an error: a push update about an unseen market is degraded-display
// information, not a failure. Returns nil when nothing observable changed.
func (r *Registry) ComputeTickerDiff(updates []model.TickerUpdate) *model.Diff {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d := model.NewDiff()

	for _, u := range updates {
		m, ok := r.markets[u.ID]
		if !ok {
			d.Additions[u.ID] = model.PlaceholderMarket(u)
			continue
		}

		if mc, changed := model.DiffAgainstUpdate(m, u); changed {
			d.Changes[u.ID] = mc
		}
	}

	return d.OrNil()
}
