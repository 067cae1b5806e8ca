package model

// FieldChange records an old/new pair for one tracked field.
type FieldChange[T comparable] struct {
	Old T
	New T
}

// MarketChanges holds the tracked-field changes for one existing market.
// Only price and the active flag participate in change detection; a nil
// pointer means the field did not change.
type MarketChanges struct {
	Last   *FieldChange[string]
	Active *FieldChange[bool]
}

// Diff is the minimal change-set between two registry states. A nil *Diff
// means "no observable change" and is a valid, common result.
//
// Invariant: no id appears in more than one of the three maps.
type Diff struct {
	Changes   map[int64]MarketChanges
	Additions map[int64]Market
	Removals  map[int64]Market
}

// NewDiff returns an empty Diff with all three maps allocated.
func NewDiff() *Diff {
	return &Diff{
		Changes:   make(map[int64]MarketChanges),
		Additions: make(map[int64]Market),
		Removals:  make(map[int64]Market),
	}
}

// Empty reports whether the diff carries no observable change.
func (d *Diff) Empty() bool {
	return len(d.Changes) == 0 && len(d.Additions) == 0 && len(d.Removals) == 0
}

// OrNil collapses an empty diff to nil, the canonical "nothing changed".
func (d *Diff) OrNil() *Diff {
	if d == nil || d.Empty() {
		return nil
	}
	return d
}

// diffTracked compares the tracked fields of an existing market against an
// incoming record. Price comparison is exact textual equality; parsing
// prices here would reintroduce float round-trip noise.
func diffTracked(m Market, last string, frozen bool) (MarketChanges, bool) {
	var mc MarketChanges

	if m.Last != last {
		mc.Last = &FieldChange[string]{Old: m.Last, New: last}
	}
	active := !frozen
	if m.IsActive != active {
		mc.Active = &FieldChange[bool]{Old: m.IsActive, New: active}
	}

	return mc, mc.Last != nil || mc.Active != nil
}

// DiffAgainstSnapshot compares an existing market against its snapshot entry.
func DiffAgainstSnapshot(m Market, e SnapshotEntry) (MarketChanges, bool) {
	return diffTracked(m, e.Last, e.Frozen)
}

// DiffAgainstUpdate compares an existing market against a push update.
func DiffAgainstUpdate(m Market, u TickerUpdate) (MarketChanges, bool) {
	return diffTracked(m, u.Last, u.Frozen)
}
