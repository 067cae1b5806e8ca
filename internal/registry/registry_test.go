package registry

import (
	"testing"

	"github.com/dmarsh/market-mirror/internal/model"
)

func TestApplyDiff_NilPanics(t *testing.T) {
	r := New(nil)

	defer func() {
		if recover() == nil {
			t.Error("ApplyDiff(nil) did not panic")
		}
	}()
	r.ApplyDiff(nil)
}

func TestApplyDiff_PassOrder(t *testing.T) {
	r := New(nil)
	r.Reset(model.Snapshot{
		"BTC_ETH": {ID: 1, Last: "0.05", Frozen: false},
		"BTC_LTC": {ID: 2, Last: "10", Frozen: false},
	})

	d := model.NewDiff()
	d.Changes[1] = model.MarketChanges{
		Last: &model.FieldChange[string]{Old: "0.05", New: "0.06"},
	}
	d.Additions[3] = model.Market{
		ID: 3, Base: "XMR", Quote: "BTC", Label: "XMR/BTC", Last: "0.01", IsActive: true,
	}
	d.Removals[2] = model.Market{ID: 2}

	r.ApplyDiff(d)

	if m, _ := r.Get(1); m.Last != "0.06" {
		t.Errorf("market 1 Last = %q, want %q", m.Last, "0.06")
	}
	if _, ok := r.Get(3); !ok {
		t.Error("addition not applied")
	}
	if _, ok := r.Get(2); ok {
		t.Error("removal not applied")
	}
}

func TestApplyDiff_ActiveFlip(t *testing.T) {
	r := New(nil)
	r.Reset(model.Snapshot{
		"BTC_ETH": {ID: 1, Last: "0.05", Frozen: false},
	})

	d := model.NewDiff()
	d.Changes[1] = model.MarketChanges{
		Active: &model.FieldChange[bool]{Old: true, New: false},
	}
	r.ApplyDiff(d)

	m, _ := r.Get(1)
	if m.IsActive {
		t.Error("IsActive = true, want false after deactivation")
	}
	if m.Last != "0.05" {
		t.Errorf("Last = %q, want untouched %q", m.Last, "0.05")
	}
}

func TestApplyDiff_ChangeForRemovedMarketIsSkipped(t *testing.T) {
	r := New(nil)
	r.Reset(model.Snapshot{
		"BTC_ETH": {ID: 1, Last: "0.05", Frozen: false},
	})

	// Stale change for an id that no longer exists; the poll and push
	// paths can race, so this must be tolerated.
	d := model.NewDiff()
	d.Changes[42] = model.MarketChanges{
		Last: &model.FieldChange[string]{Old: "1", New: "2"},
	}
	r.ApplyDiff(d)

	if _, ok := r.Get(42); ok {
		t.Error("stale change materialized a market")
	}
	if r.Len() != 1 {
		t.Errorf("len = %d, want 1", r.Len())
	}
}

func TestReset_ReplacesWholesale(t *testing.T) {
	r := New(nil)
	r.Reset(model.Snapshot{
		"BTC_ETH": {ID: 1, Last: "0.05", Frozen: false},
	})
	r.Reset(model.Snapshot{
		"BTC_LTC": {ID: 2, Last: "10", Frozen: false},
	})

	if _, ok := r.Get(1); ok {
		t.Error("market from first reset survived second reset")
	}
	if _, ok := r.Get(2); !ok {
		t.Error("market from second reset missing")
	}
}

func TestMarkets_ReturnsCopy(t *testing.T) {
	r := New(nil)
	r.Reset(model.Snapshot{
		"BTC_ETH": {ID: 1, Last: "0.05", Frozen: false},
	})

	snap := r.Markets()
	snap[1] = model.Market{ID: 1, Last: "tampered"}

	if m, _ := r.Get(1); m.Last != "0.05" {
		t.Error("mutating the returned map leaked into the registry")
	}
}
