package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func savedSnapshot() Snapshot {
	return Snapshot{
		GuestCount: 50,
		GuestPrice: decimal.NewFromInt(30),
		StartTime:  "18:00",
		EndTime:    "23:00",
		Responses: Responses{
			"bar": {Enabled: flag(false), Price: amount("500")},
		},
	}
}

func TestDraft_CleanUntilEdited(t *testing.T) {
	d := NewDraft(savedSnapshot())
	if d.IsDirty() {
		t.Fatalf("new draft should be clean")
	}

	d.Apply(Patch{GuestCount: qty(50)})
	if d.IsDirty() {
		t.Fatalf("patch with the saved guest count should not dirty the draft")
	}

	d.Apply(Patch{Responses: Responses{"bar": {Enabled: flag(true), Price: amount("500")}}})
	if !d.IsDirty() {
		t.Fatalf("enabling a field should dirty the draft")
	}
}

func TestDraft_EqualDecimalsAreNotDirty(t *testing.T) {
	d := NewDraft(savedSnapshot())
	price := decimal.RequireFromString("30.00")
	d.Apply(Patch{GuestPrice: &price})
	if d.IsDirty() {
		t.Fatalf("30.00 and 30 should compare equal")
	}
}

func TestDraft_CommitAndDiscard(t *testing.T) {
	d := NewDraft(savedSnapshot())
	d.Apply(Patch{GuestCount: qty(80)})
	d.Discard()
	if d.IsDirty() || d.Current().GuestCount != 50 {
		t.Fatalf("discard did not restore saved state: %+v", d.Current())
	}

	d.Apply(Patch{GuestCount: qty(80), Remove: []string{"bar"}})
	d.Commit()
	if d.IsDirty() {
		t.Fatalf("draft dirty after commit")
	}
	if got := d.Saved(); got.GuestCount != 80 || len(got.Responses) != 0 {
		t.Fatalf("commit did not take current state: %+v", got)
	}
}

func TestDraft_SavedSnapshotIsIsolated(t *testing.T) {
	saved := savedSnapshot()
	d := NewDraft(saved)
	d.Apply(Patch{Responses: Responses{"bar": {Enabled: flag(true)}}})
	if *saved.Responses["bar"].Enabled {
		t.Fatalf("draft edits leaked into the caller's snapshot")
	}
}

func TestDraft_NormalizesQuantityEdits(t *testing.T) {
	d := NewDraft(Snapshot{})
	d.Apply(Patch{Responses: Responses{"chairs": {Quantity: qty(12), UnitPrice: amount("2.5")}}})
	got := d.Current().Responses["chairs"]
	if got.CalculatedTotal == nil || !got.CalculatedTotal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("calculated total = %v, want 30", got.CalculatedTotal)
	}
}
