package store

import "testing"

func TestDraftsAppendAndLabels(t *testing.T) {
	d := NewDrafts()
	d.Append("outline")
	d.Append("intro")
	d.Append("intro\n\nbody")

	views := d.List()
	if len(views) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(views))
	}
	if views[0].Label != "Outline" || views[1].Label != "Step 1" || views[2].Label != "Final" {
		t.Fatalf("unexpected labels: %q %q %q", views[0].Label, views[1].Label, views[2].Label)
	}
	if !views[2].Active {
		t.Fatal("last appended version should be active")
	}
}

func TestDraftsSingleVersionIsFinal(t *testing.T) {
	d := NewDrafts()
	d.Append("only")
	views := d.List()
	if len(views) != 1 || views[0].Label != "Final" {
		t.Fatalf("unexpected view: %+v", views)
	}
}

func TestDraftsSelectDoesNotMutateHistory(t *testing.T) {
	d := NewDrafts()
	d.Append("v0")
	d.Append("v1")
	if err := d.Select(0); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if d.Len() != 2 {
		t.Fatal("selecting must not drop later versions")
	}
	active, ok := d.Active()
	if !ok || active.Index != 0 {
		t.Fatalf("unexpected active: %+v", active)
	}
	if err := d.Select(0); err != nil {
		t.Fatalf("re-select should be idempotent: %v", err)
	}
	if err := d.Select(7); err == nil {
		t.Fatal("selecting a missing version should fail")
	}
}

func TestDraftsResetClearsHistory(t *testing.T) {
	d := NewDrafts()
	d.Append("v0")
	d.Reset()
	if d.Len() != 0 {
		t.Fatal("reset should clear versions")
	}
	if _, ok := d.Active(); ok {
		t.Fatal("no active version after reset")
	}
}
