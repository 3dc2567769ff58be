package memory

import (
	"context"
	"testing"

	"github.com/tomcoffee/kimono-sim/internal/core"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	got, err := s.LoadPlan(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("fresh store: got %d records, err=%v", len(got), err)
	}

	plan := core.GenerateSeed(2025, 9, 16)
	if err := s.SavePlan(ctx, plan); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Idempotent: a second identical save persists the same state.
	if err := s.SavePlan(ctx, plan); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err = s.LoadPlan(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(plan) {
		t.Fatalf("got %d records, want %d", len(got), len(plan))
	}
	for i := range got {
		if got[i] != plan[i] {
			t.Fatalf("record %d differs: %+v vs %+v", i, got[i], plan[i])
		}
	}

	// Mutating a loaded copy must not leak into the store.
	got[0].Sales = 1
	again, _ := s.LoadPlan(ctx)
	if again[0].Sales != plan[0].Sales {
		t.Fatalf("loaded copy aliases store state")
	}
}

func TestMemoryStoreRejectsInvalidSequence(t *testing.T) {
	s := New()
	bad := []core.PeriodRecord{
		{ID: 1, Year: 2025, Month: 2},
		{ID: 2, Year: 2025, Month: 1},
	}
	if err := s.SavePlan(context.Background(), bad); err == nil {
		t.Fatalf("expected validation error")
	}
}
