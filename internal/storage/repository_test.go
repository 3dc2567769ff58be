package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tomcoffee/kimono-sim/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "plan.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	got, err := repo.LoadPlan(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("fresh db: got %d records, err=%v", len(got), err)
	}

	plan := core.GenerateSeed(2025, 9, 16)
	if err := repo.SavePlan(ctx, plan); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err = repo.LoadPlan(ctx)
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
}

func TestSQLiteWholesaleReplace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SavePlan(ctx, core.GenerateSeed(2025, 9, 16)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	smaller := core.GenerateSeed(2026, 1, 3)
	if err := repo.SavePlan(ctx, smaller); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.LoadPlan(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("old records survived wholesale replace: %d", len(got))
	}
}

func TestSQLiteRejectsInvalidSequence(t *testing.T) {
	repo := newTestRepo(t)
	bad := []core.PeriodRecord{{ID: 1, Year: 2025, Month: 0}}
	if err := repo.SavePlan(context.Background(), bad); err == nil {
		t.Fatalf("expected validation error")
	}
}
