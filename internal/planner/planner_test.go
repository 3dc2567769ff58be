package planner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tomcoffee/kimono-sim/internal/core"
	"github.com/tomcoffee/kimono-sim/internal/events"
	"github.com/tomcoffee/kimono-sim/internal/store/memory"
)

// brokenStore fails every operation, simulating an unreachable remote.
type brokenStore struct{}

func (brokenStore) LoadPlan(context.Context) ([]core.PeriodRecord, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) SavePlan(context.Context, []core.PeriodRecord) error {
	return errors.New("connection refused")
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	saved  []*events.PlanSavedMessage
	edited []*events.PlanEditedMessage
}

func (r *recordingPublisher) PublishPlanSaved(_ context.Context, m *events.PlanSavedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, m)
	return nil
}

func (r *recordingPublisher) PublishPlanEdited(_ context.Context, m *events.PlanEditedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edited = append(r.edited, m)
	return nil
}

func TestLoadSeedsEmptyStore(t *testing.T) {
	p := New(memory.New(), nil, DefaultConfig())
	if got := p.Load(context.Background()); got != StatusReady {
		t.Fatalf("status = %s", got)
	}

	v := p.View()
	if v.Source != SourceSeed {
		t.Fatalf("source = %s", v.Source)
	}
	if len(v.Records) != 16 {
		t.Fatalf("expected 16 seeded records, got %d", len(v.Records))
	}
	if v.Records[0].MonthKey != "2025-09" || v.Records[15].MonthKey != "2026-12" {
		t.Fatalf("seed span wrong: %s .. %s", v.Records[0].MonthKey, v.Records[15].MonthKey)
	}
	if len(v.Notices) != 0 {
		t.Fatalf("empty store is not an error, got notices %v", v.Notices)
	}
}

func TestLoadPrefersStoredPlan(t *testing.T) {
	plan := core.GenerateSeed(2024, 1, 4)
	p := New(memory.NewWithPlan(plan), nil, DefaultConfig())
	p.Load(context.Background())

	v := p.View()
	if v.Source != SourceStore {
		t.Fatalf("source = %s", v.Source)
	}
	if len(v.Records) != 4 {
		t.Fatalf("expected stored plan, got %d records", len(v.Records))
	}
}

func TestLoadFailureFallsBackToSeed(t *testing.T) {
	p := New(brokenStore{}, nil, DefaultConfig())
	if got := p.Load(context.Background()); got != StatusLoadFailed {
		t.Fatalf("status = %s", got)
	}

	v := p.View()
	if len(v.Records) != 16 {
		t.Fatalf("planner must stay usable on seed data, got %d records", len(v.Records))
	}
	if len(v.Notices) != 1 || v.Notices[0].Level != "warning" {
		t.Fatalf("expected one warning notice, got %v", v.Notices)
	}

	// Editing still works in LoadFailed.
	ok, err := p.Edit(context.Background(), 1, core.FieldSales, "42")
	if err != nil || !ok {
		t.Fatalf("edit after failed load: ok=%v err=%v", ok, err)
	}
}

func TestEditBumpsVersionAndPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	p := New(memory.New(), pub, DefaultConfig())
	p.Load(context.Background())
	before := p.Version()

	ok, err := p.Edit(context.Background(), 3, core.FieldSpotCost, "350000")
	if err != nil || !ok {
		t.Fatalf("edit: ok=%v err=%v", ok, err)
	}
	if p.Version() != before+1 {
		t.Fatalf("version not bumped: %d -> %d", before, p.Version())
	}

	records := p.Records()
	if records[2].SpotCost != 350_000 {
		t.Fatalf("spotCost = %d", records[2].SpotCost)
	}
	if len(pub.edited) != 1 || pub.edited[0].RecordID != 3 || pub.edited[0].Field != "spotCost" {
		t.Fatalf("edit event wrong: %+v", pub.edited)
	}
}

func TestEditStaleIDIsNoOp(t *testing.T) {
	p := New(memory.New(), nil, DefaultConfig())
	p.Load(context.Background())
	before := p.Version()

	ok, err := p.Edit(context.Background(), 999, core.FieldSales, "1")
	if err != nil {
		t.Fatalf("stale edit must not error: %v", err)
	}
	if ok {
		t.Fatalf("stale edit reported applied")
	}
	if p.Version() != before {
		t.Fatalf("stale edit bumped version")
	}
}

func TestEditRejectsUnknownField(t *testing.T) {
	p := New(memory.New(), nil, DefaultConfig())
	p.Load(context.Background())
	if _, err := p.Edit(context.Background(), 1, core.Field("id"), "9"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("got %v, want ErrInvalidField", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	st := memory.New()
	pub := &recordingPublisher{}
	p := New(st, pub, DefaultConfig())
	p.Load(context.Background())

	if _, err := p.Edit(context.Background(), 1, core.FieldSales, "2750000"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := p.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(pub.saved) != 1 || pub.saved[0].Records != 16 {
		t.Fatalf("save event wrong: %+v", pub.saved)
	}

	// A second planner sees exactly what was saved.
	p2 := New(st, nil, DefaultConfig())
	p2.Load(context.Background())
	v := p2.View()
	if v.Source != SourceStore {
		t.Fatalf("source = %s", v.Source)
	}
	if v.Records[0].Sales != 2_750_000 {
		t.Fatalf("persisted edit lost: %d", v.Records[0].Sales)
	}
}

func TestSaveFailureKeepsStateEditable(t *testing.T) {
	p := New(brokenStore{}, nil, DefaultConfig())
	p.Load(context.Background())
	p.DismissNotice(1) // clear the load notice

	if _, err := p.Edit(context.Background(), 2, core.FieldMemo, "keep me"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := p.Save(context.Background()); err == nil {
		t.Fatalf("expected save error")
	}

	v := p.View()
	if v.Status != StatusReady {
		t.Fatalf("status after failed save = %s, want ready", v.Status)
	}
	if v.Records[1].Memo != "keep me" {
		t.Fatalf("in-memory sequence lost on failed save")
	}
	if len(v.Notices) != 1 {
		t.Fatalf("expected one save notice, got %v", v.Notices)
	}
}

func TestDismissNotice(t *testing.T) {
	p := New(brokenStore{}, nil, DefaultConfig())
	p.Load(context.Background())

	v := p.View()
	if len(v.Notices) != 1 {
		t.Fatalf("expected a notice")
	}
	if !p.DismissNotice(v.Notices[0].ID) {
		t.Fatalf("dismiss failed")
	}
	if p.DismissNotice(v.Notices[0].ID) {
		t.Fatalf("second dismiss should report missing")
	}
	if got := p.View().Notices; len(got) != 0 {
		t.Fatalf("notice survived dismissal: %v", got)
	}
}

func TestViewIsRecomputedNotStored(t *testing.T) {
	p := New(memory.New(), nil, DefaultConfig())
	p.Load(context.Background())

	v1 := p.View()
	// Mutating a returned view must not affect later views.
	v1.Records[0].Sales = -1
	v1.Summary.TotalSales = -1

	v2 := p.View()
	if v2.Records[0].Sales == -1 || v2.Summary.TotalSales == -1 {
		t.Fatalf("view aliases planner state")
	}
	if v2.Summary.TotalSales <= 0 {
		t.Fatalf("summary not recomputed: %+v", v2.Summary)
	}
}
