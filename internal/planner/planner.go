// Package planner owns the in-memory plan: the single mutable
// sequence of period records shared by every read, edit and save
// path. All mutation goes through one mutex-guarded cell with a
// version counter; derived views are recomputed on demand and never
// stored.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tomcoffee/kimono-sim/internal/core"
	"github.com/tomcoffee/kimono-sim/internal/events"
	"github.com/tomcoffee/kimono-sim/internal/store"
)

// Status tracks where the planner is in its lifecycle. LoadFailed is
// recoverable: the planner keeps working on seed data and a later
// successful save returns it to Ready.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusReady      Status = "ready"
	StatusLoadFailed Status = "load_failed"
	StatusSaving     Status = "saving"
)

// Source records where the current sequence came from.
type Source string

const (
	SourceStore Source = "store"
	SourceSeed  Source = "seed"
)

// Notice is a non-fatal, user-dismissible warning (failed load, failed
// save). Notices never block operations.
type Notice struct {
	ID      int64     `json:"id"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Publisher emits plan lifecycle events. Implementations must be
// after-the-fact observers; the planner never persists in response to
// an event.
type Publisher interface {
	PublishPlanSaved(ctx context.Context, msg *events.PlanSavedMessage) error
	PublishPlanEdited(ctx context.Context, msg *events.PlanEditedMessage) error
}

// Config holds the seed fallback parameters.
type Config struct {
	AnchorYear  int
	AnchorMonth int
	SeedCount   int
	Backend     string
}

// DefaultConfig returns the seed parameters for a fresh store.
func DefaultConfig() Config {
	return Config{
		AnchorYear:  core.DefaultAnchorYear,
		AnchorMonth: core.DefaultAnchorMonth,
		SeedCount:   core.DefaultSeedCount,
	}
}

var ErrInvalidField = errors.New("field is not editable")

// View is one consistent snapshot of the derived state.
type View struct {
	Status  Status                `json:"status"`
	Source  Source                `json:"source"`
	Version uint64                `json:"version"`
	Records []core.EnrichedRecord `json:"records"`
	Summary core.Summary          `json:"summary"`
	Notices []Notice              `json:"notices"`
}

type Planner struct {
	store store.Store
	pub   Publisher // nil when AMQP is not configured
	cfg   Config

	mu        sync.Mutex
	status    Status
	source    Source
	records   []core.PeriodRecord
	version   uint64
	notices   []Notice
	noticeSeq int64
}

func New(st store.Store, pub Publisher, cfg Config) *Planner {
	if cfg.SeedCount <= 0 {
		cfg = DefaultConfig()
	}
	return &Planner{
		store:  st,
		pub:    pub,
		cfg:    cfg,
		status: StatusIdle,
	}
}

// Load issues one read against the store and installs the result as
// current state. An empty store seeds the default plan; a failed load
// seeds too and leaves a dismissible notice. Load never fails the
// caller: the planner is always usable afterwards.
func (p *Planner) Load(ctx context.Context) Status {
	p.mu.Lock()
	p.status = StatusLoading
	p.mu.Unlock()

	records, err := p.store.LoadPlan(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case err != nil:
		p.records = core.GenerateSeed(p.cfg.AnchorYear, p.cfg.AnchorMonth, p.cfg.SeedCount)
		p.source = SourceSeed
		p.status = StatusLoadFailed
		p.addNoticeLocked("warning", fmt.Sprintf("could not load plan from store, using seed data: %v", err))
		slog.WarnContext(ctx, "Plan load failed, falling back to seed",
			"error", err,
			"seed_records", len(p.records))
	case len(records) == 0:
		// Empty is the expected shape of a fresh store, not an error.
		p.records = core.GenerateSeed(p.cfg.AnchorYear, p.cfg.AnchorMonth, p.cfg.SeedCount)
		p.source = SourceSeed
		p.status = StatusReady
		slog.InfoContext(ctx, "Store empty, seeded default plan",
			"records", len(p.records))
	default:
		p.records = records
		p.source = SourceStore
		p.status = StatusReady
		slog.InfoContext(ctx, "Plan loaded from store", "records", len(records))
	}
	p.version++
	return p.status
}

// Edit applies one single-field mutation by record identity. A stale
// id is a silent no-op, not an error. The sequence is replaced, never
// mutated in place, so concurrent readers keep a consistent view.
func (p *Planner) Edit(ctx context.Context, id int64, field core.Field, value string) (bool, error) {
	if !field.IsValid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}

	p.mu.Lock()
	next, ok := core.ApplyEdit(p.records, id, field, value)
	if ok {
		p.records = next
		p.version++
	}
	version := p.version
	p.mu.Unlock()

	if !ok {
		slog.DebugContext(ctx, "Edit targeted unknown record, ignored", "id", id, "field", string(field))
		return false, nil
	}

	if p.pub != nil {
		if err := p.pub.PublishPlanEdited(ctx, events.NewPlanEditedMessage(version, id, string(field))); err != nil {
			// Notification only: the edit itself already succeeded.
			slog.WarnContext(ctx, "Failed to publish edit event", "error", err, "id", id)
		}
	}
	return true, nil
}

// View derives the enriched records and summary from the current
// sequence. Derivation runs on a snapshot so a concurrent edit cannot
// tear the view.
func (p *Planner) View() View {
	p.mu.Lock()
	records := core.CloneSequence(p.records)
	v := View{
		Status:  p.status,
		Source:  p.source,
		Version: p.version,
		Notices: append([]Notice(nil), p.notices...),
	}
	p.mu.Unlock()

	v.Records, v.Summary = core.DeriveView(records)
	return v
}

// Records returns a copy of the raw sequence.
func (p *Planner) Records() []core.PeriodRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return core.CloneSequence(p.records)
}

// Version returns the current state version.
func (p *Planner) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// Status returns the current lifecycle status.
func (p *Planner) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Notices returns a copy of the pending notices.
func (p *Planner) Notices() []Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Notice(nil), p.notices...)
}

// Save serializes the whole current sequence and pushes it to the
// store. On failure the in-memory sequence is untouched, the planner
// returns to Ready and the caller gets both an error and a notice.
// There is no automatic save anywhere: this is the only persistence
// trigger.
func (p *Planner) Save(ctx context.Context) error {
	p.mu.Lock()
	records := core.CloneSequence(p.records)
	version := p.version
	p.status = StatusSaving
	p.mu.Unlock()

	err := p.store.SavePlan(ctx, records)

	p.mu.Lock()
	p.status = StatusReady
	if err != nil {
		p.addNoticeLocked("warning", fmt.Sprintf("save failed, your edits are kept in memory: %v", err))
	} else {
		p.source = SourceStore
	}
	p.mu.Unlock()

	if err != nil {
		slog.ErrorContext(ctx, "Plan save failed", "error", err, "records", len(records))
		return fmt.Errorf("save plan: %w", err)
	}

	slog.InfoContext(ctx, "Plan saved", "records", len(records), "version", version)
	if p.pub != nil {
		if err := p.pub.PublishPlanSaved(ctx, events.NewPlanSavedMessage(version, len(records), p.cfg.Backend)); err != nil {
			slog.WarnContext(ctx, "Failed to publish save event", "error", err)
		}
	}
	return nil
}

// DismissNotice removes one notice by id.
func (p *Planner) DismissNotice(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, n := range p.notices {
		if n.ID == id {
			p.notices = append(p.notices[:i], p.notices[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Planner) addNoticeLocked(level, message string) {
	p.noticeSeq++
	p.notices = append(p.notices, Notice{
		ID:      p.noticeSeq,
		Level:   level,
		Message: message,
		At:      time.Now(),
	})
}
