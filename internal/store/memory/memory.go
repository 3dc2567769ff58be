package memory

import (
	"context"
	"sync"

	"github.com/tomcoffee/kimono-sim/internal/core"
	"github.com/tomcoffee/kimono-sim/internal/store"
)

// Store keeps the plan in process memory. Used as the default backend
// for local development and as the store fake in tests.
type Store struct {
	mu      sync.Mutex
	records []core.PeriodRecord
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewWithPlan returns a store pre-populated with records.
func NewWithPlan(records []core.PeriodRecord) *Store {
	return &Store{records: core.CloneSequence(records)}
}

func (s *Store) LoadPlan(_ context.Context) ([]core.PeriodRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CloneSequence(s.records), nil
}

func (s *Store) SavePlan(_ context.Context, records []core.PeriodRecord) error {
	if err := core.ValidateSequence(records); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = core.CloneSequence(records)
	return nil
}
