package store

import (
	"context"

	"github.com/tomcoffee/kimono-sim/internal/core"
)

// Ports for the plan persistence adapters. The store holds the whole
// sequence as one document: loads return it wholesale and saves
// replace it wholesale, last writer wins.
type (
	Loader interface {
		// LoadPlan returns the persisted sequence. An empty store
		// yields (nil, nil): empty is the expected shape of a fresh
		// store, not an error.
		LoadPlan(ctx context.Context) ([]core.PeriodRecord, error)
	}

	Saver interface {
		// SavePlan replaces the persisted sequence with records.
		// Saving the same sequence twice persists the same state.
		SavePlan(ctx context.Context, records []core.PeriodRecord) error
	}

	// Store combines both directions of plan persistence.
	Store interface {
		Loader
		Saver
	}
)
