package backend

import (
	"context"

	"github.com/tomcoffee/kimono-sim/internal/planner"
	"github.com/tomcoffee/kimono-sim/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the wired store, an optional event publisher and an
// optional cleanup function.
type Result struct {
	Store     store.Store
	Publisher planner.Publisher
	Cleanup   CleanupFunc
}

// Factory creates storage backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Type identifies a storage backend.
type Type string

const (
	MemoryBackend Type = "memory"
	RemoteBackend Type = "remote"
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, RemoteBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{MemoryBackend, RemoteBackend, SQLiteBackend, SheetsBackend}
}
