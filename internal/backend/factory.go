package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tomcoffee/kimono-sim/internal/events"
	"github.com/tomcoffee/kimono-sim/internal/storage"
	"github.com/tomcoffee/kimono-sim/internal/store"
	"github.com/tomcoffee/kimono-sim/internal/store/memory"
	"github.com/tomcoffee/kimono-sim/internal/store/remote"
	"github.com/tomcoffee/kimono-sim/internal/store/sheets"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	var (
		st      store.Store
		cleanup CleanupFunc
		err     error
	)
	switch config.Type {
	case MemoryBackend:
		st, cleanup, err = f.createMemoryStore()
	case RemoteBackend:
		st, cleanup, err = f.createRemoteStore(config)
	case SQLiteBackend:
		st, cleanup, err = f.createSQLiteStore(config)
	case SheetsBackend:
		st, cleanup, err = f.createSheetsStore(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Store: st, Cleanup: cleanup}

	// The notification client is optional on every backend. A broker
	// that is down degrades to no events rather than a startup failure.
	if config.AMQPURL != "" {
		client, err := events.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = client
			result.Cleanup = chainCleanup(cleanup, client.Close)
		}
	}

	return result, nil
}

func (f *DefaultFactory) createMemoryStore() (store.Store, CleanupFunc, error) {
	f.logger.Info("Initialized memory backend")
	return memory.New(), nil, nil
}

func (f *DefaultFactory) createRemoteStore(config Config) (store.Store, CleanupFunc, error) {
	opts := []remote.Option{remote.WithTimeout(config.RemoteTimeout)}
	if config.RemoteContentType == "json" {
		opts = append(opts, remote.WithContentType(remote.ContentTypeJSON))
	}

	cli, err := remote.New(config.RemoteEndpoint, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize remote store client: %w", err)
	}

	f.logger.Info("Initialized remote backend",
		"endpoint", config.RemoteEndpoint,
		"content_type", config.RemoteContentType)
	return cli, nil, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (store.Store, CleanupFunc, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, repo.Close, nil
}

func (f *DefaultFactory) createSheetsStore(ctx context.Context, config Config) (store.Store, CleanupFunc, error) {
	cli, err := sheets.NewFromEnv(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID)
	return cli, nil, nil
}

func chainCleanup(fns ...CleanupFunc) CleanupFunc {
	return func() error {
		var firstErr error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}
