// Package storage implements the plan store on a local SQLite file,
// for installations that want durable persistence without a network
// store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tomcoffee/kimono-sim/internal/core"
	"github.com/tomcoffee/kimono-sim/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadPlan returns the persisted sequence in stored order.
func (r *SQLiteRepository) LoadPlan(ctx context.Context) ([]core.PeriodRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, year, month, sales, cogs, fixed_cost, spot_cost, personnel,
		       fixed_cost_memo, spot_cost_memo, personnel_memo, memo
		FROM period_records
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query period records: %w", err)
	}
	defer rows.Close()

	var records []core.PeriodRecord
	for rows.Next() {
		var rec core.PeriodRecord
		if err := rows.Scan(
			&rec.ID, &rec.Year, &rec.Month, &rec.Sales, &rec.COGS,
			&rec.FixedCost, &rec.SpotCost, &rec.Personnel,
			&rec.FixedCostMemo, &rec.SpotCostMemo, &rec.PersonnelMemo, &rec.Memo,
		); err != nil {
			return nil, fmt.Errorf("scan period record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period records: %w", err)
	}
	return records, nil
}

// SavePlan replaces the stored sequence wholesale inside one
// transaction: delete everything, insert everything. Partial writes
// never become visible.
func (r *SQLiteRepository) SavePlan(ctx context.Context, records []core.PeriodRecord) error {
	if err := core.ValidateSequence(records); err != nil {
		return fmt.Errorf("refusing to persist invalid sequence: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM period_records`); err != nil {
		return fmt.Errorf("clear period records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO period_records (
			id, year, month, sales, cogs, fixed_cost, spot_cost, personnel,
			fixed_cost_memo, spot_cost_memo, personnel_memo, memo, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Year, rec.Month, rec.Sales, rec.COGS,
			rec.FixedCost, rec.SpotCost, rec.Personnel,
			rec.FixedCostMemo, rec.SpotCostMemo, rec.PersonnelMemo, rec.Memo, i,
		); err != nil {
			return fmt.Errorf("insert period record %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Plan saved to SQLite", "records", len(records))
	return nil
}
