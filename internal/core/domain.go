package core

import (
	"errors"
	"fmt"
)

type (
	// PeriodRecord holds one calendar month's raw financial inputs.
	// The json tags are the persisted schema of the remote store:
	// renaming a field is a breaking schema change.
	PeriodRecord struct {
		ID            int64  `json:"id"`
		Year          int    `json:"year"`
		Month         int    `json:"month"` // 1-12
		Sales         int64  `json:"sales"`
		COGS          int64  `json:"cogs"`
		FixedCost     int64  `json:"fixedCost"`
		SpotCost      int64  `json:"spotCost"`
		Personnel     int64  `json:"personnel"`
		FixedCostMemo string `json:"fixedCostMemo"`
		SpotCostMemo  string `json:"spotCostMemo"`
		PersonnelMemo string `json:"personnelMemo"`
		Memo          string `json:"memo"`
	}

	// EnrichedRecord is a PeriodRecord plus the computed fields for
	// that month. Enriched records are recomputed views: they are
	// never persisted and never mutated in place.
	EnrichedRecord struct {
		PeriodRecord
		MonthKey             string  `json:"monthKey"`
		GrossProfit          int64   `json:"grossProfit"`
		TotalCost            int64   `json:"totalCost"`
		OperatingProfit      int64   `json:"operatingProfit"`
		ProfitMargin         float64 `json:"profitMargin"`
		AccumulatedSales     int64   `json:"accumulatedSales"`
		AccumulatedTotalCost int64   `json:"accumulatedTotalCost"`
	}

	// Summary holds portfolio-wide totals across the full sequence.
	Summary struct {
		TotalSales      int64   `json:"totalSales"`
		TotalCost       int64   `json:"totalCost"`
		TotalProfit     int64   `json:"totalProfit"`
		ProfitMarginPct float64 `json:"profitMarginPct"`
	}
)

var (
	ErrDuplicateID       = errors.New("duplicate record id")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrUnorderedSequence = errors.New("sequence not ordered by year and month")
)

// MonthKey returns the natural sort/display key, e.g. "2025-09".
func (r PeriodRecord) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", r.Year, r.Month)
}

// ValidateSequence checks the invariants every persisted sequence must
// hold: unique ids, months in 1-12, strictly increasing (year, month)
// with no duplicate month key. Derivation assumes these hold and does
// not re-check them.
func ValidateSequence(records []PeriodRecord) error {
	seen := make(map[int64]struct{}, len(records))
	for i, r := range records {
		if r.Month < 1 || r.Month > 12 {
			return fmt.Errorf("record %d (id=%d): %w: %d", i, r.ID, ErrInvalidMonth, r.Month)
		}
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("record %d: %w: %d", i, ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
		if i > 0 {
			prev := records[i-1]
			if r.Year < prev.Year || (r.Year == prev.Year && r.Month <= prev.Month) {
				return fmt.Errorf("record %d (%s after %s): %w", i, r.MonthKey(), prev.MonthKey(), ErrUnorderedSequence)
			}
		}
	}
	return nil
}

// CloneSequence returns an independent copy of the sequence. Records
// contain no reference fields, so a slice copy is a deep copy.
func CloneSequence(records []PeriodRecord) []PeriodRecord {
	if records == nil {
		return nil
	}
	out := make([]PeriodRecord, len(records))
	copy(out, records)
	return out
}
