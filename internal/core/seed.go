package core

import "math"

// Default seed parameters. These model a small retail shop's known
// seasonality and are sample data, not business rules: callers may
// swap the table for their own.
const (
	DefaultBaseSales = 1_200_000
	DefaultCOGSRate  = 0.35
	DefaultFixedCost = 800_000
	DefaultSpotCost  = 200_000
	DefaultPersonnel = 600_000

	// Service defaults for a fresh store.
	DefaultAnchorYear  = 2025
	DefaultAnchorMonth = 9
	DefaultSeedCount   = 16
)

// SeasonalFactor scales the base sales figure for one calendar month.
type SeasonalFactor struct {
	Multiplier float64
	Memo       string
}

// SeasonalFactors maps calendar month (1-12) to its sales multiplier.
// Months absent from the table use ×1.0 and an empty memo.
var SeasonalFactors = map[int]SeasonalFactor{
	1:  {Multiplier: 2.5, Memo: "New Year peak"},
	3:  {Multiplier: 1.8, Memo: "graduation season"},
	8:  {Multiplier: 0.8, Memo: "summer lull"},
	10: {Multiplier: 1.5, Memo: "autumn peak"},
	11: {Multiplier: 1.5, Memo: "autumn peak"},
}

// GenerateSeed produces count consecutive months starting at
// (anchorYear, anchorMonth), ids assigned 1..count. Deterministic and
// side-effect free; count <= 0 yields an empty sequence.
func GenerateSeed(anchorYear, anchorMonth, count int) []PeriodRecord {
	if count <= 0 {
		return nil
	}
	records := make([]PeriodRecord, 0, count)
	year, month := anchorYear, anchorMonth
	for i := 0; i < count; i++ {
		factor := SeasonalFactor{Multiplier: 1.0}
		if f, ok := SeasonalFactors[month]; ok {
			factor = f
		}
		sales := int64(math.Round(DefaultBaseSales * factor.Multiplier))
		records = append(records, PeriodRecord{
			ID:        int64(i + 1),
			Year:      year,
			Month:     month,
			Sales:     sales,
			COGS:      int64(math.Round(float64(sales) * DefaultCOGSRate)),
			FixedCost: DefaultFixedCost,
			SpotCost:  DefaultSpotCost,
			Personnel: DefaultPersonnel,
			Memo:      factor.Memo,
		})
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return records
}
