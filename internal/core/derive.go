package core

// DeriveView maps a sequence of period records to the enriched view
// and its portfolio summary. It is pure and total: it never fails and
// never mutates its input.
//
// Records are processed in the order given, never re-sorted: the
// accumulated fields fold across the sequence and reset at the start
// of every pass. Chronological ordering is the caller's invariant
// (see ValidateSequence), not re-checked here.
func DeriveView(records []PeriodRecord) ([]EnrichedRecord, Summary) {
	enriched := make([]EnrichedRecord, 0, len(records))
	var sum Summary
	var accSales, accCost int64

	for _, r := range records {
		totalCost := r.COGS + r.FixedCost + r.SpotCost + r.Personnel
		operating := r.Sales - totalCost
		margin := 0.0
		if r.Sales > 0 {
			margin = float64(operating) / float64(r.Sales) * 100
		}
		accSales += r.Sales
		accCost += totalCost

		enriched = append(enriched, EnrichedRecord{
			PeriodRecord:         r,
			MonthKey:             r.MonthKey(),
			GrossProfit:          r.Sales - r.COGS,
			TotalCost:            totalCost,
			OperatingProfit:      operating,
			ProfitMargin:         margin,
			AccumulatedSales:     accSales,
			AccumulatedTotalCost: accCost,
		})

		sum.TotalSales += r.Sales
		sum.TotalCost += totalCost
	}

	sum.TotalProfit = sum.TotalSales - sum.TotalCost
	if sum.TotalSales > 0 {
		sum.ProfitMarginPct = float64(sum.TotalProfit) / float64(sum.TotalSales) * 100
	}
	return enriched, sum
}
