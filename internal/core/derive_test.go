package core

import "testing"

func TestDeriveViewScenario(t *testing.T) {
	// One strong month: the concrete scenario every change to the
	// engine must keep intact.
	records := []PeriodRecord{{
		ID: 1, Year: 2026, Month: 1,
		Sales: 3_000_000, COGS: 1_050_000,
		FixedCost: 800_000, SpotCost: 200_000, Personnel: 600_000,
	}}
	enriched, _ := DeriveView(records)
	if len(enriched) != 1 {
		t.Fatalf("expected 1 enriched record, got %d", len(enriched))
	}
	e := enriched[0]
	if e.GrossProfit != 1_950_000 {
		t.Fatalf("grossProfit = %d", e.GrossProfit)
	}
	if e.TotalCost != 2_650_000 {
		t.Fatalf("totalCost = %d", e.TotalCost)
	}
	if e.OperatingProfit != 350_000 {
		t.Fatalf("operatingProfit = %d", e.OperatingProfit)
	}
	if got := Round1(e.ProfitMargin); got != 11.7 {
		t.Fatalf("profitMargin rounded = %v, want 11.7", got)
	}
	if e.MonthKey != "2026-01" {
		t.Fatalf("monthKey = %s", e.MonthKey)
	}
}

func TestDeriveViewSummary(t *testing.T) {
	// Two records shaped so totalCost is 900000 and 1700000.
	records := []PeriodRecord{
		{ID: 1, Year: 2025, Month: 1, Sales: 1_000_000, COGS: 900_000},
		{ID: 2, Year: 2025, Month: 2, Sales: 2_000_000, COGS: 1_700_000},
	}
	_, sum := DeriveView(records)
	if sum.TotalSales != 3_000_000 {
		t.Fatalf("totalSales = %d", sum.TotalSales)
	}
	if sum.TotalCost != 2_600_000 {
		t.Fatalf("totalCost = %d", sum.TotalCost)
	}
	if sum.TotalProfit != 400_000 {
		t.Fatalf("totalProfit = %d", sum.TotalProfit)
	}
	if got := Round1(sum.ProfitMarginPct); got != 13.3 {
		t.Fatalf("profitMarginPct rounded = %v, want 13.3", got)
	}
}

func TestDeriveViewAccumulation(t *testing.T) {
	records := GenerateSeed(2025, 9, 16)
	enriched, _ := DeriveView(records)

	if enriched[0].AccumulatedSales != records[0].Sales {
		t.Fatalf("accumulatedSales[0] = %d, want %d", enriched[0].AccumulatedSales, records[0].Sales)
	}
	for i := 1; i < len(enriched); i++ {
		wantSales := enriched[i-1].AccumulatedSales + records[i].Sales
		if enriched[i].AccumulatedSales != wantSales {
			t.Fatalf("accumulatedSales[%d] = %d, want %d", i, enriched[i].AccumulatedSales, wantSales)
		}
		wantCost := enriched[i-1].AccumulatedTotalCost + enriched[i].TotalCost
		if enriched[i].AccumulatedTotalCost != wantCost {
			t.Fatalf("accumulatedTotalCost[%d] = %d, want %d", i, enriched[i].AccumulatedTotalCost, wantCost)
		}
	}

	// A second pass starts back at zero.
	again, _ := DeriveView(records[:1])
	if again[0].AccumulatedSales != records[0].Sales {
		t.Fatalf("accumulation did not reset: %d", again[0].AccumulatedSales)
	}
}

func TestDeriveViewZeroAndNegativeSales(t *testing.T) {
	records := []PeriodRecord{
		{ID: 1, Year: 2025, Month: 1, Sales: 0, COGS: 100},
		{ID: 2, Year: 2025, Month: 2, Sales: -500, COGS: 0},
	}
	enriched, sum := DeriveView(records)
	for i, e := range enriched {
		if e.ProfitMargin != 0 {
			t.Fatalf("record %d: margin must be 0 without positive sales, got %v", i, e.ProfitMargin)
		}
	}
	if sum.ProfitMarginPct != 0 {
		t.Fatalf("summary margin must be 0 without positive sales, got %v", sum.ProfitMarginPct)
	}
}

func TestDeriveViewKeepsInputOrder(t *testing.T) {
	// Derivation must not re-sort: the fold depends on given order.
	records := []PeriodRecord{
		{ID: 2, Year: 2026, Month: 2, Sales: 10},
		{ID: 1, Year: 2026, Month: 1, Sales: 20},
	}
	enriched, _ := DeriveView(records)
	if enriched[0].ID != 2 || enriched[1].ID != 1 {
		t.Fatalf("order changed: %+v", enriched)
	}
	if enriched[1].AccumulatedSales != 30 {
		t.Fatalf("fold did not follow input order: %d", enriched[1].AccumulatedSales)
	}
}

func TestDeriveViewEmpty(t *testing.T) {
	enriched, sum := DeriveView(nil)
	if len(enriched) != 0 {
		t.Fatalf("expected no records, got %d", len(enriched))
	}
	if sum != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", sum)
	}
}
