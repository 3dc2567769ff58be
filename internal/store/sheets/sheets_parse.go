package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomcoffee/kimono-sim/internal/core"
)

// parsePlanRows converts a values matrix (as returned by the Sheets
// API) into period records. Row 0 must be the plan header; rows with
// no id cell are skipped. Spreadsheet cells are loosely typed, so
// amounts coerce through the same default-zero policy as every other
// boundary.
func parsePlanRows(values [][]interface{}) ([]core.PeriodRecord, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if err := checkHeader(values[0]); err != nil {
		return nil, err
	}

	var records []core.PeriodRecord
	for i := 1; i < len(values); i++ {
		row := values[i]
		idCell := strings.TrimSpace(cellString(row, 0))
		if idCell == "" {
			continue
		}
		id, err := strconv.ParseInt(idCell, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad id %q", i+1, idCell)
		}
		records = append(records, core.PeriodRecord{
			ID:            id,
			Year:          int(cellAmount(row, 1)),
			Month:         int(cellAmount(row, 2)),
			Sales:         cellAmount(row, 3),
			COGS:          cellAmount(row, 4),
			FixedCost:     cellAmount(row, 5),
			SpotCost:      cellAmount(row, 6),
			Personnel:     cellAmount(row, 7),
			FixedCostMemo: cellString(row, 8),
			SpotCostMemo:  cellString(row, 9),
			PersonnelMemo: cellString(row, 10),
			Memo:          cellString(row, 11),
		})
	}
	return records, nil
}

func checkHeader(row []interface{}) error {
	for i, want := range planHeader {
		if got := strings.TrimSpace(cellString(row, i)); got != want {
			return fmt.Errorf("unexpected plan header: column %d is %q, want %q", i, got, want)
		}
	}
	return nil
}

func planRow(r core.PeriodRecord) []interface{} {
	return []interface{}{
		r.ID, r.Year, r.Month, r.Sales, r.COGS, r.FixedCost, r.SpotCost,
		r.Personnel, r.FixedCostMemo, r.SpotCostMemo, r.PersonnelMemo, r.Memo,
	}
}

func cellString(row []interface{}, col int) string {
	if col >= len(row) || row[col] == nil {
		return ""
	}
	switch v := row[col].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func cellAmount(row []interface{}, col int) int64 {
	return core.ParseAmount(cellString(row, col))
}
