package core

import (
	"errors"
	"testing"
)

func TestMonthKey(t *testing.T) {
	cases := []struct {
		year, month int
		want        string
	}{
		{2025, 9, "2025-09"},
		{2026, 12, "2026-12"},
		{999, 1, "0999-01"},
	}
	for _, tc := range cases {
		r := PeriodRecord{Year: tc.year, Month: tc.month}
		if got := r.MonthKey(); got != tc.want {
			t.Fatalf("MonthKey(%d,%d) = %q, want %q", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestValidateSequence(t *testing.T) {
	good := []PeriodRecord{
		{ID: 1, Year: 2025, Month: 11},
		{ID: 2, Year: 2025, Month: 12},
		{ID: 3, Year: 2026, Month: 1},
	}
	if err := ValidateSequence(good); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateSequence(nil); err != nil {
		t.Fatalf("empty sequence should validate, got %v", err)
	}

	cases := []struct {
		name    string
		records []PeriodRecord
		want    error
	}{
		{
			name:    "duplicate id",
			records: []PeriodRecord{{ID: 1, Year: 2025, Month: 1}, {ID: 1, Year: 2025, Month: 2}},
			want:    ErrDuplicateID,
		},
		{
			name:    "month out of range",
			records: []PeriodRecord{{ID: 1, Year: 2025, Month: 13}},
			want:    ErrInvalidMonth,
		},
		{
			name:    "duplicate month key",
			records: []PeriodRecord{{ID: 1, Year: 2025, Month: 5}, {ID: 2, Year: 2025, Month: 5}},
			want:    ErrUnorderedSequence,
		},
		{
			name:    "decreasing year",
			records: []PeriodRecord{{ID: 1, Year: 2026, Month: 1}, {ID: 2, Year: 2025, Month: 2}},
			want:    ErrUnorderedSequence,
		},
	}
	for _, tc := range cases {
		err := ValidateSequence(tc.records)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestCloneSequenceIndependence(t *testing.T) {
	orig := []PeriodRecord{{ID: 1, Sales: 100}, {ID: 2, Sales: 200}}
	cl := CloneSequence(orig)
	cl[0].Sales = 999
	if orig[0].Sales != 100 {
		t.Fatalf("clone mutated original: %d", orig[0].Sales)
	}
	if CloneSequence(nil) != nil {
		t.Fatalf("clone of nil should stay nil")
	}
}
