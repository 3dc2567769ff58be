package core

const (
	FieldSales         Field = "sales"
	FieldCOGS          Field = "cogs"
	FieldFixedCost     Field = "fixedCost"
	FieldSpotCost      Field = "spotCost"
	FieldPersonnel     Field = "personnel"
	FieldFixedCostMemo Field = "fixedCostMemo"
	FieldSpotCostMemo  Field = "spotCostMemo"
	FieldPersonnelMemo Field = "personnelMemo"
	FieldMemo          Field = "memo"
)

// Field is the closed enumeration of a record's mutable attributes.
// Identity and calendar anchor (id, year, month) are not editable.
type Field string

// IsValid reports whether f names a mutable attribute. Callers at the
// system boundary must reject anything else; ApplyEdit treats an
// unknown field as a no-op rather than injecting arbitrary keys.
func (f Field) IsValid() bool {
	switch f {
	case FieldSales, FieldCOGS, FieldFixedCost, FieldSpotCost, FieldPersonnel,
		FieldFixedCostMemo, FieldSpotCostMemo, FieldPersonnelMemo, FieldMemo:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether f holds an amount rather than free text.
func (f Field) IsNumeric() bool {
	switch f {
	case FieldSales, FieldCOGS, FieldFixedCost, FieldSpotCost, FieldPersonnel:
		return true
	default:
		return false
	}
}

// Fields lists every editable field, numeric first.
func Fields() []Field {
	return []Field{
		FieldSales, FieldCOGS, FieldFixedCost, FieldSpotCost, FieldPersonnel,
		FieldFixedCostMemo, FieldSpotCostMemo, FieldPersonnelMemo, FieldMemo,
	}
}

// ApplyEdit returns a new sequence identical to records except that
// the record with the given id has field set to value. The input
// sequence and its records are never modified. Numeric fields coerce
// through ParseAmount (malformed input becomes 0). A stale id is not
// an error: the original sequence is returned with ok=false so a
// stale reference can never crash the engine.
func ApplyEdit(records []PeriodRecord, id int64, field Field, value string) ([]PeriodRecord, bool) {
	if !field.IsValid() {
		return records, false
	}
	for i, r := range records {
		if r.ID != id {
			continue
		}
		out := CloneSequence(records)
		out[i] = setField(r, field, value)
		return out, true
	}
	return records, false
}

func setField(r PeriodRecord, field Field, value string) PeriodRecord {
	switch field {
	case FieldSales:
		r.Sales = ParseAmount(value)
	case FieldCOGS:
		r.COGS = ParseAmount(value)
	case FieldFixedCost:
		r.FixedCost = ParseAmount(value)
	case FieldSpotCost:
		r.SpotCost = ParseAmount(value)
	case FieldPersonnel:
		r.Personnel = ParseAmount(value)
	case FieldFixedCostMemo:
		r.FixedCostMemo = value
	case FieldSpotCostMemo:
		r.SpotCostMemo = value
	case FieldPersonnelMemo:
		r.PersonnelMemo = value
	case FieldMemo:
		r.Memo = value
	}
	return r
}
