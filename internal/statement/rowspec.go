// Package statement turns a normalized FieldMap into rendered multi-period
// financial statements using declarative per-company-type row schemas.
package statement

import (
	"github.com/seenimoa/fundlens/pkg/models"
)

// Statement identifies one statement kind.
type Statement string

const (
	BalanceSheet Statement = "balance-sheet"
	ProfitLoss   Statement = "profit-loss"
	CashFlow     Statement = "cash-flow"
	Ratios       Statement = "ratios"
)

// Statements lists the supported statement kinds.
var Statements = []Statement{BalanceSheet, ProfitLoss, CashFlow, Ratios}

// ParseStatement validates a statement kind token.
func ParseStatement(s string) (Statement, bool) {
	for _, st := range Statements {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Kind is the row variant tag. Every RowSpec is exactly one of a section
// header, a direct field lookup, or a computed row, so schema handling can
// switch exhaustively instead of probing optional fields.
type Kind int

const (
	KindSection Kind = iota
	KindField
	KindComputed
)

// RowValues carries already-computed raw rows, keyed by row key, so
// computed rows can depend on rows evaluated earlier in the schema.
type RowValues map[string][]*float64

// ComputeFunc derives a row's raw values from the field map and the
// running row outputs. Values are in raw (unconverted) units.
type ComputeFunc func(fm *models.FieldMap, rows RowValues) []*float64

// RowSpec describes one statement row. Specs are static configuration,
// never derived from input.
type RowSpec struct {
	Key        string
	Label      string
	Kind       Kind
	FieldKey   string      // KindField only
	Compute    ComputeFunc // KindComputed only
	Type       models.ValueType
	IsSubTotal bool
	IsTotal    bool
	Indent     int
}

// Section declares a structural header row carrying no values.
func Section(label string) RowSpec {
	return RowSpec{Key: label, Label: label, Kind: KindSection, Type: models.TypeSection}
}

// Field declares a direct field-lookup row.
func Field(key, label, fieldKey string, vt models.ValueType) RowSpec {
	return RowSpec{Key: key, Label: label, Kind: KindField, FieldKey: fieldKey, Type: vt}
}

// Computed declares a derived row.
func Computed(key, label string, vt models.ValueType, fn ComputeFunc) RowSpec {
	return RowSpec{Key: key, Label: label, Kind: KindComputed, Compute: fn, Type: vt}
}

// AsSubTotal marks the row as a subtotal.
func (r RowSpec) AsSubTotal() RowSpec { r.IsSubTotal = true; return r }

// AsTotal marks the row as a grand total.
func (r RowSpec) AsTotal() RowSpec { r.IsTotal = true; return r }

// Indented sets the row's nesting level.
func (r RowSpec) Indented(level int) RowSpec { r.Indent = level; return r }

// --- series arithmetic for computed rows ---

// maxLen returns the longest length among the given series.
func maxLen(series ...[]*float64) int {
	n := 0
	for _, s := range series {
		if len(s) > n {
			n = len(s)
		}
	}
	return n
}

// at returns the i-th sample of a series, nil when out of range.
func at(s []*float64, i int) *float64 {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// sumSeries adds series element-wise. Missing samples are skipped; an
// index where every operand is missing yields nil, not zero.
func sumSeries(series ...[]*float64) []*float64 {
	n := maxLen(series...)
	out := make([]*float64, n)
	for i := 0; i < n; i++ {
		sum, seen := 0.0, false
		for _, s := range series {
			if v := at(s, i); v != nil {
				sum += *v
				seen = true
			}
		}
		if seen {
			v := sum
			out[i] = &v
		}
	}
	return out
}

// subSeries subtracts each of subtrahends from minuend element-wise. The
// result is nil wherever the minuend is missing; missing subtrahends
// count as zero.
func subSeries(minuend []*float64, subtrahends ...[]*float64) []*float64 {
	n := maxLen(append(subtrahends, minuend)...)
	out := make([]*float64, n)
	for i := 0; i < n; i++ {
		m := at(minuend, i)
		if m == nil {
			continue
		}
		v := *m
		for _, s := range subtrahends {
			if sv := at(s, i); sv != nil {
				v -= *sv
			}
		}
		out[i] = &v
	}
	return out
}

// pctSeries computes numerator/denominator*100 element-wise; nil wherever
// either side is missing or the denominator is zero.
func pctSeries(num, den []*float64) []*float64 {
	n := maxLen(num, den)
	out := make([]*float64, n)
	for i := 0; i < n; i++ {
		nv, dv := at(num, i), at(den, i)
		if nv == nil || dv == nil || *dv == 0 {
			continue
		}
		v := *nv / *dv * 100
		out[i] = &v
	}
	return out
}
