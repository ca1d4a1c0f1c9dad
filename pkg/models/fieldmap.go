package models

import "time"

// Suffix conventions for vendor field names. Fields ending in HistSuffix are
// historical annual arrays, most-recent-first; QuarterlySuffix marks
// quarterly arrays. Names without a suffix hold a single most-recent value.
const (
	HistSuffix      = "_h"
	QuarterlySuffix = "_q_h"
)

// FieldSeries is a named, ordered sequence of numeric-or-null samples for
// one vendor field. Order is most-recent-first. A nil element is an explicit
// gap, never to be silently dropped.
type FieldSeries struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// FieldMap is the normalized per-request view of a raw vendor payload:
// named series plus scalar metadata. It is built once per request and is
// read-only thereafter; all transforms produce new values.
type FieldMap struct {
	Ticker     string                 `json:"ticker"`
	Sector     string                 `json:"sector"`
	Industry   string                 `json:"industry"`
	ReportType string                 `json:"report_type"`
	Fields     map[string]FieldSeries `json:"fields"`

	// Periods labels the annual series indices (e.g. "Mar 2025"),
	// most-recent-first. QuarterDates dates the quarterly series indices.
	Periods      []string    `json:"periods"`
	QuarterDates []time.Time `json:"quarter_dates"`
}

// NewFieldMap returns an empty FieldMap for the given ticker.
func NewFieldMap(ticker string) *FieldMap {
	return &FieldMap{
		Ticker: ticker,
		Fields: make(map[string]FieldSeries),
	}
}

// Has reports whether the named field is present with at least one sample.
func (fm *FieldMap) Has(key string) bool {
	fs, ok := fm.Fields[key]
	return ok && len(fs.Values) > 0
}

// Series returns the named field's samples, or nil when absent.
func (fm *FieldMap) Series(key string) []*float64 {
	fs, ok := fm.Fields[key]
	if !ok {
		return nil
	}
	return fs.Values
}

// Scalar returns the most recent sample of the named field.
func (fm *FieldMap) Scalar(key string) *float64 {
	fs, ok := fm.Fields[key]
	if !ok || len(fs.Values) == 0 {
		return nil
	}
	return fs.Values[0]
}

// Set stores a series under the given field name.
func (fm *FieldMap) Set(key string, values []*float64) {
	fm.Fields[key] = FieldSeries{Name: key, Values: values}
}

// SetScalar stores a single-sample series under the given field name.
func (fm *FieldMap) SetScalar(key string, v float64) {
	val := v
	fm.Fields[key] = FieldSeries{Name: key, Values: []*float64{&val}}
}

// MaxSeriesLen returns the length of the longest historical series, which
// resolves the statement period count.
func (fm *FieldMap) MaxSeriesLen() int {
	max := 0
	for _, fs := range fm.Fields {
		if len(fs.Values) > max {
			max = len(fs.Values)
		}
	}
	return max
}

// HasData reports whether any field carries at least one non-nil sample.
// This is the validity predicate for fundamentals cascade tiers.
func (fm *FieldMap) HasData() bool {
	if fm == nil {
		return false
	}
	for _, fs := range fm.Fields {
		for _, v := range fs.Values {
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Float is a convenience constructor for optional sample values.
func Float(v float64) *float64 { return &v }
