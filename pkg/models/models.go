// Package models defines the core data structures used throughout FundLens.
package models

import "time"

// CompanyType distinguishes the two statement schema families.
type CompanyType string

const (
	Banking    CompanyType = "banking"
	NonBanking CompanyType = "non-banking"
)

// Provenance indicates which fallback tier produced a result.
type Provenance string

const (
	ProvenanceLive      Provenance = "live"
	ProvenanceSecondary Provenance = "secondary"
	ProvenanceSnapshot  Provenance = "snapshot"
	ProvenanceSynthetic Provenance = "synthetic"
)

// Timeframe represents the requested chart range for derived series.
type Timeframe string

const (
	Timeframe1M Timeframe = "1M"
	Timeframe6M Timeframe = "6M"
	Timeframe1Y Timeframe = "1Y"
	Timeframe3Y Timeframe = "3Y"
	Timeframe5Y Timeframe = "5Y"
)

// Timeframes lists the accepted timeframe tokens in display order.
var Timeframes = []Timeframe{Timeframe1M, Timeframe6M, Timeframe1Y, Timeframe3Y, Timeframe5Y}

// ParseTimeframe validates a timeframe token. Unknown tokens are rejected
// before any computation happens.
func ParseTimeframe(s string) (Timeframe, bool) {
	for _, tf := range Timeframes {
		if string(tf) == s {
			return tf, true
		}
	}
	return "", false
}

// Start returns the beginning of the timeframe's date range ending at now.
func (tf Timeframe) Start(now time.Time) time.Time {
	switch tf {
	case Timeframe1M:
		return now.AddDate(0, -1, 0)
	case Timeframe6M:
		return now.AddDate(0, -6, 0)
	case Timeframe1Y:
		return now.AddDate(-1, 0, 0)
	case Timeframe3Y:
		return now.AddDate(-3, 0, 0)
	case Timeframe5Y:
		return now.AddDate(-5, 0, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// OHLCV represents a single candlestick bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Quote represents a near-real-time quote for a listed entity.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	LastPrice float64   `json:"last_price"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	PrevClose float64   `json:"prev_close"`
	Volume    int64     `json:"volume"`
	MarketCap float64   `json:"market_cap"`
	Timestamp time.Time `json:"timestamp"`
}

// ValueType declares how a statement row's raw values are formatted.
type ValueType string

const (
	TypeCurrency   ValueType = "currency"
	TypePercentage ValueType = "percentage"
	TypeNumber     ValueType = "number"
	TypeSection    ValueType = "section"
)

// MetricRow is the materialized result of one statement row: a label, one
// formatted display string per period, and the parallel raw numeric values
// used for styling decisions such as negative-red.
//
// Invariant: len(Values) == len(RawValues) == number of periods for
// non-section rows; section rows carry no values.
type MetricRow struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	Values     []string   `json:"values"`
	RawValues  []*float64 `json:"rawValues"`
	Type       ValueType  `json:"type"`
	IsSection  bool       `json:"isSection,omitempty"`
	IsSubTotal bool       `json:"isSubTotal,omitempty"`
	IsTotal    bool       `json:"isTotal,omitempty"`
	Indent     int        `json:"indent,omitempty"`
}

// StatementResult is a fully rendered multi-period financial statement.
type StatementResult struct {
	Ticker      string      `json:"ticker"`
	Statement   string      `json:"statement"`
	Periods     []string    `json:"periods"`
	Rows        []MetricRow `json:"rows"`
	CompanyType CompanyType `json:"companyType"`
	Provenance  Provenance  `json:"provenance"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// DerivedPoint is one daily sample of a derived valuation series. Bar is
// non-nil only near each quarter's representative trading day so the series
// can drive a sparse quarterly bar overlay; Fundamental is always populated
// for tooltip purposes.
type DerivedPoint struct {
	Time        time.Time `json:"time"`
	Price       float64   `json:"price"`
	Fundamental float64   `json:"fundamental"`
	Ratio       float64   `json:"ratio"`
	Bar         *float64  `json:"fundamental_bar"`
}

// SeriesResult is a derived valuation time series with its reference median.
type SeriesResult struct {
	Ticker     string         `json:"ticker"`
	Metric     string         `json:"metric"`
	Timeframe  Timeframe      `json:"timeframe"`
	Data       []DerivedPoint `json:"data"`
	Median     float64        `json:"median"`
	Provenance Provenance     `json:"provenance"`
}

// NewsArticle is a single news item related to a ticker or the market.
type NewsArticle struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
