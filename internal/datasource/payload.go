package datasource

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// fundamentalsPayload is the wire envelope shared by the live vendor
// fundamentals endpoint and the local snapshot files. Field names follow
// the suffix convention: "_h" historical annual arrays, "_q_h" quarterly
// arrays, no suffix for single most-recent values. Array elements may be
// null; nulls survive normalization as explicit gaps.
type fundamentalsPayload struct {
	Ticker       string                `json:"ticker"`
	Sector       string                `json:"sector"`
	Industry     string                `json:"industry"`
	ReportType   string                `json:"report_type"`
	Periods      []string              `json:"periods"`
	QuarterDates []string              `json:"quarter_dates"`
	Fields       map[string][]*float64 `json:"fields"`

	// Bars is populated in snapshot files only, so one file can serve
	// both cascade legs.
	Bars []barPayload `json:"bars,omitempty"`
}

type barPayload struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// decodeFundamentals parses and normalizes a fundamentals envelope. A
// shape mismatch is an error so the cascade treats it like an unavailable
// source.
func decodeFundamentals(r io.Reader, symbol string) (*fundamentalsPayload, *models.FieldMap, error) {
	var payload fundamentalsPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, nil, fmt.Errorf("decode fundamentals envelope: %w", err)
	}
	if payload.Fields == nil {
		return nil, nil, fmt.Errorf("fundamentals envelope for %s has no fields", symbol)
	}

	fm := models.NewFieldMap(symbol)
	fm.Sector = payload.Sector
	fm.Industry = payload.Industry
	fm.ReportType = payload.ReportType
	fm.Periods = payload.Periods
	for name, values := range payload.Fields {
		fm.Set(name, values)
	}

	for _, d := range payload.QuarterDates {
		t, err := utils.ParseDateIST(d)
		if err != nil {
			return nil, nil, fmt.Errorf("bad quarter date %q: %w", d, err)
		}
		fm.QuarterDates = append(fm.QuarterDates, t)
	}

	return &payload, fm, nil
}

// decodeBars converts snapshot bar payloads to OHLCV, skipping rows with
// unparseable dates.
func decodeBars(bars []barPayload) []models.OHLCV {
	out := make([]models.OHLCV, 0, len(bars))
	for _, b := range bars {
		t, err := utils.ParseDateIST(b.Date)
		if err != nil {
			continue
		}
		out = append(out, models.OHLCV{
			Timestamp: t,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	return out
}

// filterBars keeps bars within [from, to], preserving order.
func filterBars(bars []models.OHLCV, from, to time.Time) []models.OHLCV {
	out := make([]models.OHLCV, 0, len(bars))
	for _, b := range bars {
		if b.Timestamp.Before(from) || b.Timestamp.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
