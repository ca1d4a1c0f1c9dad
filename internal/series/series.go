// Package series fuses a daily price series with a lower-frequency
// fundamentals series into a derived valuation time series (P/E,
// market-cap/sales), with a sparse quarterly bar overlay and a static
// median reference line.
package series

import (
	"sort"
	"time"

	"github.com/seenimoa/fundlens/internal/fiscal"
	"github.com/seenimoa/fundlens/pkg/models"
)

// PricePoint is one daily close.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// FundamentalPoint is one dated fundamental observation (TTM EPS,
// TTM sales per share).
type FundamentalPoint struct {
	Time  time.Time
	Value float64
}

// maxRatio bounds the sane range; ratios at or beyond it are dropped from
// the output, not clamped. Ratios at or below zero are dropped likewise.
const maxRatio = 1000

// barWindow is how close to a quarter's representative day a point must be
// to carry the quarter's bar value.
const barWindow = 7 * 24 * time.Hour

// Result is a built derived series.
type Result struct {
	Points []models.DerivedPoint
	Median float64
}

// Build constructs the derived series. For each daily price the effective
// fundamental is the most recent sample dated at or before the price
// (step interpolation); a price predating every sample uses the earliest
// one. The fundamental changes in discrete steps aligned to report dates,
// never continuously.
func Build(prices []PricePoint, fundamentals []FundamentalPoint) Result {
	if len(prices) == 0 || len(fundamentals) == 0 {
		return Result{}
	}

	funds := make([]FundamentalPoint, len(fundamentals))
	copy(funds, fundamentals)
	sort.Slice(funds, func(i, j int) bool { return funds[i].Time.Before(funds[j].Time) })

	points := make([]models.DerivedPoint, 0, len(prices))
	var ratios []float64
	for _, p := range prices {
		fund := stepValue(funds, p.Time)

		ratio := 0.0
		if fund > 0 {
			ratio = p.Close / fund
		}
		if ratio <= 0 || ratio >= maxRatio {
			continue
		}

		points = append(points, models.DerivedPoint{
			Time:        p.Time,
			Price:       p.Close,
			Fundamental: fund,
			Ratio:       ratio,
		})
		ratios = append(ratios, ratio)
	}

	markQuarterBars(points)

	return Result{Points: points, Median: Median(ratios)}
}

// stepValue returns the latest fundamental dated at or before t, or the
// earliest sample when none precedes t. funds must be sorted ascending.
func stepValue(funds []FundamentalPoint, t time.Time) float64 {
	i := sort.Search(len(funds), func(i int) bool { return funds[i].Time.After(t) })
	if i == 0 {
		return funds[0].Value
	}
	return funds[i-1].Value
}

// markQuarterBars picks each fiscal quarter's latest-dated point as its
// representative and sets the bar field on points within the bar window of
// it. All other points keep a nil bar, yielding a sparse series suitable
// for a quarterly overlay without a full-resolution bar per day.
func markQuarterBars(points []models.DerivedPoint) {
	reps := make(map[string]time.Time)
	for _, p := range points {
		key := fiscal.QuarterOf(p.Time).Key()
		if rep, ok := reps[key]; !ok || p.Time.After(rep) {
			reps[key] = p.Time
		}
	}

	for i := range points {
		rep := reps[fiscal.QuarterOf(points[i].Time).Key()]
		delta := rep.Sub(points[i].Time)
		if delta < 0 {
			delta = -delta
		}
		if delta <= barWindow {
			v := points[i].Fundamental
			points[i].Bar = &v
		}
	}
}

// Median computes the standard median: the middle element for odd length,
// the mean of the two middle elements for even length. It does not mutate
// its input and is invariant under reordering.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
