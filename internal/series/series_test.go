package series

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildStepInterpolation(t *testing.T) {
	// Single EPS observation of 10 before both prices: both days use it.
	prices := []PricePoint{
		{Time: day(2025, time.May, 2), Close: 100},
		{Time: day(2025, time.May, 3), Close: 110},
	}
	funds := []FundamentalPoint{{Time: day(2025, time.March, 31), Value: 10}}

	res := Build(prices, funds)
	if len(res.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(res.Points))
	}
	if res.Points[0].Ratio != 10.0 || res.Points[1].Ratio != 11.0 {
		t.Errorf("ratios = [%v %v], want [10 11]", res.Points[0].Ratio, res.Points[1].Ratio)
	}
	if res.Median != 10.5 {
		t.Errorf("median = %v, want 10.5", res.Median)
	}
}

func TestBuildStepChangesAtReportDate(t *testing.T) {
	prices := []PricePoint{
		{Time: day(2025, time.June, 29), Close: 100},
		{Time: day(2025, time.June, 30), Close: 100},
		{Time: day(2025, time.July, 1), Close: 100},
	}
	funds := []FundamentalPoint{
		{Time: day(2025, time.March, 31), Value: 10},
		{Time: day(2025, time.June, 30), Value: 20},
	}

	res := Build(prices, funds)
	if len(res.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(res.Points))
	}
	// The new fundamental applies from its own date, inclusive.
	wantFunds := []float64{10, 20, 20}
	for i, w := range wantFunds {
		if res.Points[i].Fundamental != w {
			t.Errorf("fundamental[%d] = %v, want %v", i, res.Points[i].Fundamental, w)
		}
	}
}

func TestBuildEarliestFundamentalBackfills(t *testing.T) {
	prices := []PricePoint{{Time: day(2025, time.January, 10), Close: 50}}
	funds := []FundamentalPoint{{Time: day(2025, time.March, 31), Value: 5}}

	res := Build(prices, funds)
	if len(res.Points) != 1 || res.Points[0].Fundamental != 5 {
		t.Fatalf("price before first report should use earliest sample, got %+v", res.Points)
	}
}

func TestBuildDropsOutOfRangeRatios(t *testing.T) {
	prices := []PricePoint{
		{Time: day(2025, time.May, 1), Close: 100},   // ratio 10, kept
		{Time: day(2025, time.May, 2), Close: 20000}, // ratio 2000 >= 1000, dropped
	}
	funds := []FundamentalPoint{{Time: day(2025, time.March, 31), Value: 10}}

	res := Build(prices, funds)
	if len(res.Points) != 1 {
		t.Fatalf("points = %d, want 1", len(res.Points))
	}

	// Negative fundamental yields ratio 0, dropped, not clamped.
	funds[0].Value = -10
	res = Build(prices, funds)
	if len(res.Points) != 0 {
		t.Errorf("negative fundamental kept %d points, want 0", len(res.Points))
	}
}

func TestBuildEmptyInputs(t *testing.T) {
	if res := Build(nil, []FundamentalPoint{{Time: day(2025, time.March, 31), Value: 1}}); len(res.Points) != 0 {
		t.Error("no prices should yield empty result")
	}
	if res := Build([]PricePoint{{Time: day(2025, time.May, 1), Close: 1}}, nil); len(res.Points) != 0 {
		t.Error("no fundamentals should yield empty result")
	}
}

func TestQuarterBarsSparse(t *testing.T) {
	// Daily prices across two fiscal quarters.
	var prices []PricePoint
	for d := day(2025, time.June, 2); d.Before(day(2025, time.August, 30)); d = d.AddDate(0, 0, 1) {
		prices = append(prices, PricePoint{Time: d, Close: 100})
	}
	funds := []FundamentalPoint{{Time: day(2025, time.March, 31), Value: 10}}

	res := Build(prices, funds)

	barred := 0
	for _, p := range res.Points {
		if p.Bar != nil {
			barred++
			if *p.Bar != p.Fundamental {
				t.Errorf("bar value %v != fundamental %v", *p.Bar, p.Fundamental)
			}
		}
	}
	// Each quarter marks points within a week of its last trading day, so
	// far fewer points carry a bar than exist overall.
	if barred == 0 {
		t.Fatal("no bar-marked points")
	}
	if barred >= len(res.Points)/2 {
		t.Errorf("bars not sparse: %d of %d points marked", barred, len(res.Points))
	}

	// The last point of the series is its quarter's representative.
	if res.Points[len(res.Points)-1].Bar == nil {
		t.Error("final point should carry its quarter's bar")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"odd", []float64{1, 2, 3}, 2},
		{"even averages middles", []float64{1, 2, 3, 4}, 2.5},
		{"unsorted", []float64{4, 1, 3, 2}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.in); got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("input mutated: %v", in)
	}
}
