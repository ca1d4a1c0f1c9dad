package fiscal

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fp(v float64) *float64 { return &v }

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		name     string
		in       time.Time
		wantFY   int
		wantNum  int
		wantName string
	}{
		{"Jan belongs to same-year FY", date(2025, time.January, 15), 2025, 4, "Mar 2025"},
		{"Mar 31 closes the FY", date(2025, time.March, 31), 2025, 4, "Mar 2025"},
		{"Apr opens next FY", date(2025, time.April, 1), 2026, 1, "Jun 2025"},
		{"Jun quarter", date(2024, time.May, 10), 2025, 1, "Jun 2024"},
		{"Sep quarter", date(2024, time.August, 31), 2025, 2, "Sep 2024"},
		{"Dec quarter", date(2024, time.November, 2), 2025, 3, "Dec 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuarterOf(tt.in)
			if q.FiscalYear != tt.wantFY || q.Number != tt.wantNum || q.Label != tt.wantName {
				t.Errorf("QuarterOf(%s) = FY%d Q%d %q, want FY%d Q%d %q",
					tt.in.Format("2006-01-02"), q.FiscalYear, q.Number, q.Label,
					tt.wantFY, tt.wantNum, tt.wantName)
			}
		})
	}
}

func TestQuarterKey(t *testing.T) {
	q := QuarterOf(date(2024, time.November, 2))
	if got := q.Key(); got != "2025-Q3" {
		t.Errorf("Key() = %q, want 2025-Q3", got)
	}
}

func TestYearLabel(t *testing.T) {
	if got := YearLabel(2025); got != "Mar 2025" {
		t.Errorf("YearLabel(2025) = %q, want Mar 2025", got)
	}
}

func TestAnnualizeCompleteYearOnly(t *testing.T) {
	// FY2025 has all four quarters; FY2026 has only two. Only FY2025 may
	// contribute an annual value.
	values := []*float64{fp(50), fp(45), fp(10), fp(11), fp(12), fp(13)}
	dates := []time.Time{
		date(2025, time.September, 30), // FY2026 Q2
		date(2025, time.June, 30),      // FY2026 Q1
		date(2025, time.March, 31),     // FY2025 Q4
		date(2024, time.December, 31),  // FY2025 Q3
		date(2024, time.September, 30), // FY2025 Q2
		date(2024, time.June, 30),      // FY2025 Q1
	}

	annual, years := Annualize(values, dates)
	if len(years) != 1 || years[0] != 2025 {
		t.Fatalf("years = %v, want [2025]", years)
	}
	if annual[0] == nil || *annual[0] != 46 {
		t.Errorf("annual[0] = %v, want 46", annual[0])
	}
}

func TestAnnualizeNilQuarterDisqualifiesYear(t *testing.T) {
	values := []*float64{fp(10), nil, fp(12), fp(13)}
	dates := []time.Time{
		date(2025, time.March, 31),
		date(2024, time.December, 31),
		date(2024, time.September, 30),
		date(2024, time.June, 30),
	}

	annual, years := Annualize(values, dates)
	if len(years) != 0 || len(annual) != 0 {
		t.Errorf("Annualize with a gap = (%v, %v), want empty", annual, years)
	}
}

func TestAnnualizeOrderIndependent(t *testing.T) {
	values := []*float64{fp(13), fp(10), fp(12), fp(11)}
	dates := []time.Time{
		date(2024, time.June, 30),
		date(2025, time.March, 31),
		date(2024, time.September, 30),
		date(2024, time.December, 31),
	}

	annual, years := Annualize(values, dates)
	if len(years) != 1 || years[0] != 2025 {
		t.Fatalf("years = %v, want [2025]", years)
	}
	if *annual[0] != 46 {
		t.Errorf("annual[0] = %v, want 46", *annual[0])
	}
}

func TestAnnualizeMostRecentFirst(t *testing.T) {
	var values []*float64
	var dates []time.Time
	// Two complete fiscal years, oldest first on input.
	for _, q := range []time.Time{
		date(2023, time.June, 30), date(2023, time.September, 30),
		date(2023, time.December, 31), date(2024, time.March, 31),
		date(2024, time.June, 30), date(2024, time.September, 30),
		date(2024, time.December, 31), date(2025, time.March, 31),
	} {
		values = append(values, fp(1))
		dates = append(dates, q)
	}

	_, years := Annualize(values, dates)
	if len(years) != 2 || years[0] != 2025 || years[1] != 2024 {
		t.Errorf("years = %v, want [2025 2024]", years)
	}
}
