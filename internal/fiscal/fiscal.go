// Package fiscal is the single home for Indian fiscal-year arithmetic.
// A fiscal year runs April through March and is named by the calendar year
// in which it ends; every other package maps dates to quarters and fiscal
// years through this package rather than re-deriving the rules.
package fiscal

import (
	"fmt"
	"time"
)

// Quarter identifies one fiscal quarter.
type Quarter struct {
	FiscalYear int    // e.g. 2025 for FY Apr 2024 – Mar 2025
	Number     int    // 1..4, Q1 = Apr–Jun
	Label      string // quarter-end label, e.g. "Jun 2024"
}

// Key returns the canonical bucket key, e.g. "2025-Q3".
func (q Quarter) Key() string {
	return fmt.Sprintf("%d-Q%d", q.FiscalYear, q.Number)
}

// QuarterOf maps a date to its fiscal quarter. Jan–Mar is the "Mar" quarter
// and belongs to the fiscal year named by that calendar year; quarters
// ending Apr–Dec belong to the following year's fiscal year.
func QuarterOf(t time.Time) Quarter {
	y := t.Year()
	switch m := t.Month(); {
	case m >= time.January && m <= time.March:
		return Quarter{FiscalYear: y, Number: 4, Label: fmt.Sprintf("Mar %d", y)}
	case m >= time.April && m <= time.June:
		return Quarter{FiscalYear: y + 1, Number: 1, Label: fmt.Sprintf("Jun %d", y)}
	case m >= time.July && m <= time.September:
		return Quarter{FiscalYear: y + 1, Number: 2, Label: fmt.Sprintf("Sep %d", y)}
	default:
		return Quarter{FiscalYear: y + 1, Number: 3, Label: fmt.Sprintf("Dec %d", y)}
	}
}

// YearOf returns the fiscal year a date belongs to.
func YearOf(t time.Time) int {
	return QuarterOf(t).FiscalYear
}

// YearLabel returns the statement column label for a fiscal year,
// e.g. 2025 → "Mar 2025".
func YearLabel(fiscalYear int) string {
	return fmt.Sprintf("Mar %d", fiscalYear)
}

// YearEnd returns the last day of a fiscal year in the given location.
func YearEnd(fiscalYear int, loc *time.Location) time.Time {
	return time.Date(fiscalYear, time.March, 31, 0, 0, 0, 0, loc)
}

// Annualize groups a quarterly series by fiscal year and sums complete
// years. A fiscal year contributes an annual value only when exactly four
// non-nil quarterly samples are present for it; incomplete years are
// dropped, never partially summed. Grouping does not rely on the input
// being ordered. Returned years are most-recent-first with values aligned.
func Annualize(values []*float64, dates []time.Time) (annual []*float64, years []int) {
	n := len(values)
	if len(dates) < n {
		n = len(dates)
	}

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[int]*bucket)
	for i := 0; i < n; i++ {
		if values[i] == nil {
			continue
		}
		fy := YearOf(dates[i])
		b := buckets[fy]
		if b == nil {
			b = &bucket{}
			buckets[fy] = b
		}
		b.sum += *values[i]
		b.count++
	}

	for fy := range buckets {
		if buckets[fy].count == 4 {
			years = append(years, fy)
		}
	}
	sortYearsDesc(years)

	annual = make([]*float64, len(years))
	for i, fy := range years {
		v := buckets[fy].sum
		annual[i] = &v
	}
	return annual, years
}

func sortYearsDesc(years []int) {
	for i := 1; i < len(years); i++ {
		for j := i; j > 0 && years[j] > years[j-1]; j-- {
			years[j], years[j-1] = years[j-1], years[j]
		}
	}
}
