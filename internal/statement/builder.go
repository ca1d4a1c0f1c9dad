package statement

import (
	"math"
	"strings"
	"time"

	"github.com/seenimoa/fundlens/internal/fiscal"
	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// fallbackPeriodCount is the column count used when no series has data.
const fallbackPeriodCount = 5

// BuildOptions tunes statement rendering.
type BuildOptions struct {
	// ConvertToCrores divides currency rows by 1e7 before formatting.
	ConvertToCrores bool
	// Now anchors fallback period labels; zero means current IST time.
	Now time.Time
}

// Build materializes a statement from a field map. The output row count
// always equals the schema row count, and the column count equals the
// resolved period count, so the table shape is stable for any input
// including an empty FieldMap. Missing fields become all-null rows;
// alignment pads with nulls, never truncates.
func Build(fm *models.FieldMap, ct models.CompanyType, st Statement, opts BuildOptions) *models.StatementResult {
	specs := Schema(ct, st)
	now := opts.Now
	if now.IsZero() {
		now = utils.NowIST()
	}

	periodCount := annualPeriodCount(fm)
	if periodCount == 0 {
		periodCount = fallbackPeriodCount
	}
	periods := resolvePeriods(fm, periodCount, now)

	rows := make(RowValues, len(specs))
	out := make([]models.MetricRow, 0, len(specs))

	for _, spec := range specs {
		if spec.Kind == KindSection {
			out = append(out, models.MetricRow{
				Key:       spec.Key,
				Label:     spec.Label,
				Type:      models.TypeSection,
				IsSection: true,
			})
			continue
		}

		var raw []*float64
		switch spec.Kind {
		case KindField:
			raw = fm.Series(spec.FieldKey)
			if !anyPresent(raw) && isFlowStatement(st) {
				raw = annualFromQuarters(fm, spec.FieldKey, periods)
			}
		case KindComputed:
			raw = spec.Compute(fm, rows)
		}
		raw = align(raw, periodCount)
		rows[spec.Key] = raw

		display := raw
		if spec.Type == models.TypeCurrency && opts.ConvertToCrores {
			display = scale(raw, 1/utils.CrorePerUnit)
		}

		out = append(out, models.MetricRow{
			Key:        spec.Key,
			Label:      spec.Label,
			Values:     formatValues(display, spec.Type),
			RawValues:  display,
			Type:       spec.Type,
			IsSubTotal: spec.IsSubTotal,
			IsTotal:    spec.IsTotal,
			Indent:     spec.Indent,
		})
	}

	return &models.StatementResult{
		Ticker:      fm.Ticker,
		Statement:   string(st),
		Periods:     periods,
		Rows:        out,
		CompanyType: ct,
		LastUpdated: now,
	}
}

// resolvePeriods returns one label per column, preferring the vendor's
// period labels and filling any shortfall with fiscal-year labels counted
// back from the current fiscal year.
func resolvePeriods(fm *models.FieldMap, count int, now time.Time) []string {
	periods := make([]string, count)
	currentFY := fiscal.YearOf(now)
	for i := 0; i < count; i++ {
		if i < len(fm.Periods) && fm.Periods[i] != "" {
			periods[i] = fm.Periods[i]
			continue
		}
		periods[i] = fiscal.YearLabel(currentFY - i)
	}
	return periods
}

// annualPeriodCount resolves the column count from the annual series only;
// quarterly arrays are longer and must not widen the table.
func annualPeriodCount(fm *models.FieldMap) int {
	max := len(fm.Periods)
	for key, fs := range fm.Fields {
		if strings.HasSuffix(key, models.QuarterlySuffix) {
			continue
		}
		if len(fs.Values) > max {
			max = len(fs.Values)
		}
	}
	return max
}

// isFlowStatement reports whether a statement's rows are flows that can be
// summed across quarters. Balance-sheet stocks and ratios cannot.
func isFlowStatement(st Statement) bool {
	return st == ProfitLoss || st == CashFlow
}

// anyPresent reports whether a series carries at least one sample.
func anyPresent(values []*float64) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}

// annualFromQuarters derives a missing annual series from its quarterly
// counterpart, summing complete fiscal years and aligning the sums to the
// column labels. Returns nil when no column can be filled.
func annualFromQuarters(fm *models.FieldMap, key string, periods []string) []*float64 {
	if !strings.HasSuffix(key, "_h") || strings.HasSuffix(key, "_q_h") {
		return nil
	}
	quarterly := fm.Series(strings.TrimSuffix(key, "_h") + "_q_h")
	if len(quarterly) == 0 || len(fm.QuarterDates) == 0 {
		return nil
	}

	annual, years := fiscal.Annualize(quarterly, fm.QuarterDates)
	byLabel := make(map[string]*float64, len(years))
	for i, fy := range years {
		byLabel[fiscal.YearLabel(fy)] = annual[i]
	}

	out := make([]*float64, len(periods))
	filled := false
	for i, p := range periods {
		if v, ok := byLabel[p]; ok && v != nil {
			out[i] = v
			filled = true
		}
	}
	if !filled {
		return nil
	}
	return out
}

// align pads a series with nulls to the period count. A longer series is
// never produced because the period count is the maximum series length.
func align(values []*float64, count int) []*float64 {
	out := make([]*float64, count)
	copy(out, values)
	return out
}

// scale multiplies every present sample by factor, producing a new series.
func scale(values []*float64, factor float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		scaled := *v * factor
		out[i] = &scaled
	}
	return out
}

// formatValues renders the display string for each sample per the row's
// declared type. Missing samples render as N/A, distinct from zero.
func formatValues(values []*float64, vt models.ValueType) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v != nil && math.IsNaN(*v) {
			v = nil
		}
		switch vt {
		case models.TypeCurrency:
			out[i] = utils.FormatCurrency(v)
		case models.TypePercentage:
			out[i] = utils.FormatPercent(v)
		default:
			out[i] = utils.FormatNumber(v)
		}
	}
	return out
}
