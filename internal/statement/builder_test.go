package statement

import (
	"testing"
	"time"

	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

func fp(v float64) *float64 { return &v }

func testNow() time.Time {
	return time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC)
}

func sampleFieldMap() *models.FieldMap {
	fm := models.NewFieldMap("ACME")
	fm.Sector = "Diversified"
	fm.Periods = []string{"Mar 2025", "Mar 2024", "Mar 2023"}
	fm.Set("revenue_h", []*float64{fp(utils.FromCrores(1000)), fp(utils.FromCrores(900)), fp(utils.FromCrores(800))})
	fm.Set("other_income_h", []*float64{fp(utils.FromCrores(20)), fp(utils.FromCrores(18)), fp(utils.FromCrores(16))})
	fm.Set("expenses_h", []*float64{fp(utils.FromCrores(800)), fp(utils.FromCrores(730)), fp(utils.FromCrores(660))})
	fm.Set("interest_h", []*float64{fp(utils.FromCrores(30)), fp(utils.FromCrores(28)), fp(utils.FromCrores(26))})
	fm.Set("depreciation_h", []*float64{fp(utils.FromCrores(40)), fp(utils.FromCrores(38)), fp(utils.FromCrores(36))})
	fm.Set("tax_h", []*float64{fp(utils.FromCrores(38)), fp(utils.FromCrores(31)), fp(utils.FromCrores(24))})
	fm.Set("eps_h", []*float64{fp(28.4), fp(24.1), fp(19.7)})
	return fm
}

func findRow(t *testing.T, res *models.StatementResult, key string) models.MetricRow {
	t.Helper()
	for _, row := range res.Rows {
		if row.Key == key {
			return row
		}
	}
	t.Fatalf("row %q not found", key)
	return models.MetricRow{}
}

func TestBuildComputedRows(t *testing.T) {
	res := Build(sampleFieldMap(), models.NonBanking, ProfitLoss, BuildOptions{ConvertToCrores: true, Now: testNow()})

	// total_income = revenue + other_income; ebitda = total_income - expenses;
	// pbt = ebitda - interest - depreciation; net = pbt - tax. In crores.
	checks := map[string]float64{
		"total_income": 1020,
		"ebitda":       220,
		"pbt":          150,
		"net_profit":   112,
	}
	for key, want := range checks {
		row := findRow(t, res, key)
		if row.RawValues[0] == nil || *row.RawValues[0] != want {
			t.Errorf("%s[0] = %v, want %v", key, row.RawValues[0], want)
		}
	}

	opm := findRow(t, res, "opm")
	if opm.Values[0] != "22%" {
		t.Errorf("opm[0] = %q, want 22%%", opm.Values[0])
	}

	eps := findRow(t, res, "eps")
	if eps.Values[0] != "28.40" {
		t.Errorf("eps[0] = %q, want 28.40", eps.Values[0])
	}
}

func TestBuildStableShapeOnEmptyInput(t *testing.T) {
	fm := models.NewFieldMap("EMPTY")
	res := Build(fm, models.NonBanking, ProfitLoss, BuildOptions{ConvertToCrores: true, Now: testNow()})

	if len(res.Rows) != len(nonBankingProfitLoss) {
		t.Fatalf("row count = %d, want %d", len(res.Rows), len(nonBankingProfitLoss))
	}
	if len(res.Periods) != fallbackPeriodCount {
		t.Fatalf("period count = %d, want %d", len(res.Periods), fallbackPeriodCount)
	}

	for _, row := range res.Rows {
		if row.IsSection {
			continue
		}
		if len(row.Values) != fallbackPeriodCount {
			t.Errorf("row %s has %d values, want %d", row.Key, len(row.Values), fallbackPeriodCount)
		}
		for i, v := range row.Values {
			if v != utils.NA {
				t.Errorf("row %s value[%d] = %q, want N/A", row.Key, i, v)
			}
		}
	}

	// Fallback labels count back from the current fiscal year.
	if res.Periods[0] != "Mar 2026" || res.Periods[1] != "Mar 2025" {
		t.Errorf("fallback periods = %v", res.Periods[:2])
	}
}

func TestBuildZeroIsNotNA(t *testing.T) {
	fm := models.NewFieldMap("ZED")
	fm.Periods = []string{"Mar 2025"}
	fm.Set("revenue_h", []*float64{fp(0)})

	res := Build(fm, models.NonBanking, ProfitLoss, BuildOptions{ConvertToCrores: true, Now: testNow()})
	row := findRow(t, res, "revenue")
	if row.Values[0] != "0" {
		t.Errorf("zero revenue renders %q, want \"0\"", row.Values[0])
	}
}

func TestBuildPadsShortSeries(t *testing.T) {
	fm := sampleFieldMap()
	// eps has only one sample; the rest have three.
	fm.Set("eps_h", []*float64{fp(28.4)})

	res := Build(fm, models.NonBanking, ProfitLoss, BuildOptions{ConvertToCrores: true, Now: testNow()})
	eps := findRow(t, res, "eps")
	if len(eps.Values) != 3 {
		t.Fatalf("eps has %d values, want 3", len(eps.Values))
	}
	if eps.Values[1] != utils.NA || eps.Values[2] != utils.NA {
		t.Errorf("padded eps values = %v, want N/A tail", eps.Values[1:])
	}
}

func TestBuildIdempotent(t *testing.T) {
	a := Build(sampleFieldMap(), models.NonBanking, ProfitLoss, BuildOptions{ConvertToCrores: true, Now: testNow()})
	b := Build(sampleFieldMap(), models.NonBanking, ProfitLoss, BuildOptions{ConvertToCrores: true, Now: testNow()})

	if len(a.Rows) != len(b.Rows) {
		t.Fatalf("row counts differ: %d vs %d", len(a.Rows), len(b.Rows))
	}
	for i := range a.Rows {
		for j := range a.Rows[i].Values {
			if a.Rows[i].Values[j] != b.Rows[i].Values[j] {
				t.Errorf("row %s value[%d] differs: %q vs %q",
					a.Rows[i].Key, j, a.Rows[i].Values[j], b.Rows[i].Values[j])
			}
		}
	}
}

func TestBuildBankingSchemaSelected(t *testing.T) {
	fm := models.NewFieldMap("TESTBANK")
	fm.Periods = []string{"Mar 2025"}
	fm.Set("interest_earned_h", []*float64{fp(utils.FromCrores(5000))})
	fm.Set("deposits_h", []*float64{fp(utils.FromCrores(45000))})

	res := Build(fm, models.Banking, ProfitLoss, BuildOptions{ConvertToCrores: true, Now: testNow()})
	row := findRow(t, res, "interest_earned")
	if row.Values[0] != "5,000" {
		t.Errorf("interest_earned[0] = %q, want 5,000", row.Values[0])
	}
	// A non-banking key must not appear in the banking schema.
	for _, r := range res.Rows {
		if r.Key == "revenue" {
			t.Error("banking profit-loss contains non-banking revenue row")
		}
	}
}

func TestBuildDerivesAnnualFromCompleteQuarters(t *testing.T) {
	fm := models.NewFieldMap("QTRONLY")
	// Eight quarters, most-recent-first: FY2025 (Mar 2025 back to Jun 2024)
	// is complete, FY2024 is complete too.
	quarters := []*float64{
		fp(utils.FromCrores(260)), fp(utils.FromCrores(250)),
		fp(utils.FromCrores(245)), fp(utils.FromCrores(245)),
		fp(utils.FromCrores(230)), fp(utils.FromCrores(225)),
		fp(utils.FromCrores(220)), fp(utils.FromCrores(225)),
	}
	fm.Set("revenue_q_h", quarters)
	fm.QuarterDates = []time.Time{
		time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.September, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.June, 30, 0, 0, 0, 0, time.UTC),
	}

	res := Build(fm, models.NonBanking, ProfitLoss, BuildOptions{ConvertToCrores: true, Now: testNow()})

	// Columns fall back to fiscal-year labels from the current FY.
	if res.Periods[0] != "Mar 2026" || res.Periods[1] != "Mar 2025" {
		t.Fatalf("periods = %v", res.Periods[:2])
	}

	row := findRow(t, res, "revenue")
	if row.RawValues[0] != nil {
		t.Errorf("FY2026 has no quarters, want N/A, got %v", *row.RawValues[0])
	}
	if row.RawValues[1] == nil || *row.RawValues[1] != 1000 {
		t.Errorf("FY2025 annualized revenue = %v, want 1000", row.RawValues[1])
	}
	if row.RawValues[2] == nil || *row.RawValues[2] != 900 {
		t.Errorf("FY2024 annualized revenue = %v, want 900", row.RawValues[2])
	}
}

func TestBuildIncompleteQuartersStayNA(t *testing.T) {
	fm := models.NewFieldMap("PARTIAL")
	fm.Set("revenue_q_h", []*float64{fp(utils.FromCrores(260)), fp(utils.FromCrores(250))})
	fm.QuarterDates = []time.Time{
		time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}

	res := Build(fm, models.NonBanking, ProfitLoss, BuildOptions{ConvertToCrores: true, Now: testNow()})
	row := findRow(t, res, "revenue")
	for i, v := range row.RawValues {
		if v != nil {
			t.Errorf("two quarters must not annualize; value[%d] = %v", i, *v)
		}
	}
}

func TestSeriesArithmetic(t *testing.T) {
	t.Run("sum skips nils but keeps all-nil as nil", func(t *testing.T) {
		got := sumSeries([]*float64{fp(1), nil, nil}, []*float64{fp(2), fp(3), nil})
		if *got[0] != 3 || *got[1] != 3 || got[2] != nil {
			t.Errorf("sumSeries = [%v %v %v]", got[0], got[1], got[2])
		}
	})

	t.Run("sub is nil when minuend missing", func(t *testing.T) {
		got := subSeries([]*float64{fp(10), nil}, []*float64{fp(4), fp(1)})
		if *got[0] != 6 || got[1] != nil {
			t.Errorf("subSeries = [%v %v]", got[0], got[1])
		}
	})

	t.Run("pct is nil on zero denominator", func(t *testing.T) {
		got := pctSeries([]*float64{fp(5), fp(5)}, []*float64{fp(20), fp(0)})
		if *got[0] != 25 || got[1] != nil {
			t.Errorf("pctSeries = [%v %v]", got[0], got[1])
		}
	})
}
