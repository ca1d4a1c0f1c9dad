package datasource

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/seenimoa/fundlens/internal/fiscal"
	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// syntheticQuarters is how many quarterly samples the generator emits.
const syntheticQuarters = 12

// Synthetic is the terminal cascade tier. It deterministically generates a
// structurally valid but clearly synthetic dataset, seeded by the symbol,
// so the cascade always reaches a result and repeated requests for the
// same symbol reproduce byte-identical data.
type Synthetic struct{}

// NewSynthetic creates the synthetic generator.
func NewSynthetic() *Synthetic { return &Synthetic{} }

// Name returns the data source name.
func (s *Synthetic) Name() string { return "Synthetic" }

// seedFor derives a stable per-symbol seed.
func seedFor(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(symbol)))
	return int64(h.Sum64())
}

// Fundamentals generates five fiscal years of annual figures and twelve
// quarters of quarterly figures. Symbols containing "BANK" produce a
// banking-shaped report so both schema families are reachable offline.
func (s *Synthetic) Fundamentals(_ context.Context, symbol string) (*models.FieldMap, error) {
	symbol = utils.NormalizeTicker(symbol)
	rng := rand.New(rand.NewSource(seedFor(symbol)))
	banking := strings.Contains(symbol, "BANK")

	fm := models.NewFieldMap(symbol)
	fm.Industry = "Synthetic"
	if banking {
		fm.Sector = "Private Sector Bank"
		fm.ReportType = string(models.Banking)
	} else {
		fm.Sector = "Diversified"
	}

	currentFY := fiscal.YearOf(utils.NowIST())
	const years = 5
	fm.Periods = make([]string, years)
	for i := 0; i < years; i++ {
		fm.Periods[i] = fiscal.YearLabel(currentFY - i)
	}

	// Annual revenue path: a seeded base compounded backwards so the
	// most-recent-first arrays show steady growth.
	base := utils.FromCrores(1000 + rng.Float64()*9000)
	growth := 1.08 + rng.Float64()*0.07
	revenue := make([]*float64, years)
	for i := 0; i < years; i++ {
		v := base
		for j := 0; j < i; j++ {
			v /= growth
		}
		revenue[i] = &v
	}

	shares := 1e8 * (1 + rng.Float64()*9)
	if banking {
		s.bankingFields(fm, rng, revenue, shares)
	} else {
		s.nonBankingFields(fm, rng, revenue, shares)
	}
	fm.SetScalar("shares_outstanding", shares)

	s.quarterlyFields(fm, rng, base, growth, shares)
	return fm, nil
}

func (s *Synthetic) nonBankingFields(fm *models.FieldMap, rng *rand.Rand, revenue []*float64, shares float64) {
	fm.Set("revenue_h", revenue)
	fm.Set("other_income_h", scaleSeries(revenue, 0.02))
	fm.Set("expenses_h", scaleSeries(revenue, 0.78+rng.Float64()*0.08))
	fm.Set("interest_h", scaleSeries(revenue, 0.02+rng.Float64()*0.02))
	fm.Set("depreciation_h", scaleSeries(revenue, 0.03+rng.Float64()*0.02))
	fm.Set("tax_h", scaleSeries(revenue, 0.04))
	fm.Set("eps_h", perShare(scaleSeries(revenue, 0.11), shares))

	fm.Set("share_capital_h", scaleSeries(revenue, 0.01))
	fm.Set("reserves_h", scaleSeries(revenue, 0.55))
	fm.Set("borrowings_h", scaleSeries(revenue, 0.30))
	fm.Set("other_liabilities_h", scaleSeries(revenue, 0.18))
	fm.Set("fixed_assets_h", scaleSeries(revenue, 0.45))
	fm.Set("cwip_h", scaleSeries(revenue, 0.05))
	fm.Set("investments_h", scaleSeries(revenue, 0.25))
	fm.Set("other_assets_h", scaleSeries(revenue, 0.29))

	fm.Set("cash_operating_h", scaleSeries(revenue, 0.14))
	fm.Set("cash_investing_h", scaleSeries(revenue, -0.08))
	fm.Set("cash_financing_h", scaleSeries(revenue, -0.04))

	fm.Set("roe_h", constantSeries(len(revenue), 12+rng.Float64()*10))
	fm.Set("roce_h", constantSeries(len(revenue), 14+rng.Float64()*10))
	fm.Set("debt_equity_h", constantSeries(len(revenue), 0.2+rng.Float64()*0.8))
	fm.Set("current_ratio_h", constantSeries(len(revenue), 1+rng.Float64()*1.5))
	fm.Set("interest_coverage_h", constantSeries(len(revenue), 3+rng.Float64()*10))
	fm.Set("dividend_payout_h", constantSeries(len(revenue), 10+rng.Float64()*30))
}

func (s *Synthetic) bankingFields(fm *models.FieldMap, rng *rand.Rand, revenue []*float64, shares float64) {
	fm.Set("interest_earned_h", revenue)
	fm.Set("other_income_h", scaleSeries(revenue, 0.15))
	fm.Set("interest_expended_h", scaleSeries(revenue, 0.55))
	fm.Set("operating_expenses_h", scaleSeries(revenue, 0.22))
	fm.Set("provisions_h", scaleSeries(revenue, 0.08))
	fm.Set("tax_h", scaleSeries(revenue, 0.07))
	fm.Set("eps_h", perShare(scaleSeries(revenue, 0.18), shares))

	fm.Set("share_capital_h", scaleSeries(revenue, 0.02))
	fm.Set("reserves_h", scaleSeries(revenue, 1.2))
	fm.Set("deposits_h", scaleSeries(revenue, 9))
	fm.Set("borrowings_h", scaleSeries(revenue, 1.1))
	fm.Set("other_liabilities_h", scaleSeries(revenue, 0.4))
	fm.Set("cash_balances_h", scaleSeries(revenue, 0.7))
	fm.Set("advances_h", scaleSeries(revenue, 7))
	fm.Set("investments_h", scaleSeries(revenue, 2.8))
	fm.Set("fixed_assets_h", scaleSeries(revenue, 0.1))
	fm.Set("other_assets_h", scaleSeries(revenue, 1.12))

	fm.Set("cash_operating_h", scaleSeries(revenue, 0.3))
	fm.Set("cash_investing_h", scaleSeries(revenue, -0.1))
	fm.Set("cash_financing_h", scaleSeries(revenue, -0.05))

	fm.Set("net_interest_margin_h", constantSeries(len(revenue), 3+rng.Float64()*1.5))
	fm.Set("gross_npa_h", constantSeries(len(revenue), 1+rng.Float64()*3))
	fm.Set("net_npa_h", constantSeries(len(revenue), 0.3+rng.Float64()*1))
	fm.Set("casa_ratio_h", constantSeries(len(revenue), 35+rng.Float64()*15))
	fm.Set("roe_h", constantSeries(len(revenue), 10+rng.Float64()*8))
	fm.Set("capital_adequacy_h", constantSeries(len(revenue), 14+rng.Float64()*4))
}

// quarterlyFields emits the quarterly arrays the derived-series engine
// buckets into TTM values.
func (s *Synthetic) quarterlyFields(fm *models.FieldMap, rng *rand.Rand, annualBase, growth float64, shares float64) {
	quarterlyGrowth := 1 + (growth-1)/4

	// Anchor at the previous fiscal year end so no quarter is future-dated.
	lastEnd := fiscal.YearEnd(fiscal.YearOf(utils.NowIST())-1, utils.IST)
	dates := make([]time.Time, syntheticQuarters)
	revenueQ := make([]*float64, syntheticQuarters)
	epsQ := make([]*float64, syntheticQuarters)
	q := annualBase / 4
	for i := 0; i < syntheticQuarters; i++ {
		dates[i] = lastEnd.AddDate(0, -3*i, 0)
		jitter := 0.95 + rng.Float64()*0.1
		rev := q * jitter
		revenueQ[i] = &rev
		eps := rev * 0.11 / shares
		epsQ[i] = &eps
		q /= quarterlyGrowth
	}
	fm.QuarterDates = dates
	fm.Set("revenue_q_h", revenueQ)
	fm.Set("eps_q_h", epsQ)
}

// PriceHistory generates a seeded daily random walk over the range,
// skipping weekends. The starting price is anchored to the symbol's
// synthetic earnings so derived valuation ratios stay in a plausible
// band.
func (s *Synthetic) PriceHistory(_ context.Context, symbol string, from, to time.Time) ([]models.OHLCV, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("invalid range: %s..%s", from, to)
	}
	symbol = utils.NormalizeTicker(symbol)
	rng := rand.New(rand.NewSource(seedFor(symbol) + 1))

	price := s.fairValue(symbol) * (0.7 + rng.Float64()*0.6)
	var bars []models.OHLCV
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		move := 1 + (rng.Float64()-0.495)*0.03
		open := price
		price *= move
		high, low := open, price
		if high < low {
			high, low = low, high
		}
		bars = append(bars, models.OHLCV{
			Timestamp: d.In(utils.IST),
			Open:      open,
			High:      high * 1.005,
			Low:       low * 0.995,
			Close:     price,
			Volume:    int64(1e5 + rng.Intn(1e6)),
		})
	}
	return bars, nil
}

// fairValue reprices the symbol off its own synthetic earnings: TTM EPS
// times a seeded multiple. It redraws the same leading samples as
// Fundamentals so both sides agree without sharing state.
func (s *Synthetic) fairValue(symbol string) float64 {
	rng := rand.New(rand.NewSource(seedFor(symbol)))
	base := utils.FromCrores(1000 + rng.Float64()*9000)
	_ = rng.Float64() // growth draw, unused here
	shares := 1e8 * (1 + rng.Float64()*9)

	eps := base * 0.11 / shares
	multiple := 15 + rng.Float64()*20
	return eps * multiple
}

func scaleSeries(src []*float64, factor float64) []*float64 {
	out := make([]*float64, len(src))
	for i, v := range src {
		if v == nil {
			continue
		}
		s := *v * factor
		out[i] = &s
	}
	return out
}

func perShare(src []*float64, shares float64) []*float64 {
	out := make([]*float64, len(src))
	for i, v := range src {
		if v == nil || shares == 0 {
			continue
		}
		s := *v / shares
		out[i] = &s
	}
	return out
}

func constantSeries(n int, v float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		val := v
		out[i] = &val
	}
	return out
}
