// Package engine orchestrates per-request computation: it acquires data
// through the fallback cascades, classifies the company, renders
// statements and derived valuation series, and caches whole responses.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seenimoa/fundlens/internal/classify"
	"github.com/seenimoa/fundlens/internal/datasource"
	"github.com/seenimoa/fundlens/internal/rescache"
	"github.com/seenimoa/fundlens/internal/series"
	"github.com/seenimoa/fundlens/internal/statement"
	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// ErrInvalidRequest marks malformed or unsupported parameters. It is the
// only error class surfaced to callers directly; everything upstream is
// absorbed by the cascade.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNoData is returned when every cascade tier was exhausted. Reachable
// only with synthesis disabled.
var ErrNoData = errors.New("no data")

// Metric identifies a derived valuation series.
type Metric string

const (
	MetricPE        Metric = "pe"
	MetricMcapSales Metric = "mcap-sales"
)

// ParseMetric validates a metric token.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(s) {
	case MetricPE, MetricMcapSales:
		return Metric(s), true
	}
	return "", false
}

// Engine is the per-process computation front. The response cache it
// carries is the only cross-request state.
type Engine struct {
	agg      *datasource.Aggregator
	cache    *rescache.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

// New creates an engine over the given aggregator. cacheTTL bounds how
// long whole responses are reused.
func New(agg *datasource.Aggregator, cache *rescache.Cache, cacheTTL time.Duration) *Engine {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Engine{agg: agg, cache: cache, cacheTTL: cacheTTL, now: utils.NowIST}
}

// Statement renders one financial statement for a symbol. The result is
// cached under the full parameter set; expired entries recompute.
func (e *Engine) Statement(ctx context.Context, symbol string, st statement.Statement) (*models.StatementResult, error) {
	symbol = utils.NormalizeTicker(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrInvalidRequest)
	}

	key := rescache.Key(symbol, "statement", string(st))
	if cached, ok := e.cache.Get(key); ok {
		return cached.(*models.StatementResult), nil
	}

	res, err := e.agg.FetchFundamentals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrNoData, symbol, err)
	}
	fm := res.Value

	ct := classify.Classify(fm)
	result := statement.Build(fm, ct, st, statement.BuildOptions{
		ConvertToCrores: true,
		Now:             e.now(),
	})
	result.Provenance = res.Provenance

	e.cache.Put(key, result, e.cacheTTL)
	return result, nil
}

// ValuationSeries builds a derived valuation time series over the
// requested timeframe. The price and fundamentals legs are fetched
// concurrently and may fall back independently; the result carries the
// weaker of the two provenance tags.
func (e *Engine) ValuationSeries(ctx context.Context, symbol string, metric Metric, tf models.Timeframe) (*models.SeriesResult, error) {
	symbol = utils.NormalizeTicker(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrInvalidRequest)
	}

	key := rescache.Key(symbol, "series", string(metric), string(tf))
	if cached, ok := e.cache.Get(key); ok {
		return cached.(*models.SeriesResult), nil
	}

	now := e.now()
	bundle, err := e.agg.FetchBundle(ctx, symbol, tf.Start(now), now)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrNoData, symbol, err)
	}

	prices := make([]series.PricePoint, 0, len(bundle.Bars))
	for _, b := range bundle.Bars {
		if b.Close <= 0 {
			continue
		}
		prices = append(prices, series.PricePoint{Time: b.Timestamp, Close: b.Close})
	}

	built := series.Build(prices, fundamentalPoints(bundle.Fundamentals, metric))

	result := &models.SeriesResult{
		Ticker:     symbol,
		Metric:     string(metric),
		Timeframe:  tf,
		Data:       built.Points,
		Median:     built.Median,
		Provenance: weakerProvenance(bundle.BarsFrom, bundle.FundamentalsFrom),
	}

	e.cache.Put(key, result, e.cacheTTL)
	return result, nil
}

// Quote returns a basic quote for the symbol.
func (e *Engine) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = utils.NormalizeTicker(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrInvalidRequest)
	}

	key := rescache.Key(symbol, "quote")
	if cached, ok := e.cache.Get(key); ok {
		return cached.(*models.Quote), nil
	}

	q, _, err := e.agg.Quote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrNoData, symbol, err)
	}

	e.cache.Put(key, q, time.Minute)
	return q, nil
}

// News returns recent news for the symbol.
func (e *Engine) News(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	return e.agg.News().TickerNews(ctx, symbol, limit)
}

// MarketNews returns recent market-wide news.
func (e *Engine) MarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	return e.agg.News().MarketNews(ctx, limit)
}

// fundamentalPoints derives the dated fundamental series a metric steps
// over. P/E uses TTM EPS; mcap-sales uses TTM sales per share, so the
// daily ratio price/fundamental equals market-cap/sales.
func fundamentalPoints(fm *models.FieldMap, metric Metric) []series.FundamentalPoint {
	switch metric {
	case MetricPE:
		if pts := ttmPoints(fm, "eps_q_h", 1); len(pts) > 0 {
			return pts
		}
		return annualPoints(fm, "eps_h", 1)
	case MetricMcapSales:
		shares := fm.Scalar("shares_outstanding")
		if shares == nil || *shares <= 0 {
			return nil
		}
		if pts := ttmPoints(fm, "revenue_q_h", 1 / *shares); len(pts) > 0 {
			return pts
		}
		return annualPoints(fm, "revenue_h", 1 / *shares)
	}
	return nil
}

// ttmPoints builds rolling four-quarter sums over the quarterly series.
// Quarterly arrays are most-recent-first; a point exists only where a
// complete trailing window of four non-nil samples is available.
func ttmPoints(fm *models.FieldMap, key string, scale float64) []series.FundamentalPoint {
	values := fm.Series(key)
	dates := fm.QuarterDates
	n := len(values)
	if len(dates) < n {
		n = len(dates)
	}

	var pts []series.FundamentalPoint
	for i := 0; i+3 < n; i++ {
		sum, complete := 0.0, true
		for j := i; j < i+4; j++ {
			if values[j] == nil {
				complete = false
				break
			}
			sum += *values[j]
		}
		if !complete {
			continue
		}
		pts = append(pts, series.FundamentalPoint{Time: dates[i], Value: sum * scale})
	}
	return pts
}

// annualPoints falls back to the annual series, dating each sample by its
// period label ("Mar 2025").
func annualPoints(fm *models.FieldMap, key string, scale float64) []series.FundamentalPoint {
	values := fm.Series(key)

	var pts []series.FundamentalPoint
	for i, v := range values {
		if v == nil || i >= len(fm.Periods) {
			continue
		}
		t, err := time.ParseInLocation("Jan 2006", fm.Periods[i], utils.IST)
		if err != nil {
			continue
		}
		pts = append(pts, series.FundamentalPoint{Time: t.AddDate(0, 1, -1), Value: *v * scale})
	}
	return pts
}

// provenanceRank orders tiers from most to least live.
var provenanceRank = map[models.Provenance]int{
	models.ProvenanceLive:      0,
	models.ProvenanceSecondary: 1,
	models.ProvenanceSnapshot:  2,
	models.ProvenanceSynthetic: 3,
}

// weakerProvenance returns the more degraded of two tags so a fused
// result never claims to be fresher than its weakest leg.
func weakerProvenance(a, b models.Provenance) models.Provenance {
	if provenanceRank[b] > provenanceRank[a] {
		return b
	}
	return a
}
