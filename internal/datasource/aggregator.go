package datasource

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fundlens/internal/cascade"
	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// Options configures the aggregator's tiers.
type Options struct {
	ChartBaseURL        string
	FundamentalsBaseURL string
	ScraperBaseURL      string
	SnapshotDir         string
	// SyntheticEnabled keeps the terminal tier in the cascade. Disabling
	// it makes exhaustion observable as cascade.ErrExhausted.
	SyntheticEnabled bool
	// LiveTimeout bounds each live tier attempt.
	LiveTimeout time.Duration
	NewsFeeds   []NewsFeed
}

// Aggregator owns the data-source tiers and assembles per-request
// cascades over them.
type Aggregator struct {
	vendor    *Vendor
	scraper   *Scraper
	snapshot  *Snapshot
	synthetic *Synthetic
	news      *News

	syntheticEnabled bool
	liveTimeout      time.Duration
}

// NewAggregator creates an aggregator with all tiers wired.
func NewAggregator(opts Options) *Aggregator {
	timeout := opts.LiveTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Aggregator{
		vendor:           NewVendor(opts.ChartBaseURL, opts.FundamentalsBaseURL),
		scraper:          NewScraper(opts.ScraperBaseURL),
		snapshot:         NewSnapshot(opts.SnapshotDir),
		synthetic:        NewSynthetic(),
		news:             NewNews(opts.NewsFeeds),
		syntheticEnabled: opts.SyntheticEnabled,
		liveTimeout:      timeout,
	}
}

// News returns the news source for direct access.
func (a *Aggregator) News() *News { return a.news }

// FundamentalTiers returns the ordered fundamentals cascade for a symbol:
// live vendor, scraped secondary, local snapshot, then synthesis.
func (a *Aggregator) FundamentalTiers(symbol string) []cascade.Tier[*models.FieldMap] {
	hasData := func(fm *models.FieldMap) bool { return fm.HasData() }

	tiers := []cascade.Tier[*models.FieldMap]{
		{
			Provenance: models.ProvenanceLive,
			Timeout:    a.liveTimeout,
			Attempt: func(ctx context.Context) (*models.FieldMap, error) {
				return a.vendor.Fundamentals(ctx, symbol)
			},
			Valid: hasData,
		},
		{
			Provenance: models.ProvenanceSecondary,
			Timeout:    a.liveTimeout,
			Attempt: func(ctx context.Context) (*models.FieldMap, error) {
				return a.scraper.Fundamentals(ctx, symbol)
			},
			Valid: hasData,
		},
		{
			Provenance: models.ProvenanceSnapshot,
			Attempt: func(ctx context.Context) (*models.FieldMap, error) {
				return a.snapshot.Fundamentals(ctx, symbol)
			},
			Valid: hasData,
		},
	}
	if a.syntheticEnabled {
		tiers = append(tiers, cascade.Tier[*models.FieldMap]{
			Provenance: models.ProvenanceSynthetic,
			Attempt: func(ctx context.Context) (*models.FieldMap, error) {
				return a.synthetic.Fundamentals(ctx, symbol)
			},
		})
	}
	return tiers
}

// PriceTiers returns the ordered daily-bar cascade for a symbol and range.
func (a *Aggregator) PriceTiers(symbol string, from, to time.Time) []cascade.Tier[[]models.OHLCV] {
	nonEmpty := func(bars []models.OHLCV) bool { return len(bars) > 0 }

	tiers := []cascade.Tier[[]models.OHLCV]{
		{
			Provenance: models.ProvenanceLive,
			Timeout:    a.liveTimeout,
			Attempt: func(ctx context.Context) ([]models.OHLCV, error) {
				return a.vendor.PriceHistory(ctx, symbol, from, to)
			},
			Valid: nonEmpty,
		},
		{
			Provenance: models.ProvenanceSnapshot,
			Attempt: func(ctx context.Context) ([]models.OHLCV, error) {
				return a.snapshot.PriceHistory(ctx, symbol, from, to)
			},
			Valid: nonEmpty,
		},
	}
	if a.syntheticEnabled {
		tiers = append(tiers, cascade.Tier[[]models.OHLCV]{
			Provenance: models.ProvenanceSynthetic,
			Attempt: func(ctx context.Context) ([]models.OHLCV, error) {
				return a.synthetic.PriceHistory(ctx, symbol, from, to)
			},
		})
	}
	return tiers
}

// FetchFundamentals runs the fundamentals cascade.
func (a *Aggregator) FetchFundamentals(ctx context.Context, symbol string) (cascade.Result[*models.FieldMap], error) {
	return cascade.Run(ctx, a.FundamentalTiers(symbol))
}

// FetchPrices runs the daily-bar cascade.
func (a *Aggregator) FetchPrices(ctx context.Context, symbol string, from, to time.Time) (cascade.Result[[]models.OHLCV], error) {
	return cascade.Run(ctx, a.PriceTiers(symbol, from, to))
}

// Bundle joins the two independently-fetched legs a derived view needs.
// Each leg carries its own provenance; they may differ when one live
// source failed and the other did not.
type Bundle struct {
	Fundamentals     *models.FieldMap
	FundamentalsFrom models.Provenance
	Bars             []models.OHLCV
	BarsFrom         models.Provenance
}

// FetchBundle fetches fundamentals and bars concurrently and joins them.
// A failure in one leg does not cancel the other, but the bundle is only
// usable once both legs have resolved or fallen back.
func (a *Aggregator) FetchBundle(ctx context.Context, symbol string, from, to time.Time) (*Bundle, error) {
	bundle := &Bundle{}

	var g errgroup.Group
	g.Go(func() error {
		res, err := cascade.Run(ctx, a.FundamentalTiers(symbol))
		if err != nil {
			return fmt.Errorf("fundamentals: %w", err)
		}
		bundle.Fundamentals = res.Value
		bundle.FundamentalsFrom = res.Provenance
		return nil
	})
	g.Go(func() error {
		res, err := cascade.Run(ctx, a.PriceTiers(symbol, from, to))
		if err != nil {
			return fmt.Errorf("prices: %w", err)
		}
		bundle.Bars = res.Value
		bundle.BarsFrom = res.Provenance
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// Quote derives a basic quote from the last two daily bars of the price
// cascade, with market cap filled in when the fundamentals report shares
// outstanding.
func (a *Aggregator) Quote(ctx context.Context, symbol string) (*models.Quote, models.Provenance, error) {
	symbol = utils.NormalizeTicker(symbol)
	now := utils.NowIST()

	res, err := cascade.Run(ctx, a.PriceTiers(symbol, now.AddDate(0, -1, 0), now))
	if err != nil {
		return nil, "", err
	}
	bars := res.Value
	last := bars[len(bars)-1]

	q := &models.Quote{
		Ticker:    symbol,
		LastPrice: last.Close,
		Volume:    last.Volume,
		Timestamp: last.Timestamp,
	}
	if len(bars) > 1 {
		prev := bars[len(bars)-2]
		q.PrevClose = prev.Close
		q.Change = last.Close - prev.Close
		if prev.Close != 0 {
			q.ChangePct = q.Change / prev.Close * 100
		}
	}

	if fres, err := cascade.Run(ctx, a.FundamentalTiers(symbol)); err == nil {
		if shares := fres.Value.Scalar("shares_outstanding"); shares != nil {
			q.MarketCap = last.Close * *shares
		}
	}

	return q, res.Provenance, nil
}
