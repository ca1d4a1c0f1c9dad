package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/seenimoa/fundlens/internal/rescache"
	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// DefaultChartBaseURL is the live price vendor's chart API root.
const DefaultChartBaseURL = "https://query1.finance.yahoo.com"

// Vendor is the primary live source: a JSON chart API for daily bars and
// a fundamentals endpoint returning the shared envelope.
type Vendor struct {
	chartBaseURL string
	fundBaseURL  string
	cache        *rescache.Cache
	limiter      *RateLimiter
}

// NewVendor creates the live vendor source. fundBaseURL may be empty when
// the deployment has no live fundamentals endpoint; Fundamentals then
// reports ErrNotSupported and the cascade advances.
func NewVendor(chartBaseURL, fundBaseURL string) *Vendor {
	if chartBaseURL == "" {
		chartBaseURL = DefaultChartBaseURL
	}
	return &Vendor{
		chartBaseURL: chartBaseURL,
		fundBaseURL:  fundBaseURL,
		cache:        rescache.New(128),
		limiter:      NewRateLimiter(5, time.Second),
	}
}

// Name returns the data source name.
func (v *Vendor) Name() string { return "Vendor API" }

// --- chart API wire types ---

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *vendorError  `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type vendorError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// PriceHistory returns daily OHLCV bars from the chart API.
func (v *Vendor) PriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.OHLCV, error) {
	vendorTicker := utils.ToVendorTicker(symbol)

	cacheKey := rescache.Key("chart", vendorTicker, fmt.Sprint(from.Unix()), fmt.Sprint(to.Unix()))
	if cached, ok := v.cache.Get(cacheKey); ok {
		return cached.([]models.OHLCV), nil
	}

	if err := v.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		v.chartBaseURL, vendorTicker, from.Unix(), to.Unix())
	body, _, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("vendor chart %s: %w", vendorTicker, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp chartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse vendor chart: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("vendor chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	bars := parseChartBars(resp.Chart.Result[0])

	v.cache.Put(cacheKey, bars, 15*time.Minute)
	return bars, nil
}

// Fundamentals returns the field map from the vendor fundamentals endpoint.
func (v *Vendor) Fundamentals(ctx context.Context, symbol string) (*models.FieldMap, error) {
	if v.fundBaseURL == "" {
		return nil, ErrNotSupported
	}
	symbol = utils.NormalizeTicker(symbol)

	cacheKey := rescache.Key("fund", symbol)
	if cached, ok := v.cache.Get(cacheKey); ok {
		return cached.(*models.FieldMap), nil
	}

	if err := v.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/fundamentals/%s", v.fundBaseURL, symbol)
	body, _, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("vendor fundamentals %s: %w", symbol, err)
	}
	defer body.Close()

	_, fm, err := decodeFundamentals(body, symbol)
	if err != nil {
		return nil, fmt.Errorf("vendor fundamentals %s: %w", symbol, err)
	}

	v.cache.Put(cacheKey, fm, time.Hour)
	return fm, nil
}

// parseChartBars flattens the chart API's parallel arrays, tolerating
// nulls in any column.
func parseChartBars(result chartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	bars := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		b := models.OHLCV{Timestamp: time.Unix(ts, 0).In(utils.IST)}
		if i < len(q.Open) && q.Open[i] != nil {
			b.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			b.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			b.Low = *q.Low[i]
		}
		if i < len(q.Close) && q.Close[i] != nil {
			b.Close = *q.Close[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			b.Volume = *q.Volume[i]
		}
		bars = append(bars, b)
	}
	return bars
}
