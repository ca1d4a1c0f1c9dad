package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/fundlens/internal/rescache"
	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// DefaultScraperBaseURL is the secondary live source's site root.
const DefaultScraperBaseURL = "https://www.screener.in"

// Scraper is the secondary live tier: it scrapes screener-style company
// pages into a FieldMap. Tables on those pages are published in crores and
// oldest-first; normalization converts to raw currency units and
// most-recent-first order.
type Scraper struct {
	baseURL string
	cache   *rescache.Cache
	limiter *RateLimiter
}

// NewScraper creates the secondary scraped source.
func NewScraper(baseURL string) *Scraper {
	if baseURL == "" {
		baseURL = DefaultScraperBaseURL
	}
	return &Scraper{
		baseURL: baseURL,
		cache:   rescache.New(128),
		limiter: NewRateLimiter(1, time.Second), // conservative: 1 req/s
	}
}

// Name returns the data source name.
func (s *Scraper) Name() string { return "Screener scrape" }

// rowMapping maps a table row label substring to a normalized field key
// and the multiplier that converts the published value to raw units.
type rowMapping struct {
	key   string
	scale float64
}

// Published currency figures are in crores; per-share and percentage rows
// are used as-is.
var annualRowMappings = []struct {
	match string
	rowMapping
}{
	{"Interest Earned", rowMapping{"interest_earned_h", utils.CrorePerUnit}},
	{"Other Income", rowMapping{"other_income_h", utils.CrorePerUnit}},
	{"Sales", rowMapping{"revenue_h", utils.CrorePerUnit}},
	{"Revenue", rowMapping{"revenue_h", utils.CrorePerUnit}},
	{"Expenses", rowMapping{"expenses_h", utils.CrorePerUnit}},
	{"Depreciation", rowMapping{"depreciation_h", utils.CrorePerUnit}},
	{"Interest", rowMapping{"interest_h", utils.CrorePerUnit}},
	{"Tax", rowMapping{"tax_h", utils.CrorePerUnit}},
	{"EPS", rowMapping{"eps_h", 1}},
	{"Equity Capital", rowMapping{"share_capital_h", utils.CrorePerUnit}},
	{"Share Capital", rowMapping{"share_capital_h", utils.CrorePerUnit}},
	{"Reserves", rowMapping{"reserves_h", utils.CrorePerUnit}},
	{"Deposits", rowMapping{"deposits_h", utils.CrorePerUnit}},
	{"Borrowings", rowMapping{"borrowings_h", utils.CrorePerUnit}},
	{"Other Liabilities", rowMapping{"other_liabilities_h", utils.CrorePerUnit}},
	{"Fixed Assets", rowMapping{"fixed_assets_h", utils.CrorePerUnit}},
	{"CWIP", rowMapping{"cwip_h", utils.CrorePerUnit}},
	{"Investments", rowMapping{"investments_h", utils.CrorePerUnit}},
	{"Other Assets", rowMapping{"other_assets_h", utils.CrorePerUnit}},
	{"Cash from Operating", rowMapping{"cash_operating_h", utils.CrorePerUnit}},
	{"Cash from Investing", rowMapping{"cash_investing_h", utils.CrorePerUnit}},
	{"Cash from Financing", rowMapping{"cash_financing_h", utils.CrorePerUnit}},
}

var quarterlyRowMappings = []struct {
	match string
	rowMapping
}{
	{"Sales", rowMapping{"revenue_q_h", utils.CrorePerUnit}},
	{"Revenue", rowMapping{"revenue_q_h", utils.CrorePerUnit}},
	{"Net Profit", rowMapping{"net_profit_q_h", utils.CrorePerUnit}},
	{"EPS", rowMapping{"eps_q_h", 1}},
}

// Fundamentals scrapes the company page into a normalized field map.
func (s *Scraper) Fundamentals(ctx context.Context, symbol string) (*models.FieldMap, error) {
	symbol = utils.NormalizeTicker(symbol)

	cacheKey := rescache.Key("scrape", symbol)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*models.FieldMap), nil
	}

	doc, err := s.fetchPage(ctx, symbol)
	if err != nil {
		return nil, err
	}

	fm := models.NewFieldMap(symbol)
	fm.Sector = strings.TrimSpace(doc.Find("#peers .sub a").First().Text())

	// Annual sections share the row vocabulary; quarterly rows also carry
	// the quarter-end dates used later for TTM bucketing.
	for _, section := range []string{"#profit-loss", "#balance-sheet", "#cash-flow"} {
		periods, seriesByKey := s.parseSection(doc, section, annualRowMappings)
		if len(fm.Periods) < len(periods) {
			fm.Periods = periods
		}
		for key, values := range seriesByKey {
			fm.Set(key, values)
		}
	}

	quarterLabels, quarterly := s.parseSection(doc, "#quarters", quarterlyRowMappings)
	for key, values := range quarterly {
		fm.Set(key, values)
	}
	fm.QuarterDates = parseQuarterLabels(quarterLabels)

	s.cache.Put(cacheKey, fm, time.Hour)
	return fm, nil
}

// PriceHistory is not supported by the scraped source.
func (s *Scraper) PriceHistory(_ context.Context, _ string, _, _ time.Time) ([]models.OHLCV, error) {
	return nil, ErrNotSupported
}

// fetchPage downloads and parses the company page, preferring the
// consolidated view.
func (s *Scraper) fetchPage(ctx context.Context, symbol string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/company/%s/consolidated/", s.baseURL, symbol)
	body, _, err := doGet(ctx, url, map[string]string{"Accept": "text/html"})
	if err != nil {
		// Try standalone if consolidated not found.
		url = fmt.Sprintf("%s/company/%s/", s.baseURL, symbol)
		body, _, err = doGet(ctx, url, map[string]string{"Accept": "text/html"})
		if err != nil {
			return nil, fmt.Errorf("scrape %s: %w", symbol, err)
		}
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse company page: %w", err)
	}

	return doc, nil
}

// parseSection reads one statement table. Column order on the page is
// oldest-first; output is reversed to most-recent-first.
func (s *Scraper) parseSection(doc *goquery.Document, sectionID string, mappings []struct {
	match string
	rowMapping
}) ([]string, map[string][]*float64) {
	section := doc.Find(sectionID)
	if section.Length() == 0 {
		return nil, nil
	}

	var periods []string
	section.Find("table thead th").Each(func(i int, th *goquery.Selection) {
		if i > 0 { // skip row label column
			periods = append(periods, strings.TrimSpace(th.Text()))
		}
	})
	reverseStrings(periods)

	series := make(map[string][]*float64)
	section.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("td:first-child").Text())
		mapping, ok := matchRow(label, mappings)
		if !ok {
			return
		}
		if _, seen := series[mapping.key]; seen {
			return // first matching row wins
		}

		values := make([]*float64, len(periods))
		row.Find("td").Each(func(i int, cell *goquery.Selection) {
			if i == 0 || i-1 >= len(periods) {
				return
			}
			if v, ok := parseTableNumber(strings.TrimSpace(cell.Text())); ok {
				scaled := v * mapping.scale
				values[i-1] = &scaled
			}
		})
		reverseValues(values)
		series[mapping.key] = values
	})

	return periods, series
}

func matchRow(label string, mappings []struct {
	match string
	rowMapping
}) (rowMapping, bool) {
	for _, m := range mappings {
		if strings.Contains(label, m.match) {
			return m.rowMapping, true
		}
	}
	return rowMapping{}, false
}

// parseQuarterLabels converts header labels like "Jun 2025" to quarter-end
// dates, most-recent-first like the series they label.
func parseQuarterLabels(labels []string) []time.Time {
	dates := make([]time.Time, 0, len(labels))
	for _, l := range labels {
		t, err := time.ParseInLocation("Jan 2006", l, utils.IST)
		if err != nil {
			continue
		}
		// Last day of the labelled month.
		dates = append(dates, t.AddDate(0, 1, -1))
	}
	return dates
}

// parseTableNumber parses a published table value. Handles commas,
// percentages, and the blank cells that mark gaps.
func parseTableNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseValues(s []*float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
