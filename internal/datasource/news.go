package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/fundlens/internal/rescache"
	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// NewsFeed is one configured RSS source.
type NewsFeed struct {
	Name string
	URL  string
}

// DefaultNewsFeeds lists the Indian financial market feeds polled by
// default.
var DefaultNewsFeeds = []NewsFeed{
	{Name: "Moneycontrol", URL: "https://www.moneycontrol.com/rss/marketreports.xml"},
	{Name: "Economic Times Markets", URL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms"},
	{Name: "LiveMint Markets", URL: "https://www.livemint.com/rss/markets"},
}

// News fetches market news from RSS feeds. A failing feed is skipped, not
// fatal.
type News struct {
	feeds   []NewsFeed
	cache   *rescache.Cache
	limiter *RateLimiter
	parser  *gofeed.Parser
}

// NewNews creates a news source over the given feeds; nil means defaults.
func NewNews(feeds []NewsFeed) *News {
	if feeds == nil {
		feeds = DefaultNewsFeeds
	}
	return &News{
		feeds:   feeds,
		cache:   rescache.New(64),
		limiter: NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Market news" }

// MarketNews returns recent market news from all configured feeds, newest
// first.
func (n *News) MarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	cacheKey := rescache.Key("news", "market", fmt.Sprint(limit))
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	var all []models.NewsArticle
	for _, feed := range n.feeds {
		articles, err := n.fetchFeed(ctx, feed)
		if err != nil {
			continue
		}
		all = append(all, articles...)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].PublishedAt.After(all[j].PublishedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	n.cache.Put(cacheKey, all, 10*time.Minute)
	return all, nil
}

// TickerNews filters market news to items mentioning the symbol.
func (n *News) TickerNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	symbol = utils.NormalizeTicker(symbol)

	all, err := n.MarketNews(ctx, 0)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(symbol)
	var matched []models.NewsArticle
	for _, a := range all {
		text := strings.ToLower(a.Title + " " + a.Summary)
		if strings.Contains(text, needle) {
			matched = append(matched, a)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (n *News) fetchFeed(ctx context.Context, feed NewsFeed) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	parsed, err := n.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			Link:    item.Link,
			Source:  feed.Name,
			Summary: item.Description,
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}
