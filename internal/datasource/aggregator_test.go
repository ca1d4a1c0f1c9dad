package datasource

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seenimoa/fundlens/pkg/models"
)

// deadServerURL returns a base URL that refuses connections immediately.
func deadServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()
	return url
}

func offlineOptions(t *testing.T, snapshotDir string) Options {
	dead := deadServerURL(t)
	return Options{
		ChartBaseURL:        dead,
		FundamentalsBaseURL: dead,
		ScraperBaseURL:      dead,
		SnapshotDir:         snapshotDir,
		SyntheticEnabled:    true,
		LiveTimeout:         200 * time.Millisecond,
	}
}

func TestFundamentalsFallsBackToSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "ACME", snapshotEnvelope)

	a := NewAggregator(offlineOptions(t, dir))
	res, err := a.FetchFundamentals(context.Background(), "ACME")
	if err != nil {
		t.Fatal(err)
	}
	if res.Provenance != models.ProvenanceSnapshot {
		t.Errorf("provenance = %s, want snapshot", res.Provenance)
	}
	if !res.Value.HasData() {
		t.Error("snapshot result has no data")
	}
}

func TestFundamentalsFallsBackToSynthetic(t *testing.T) {
	a := NewAggregator(offlineOptions(t, ""))
	res, err := a.FetchFundamentals(context.Background(), "ACME")
	if err != nil {
		t.Fatal(err)
	}
	if res.Provenance != models.ProvenanceSynthetic {
		t.Errorf("provenance = %s, want synthetic", res.Provenance)
	}
}

func TestExhaustionObservableWithoutSynthetic(t *testing.T) {
	opts := offlineOptions(t, "")
	opts.SyntheticEnabled = false

	a := NewAggregator(opts)
	if _, err := a.FetchFundamentals(context.Background(), "ACME"); err == nil {
		t.Error("expected exhaustion error with all tiers down")
	}
}

func TestFetchBundleLegsFallBackIndependently(t *testing.T) {
	// Snapshot has fundamentals and bars; both legs should resolve to it
	// when the live tiers are down.
	dir := t.TempDir()
	writeSnapshot(t, dir, "ACME", snapshotEnvelope)

	a := NewAggregator(offlineOptions(t, dir))
	from, to := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

	bundle, err := a.FetchBundle(context.Background(), "ACME", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if bundle.FundamentalsFrom != models.ProvenanceSnapshot {
		t.Errorf("fundamentals leg = %s, want snapshot", bundle.FundamentalsFrom)
	}
	if bundle.BarsFrom != models.ProvenanceSnapshot {
		t.Errorf("bars leg = %s, want snapshot", bundle.BarsFrom)
	}
	if len(bundle.Bars) == 0 {
		t.Error("no bars in bundle")
	}
}

func TestQuoteFromSyntheticTier(t *testing.T) {
	a := NewAggregator(offlineOptions(t, ""))

	q, prov, err := a.Quote(context.Background(), "reliance")
	if err != nil {
		t.Fatal(err)
	}
	if prov != models.ProvenanceSynthetic {
		t.Errorf("provenance = %s, want synthetic", prov)
	}
	if q.Ticker != "RELIANCE" || q.LastPrice <= 0 {
		t.Errorf("quote = %+v", q)
	}
	if q.MarketCap <= 0 {
		t.Error("market cap not derived from shares outstanding")
	}
}
