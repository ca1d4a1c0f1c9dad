package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seenimoa/fundlens/pkg/utils"
)

const companyPage = `<html><body>
<div id="peers"><p class="sub"><a href="/sector/1/">IT Services &amp; Consulting</a></p></div>
<section id="quarters">
<table>
<thead><tr><th></th><th>Dec 2024</th><th>Mar 2025</th><th>Jun 2025</th></tr></thead>
<tbody>
<tr><td>Sales</td><td>900</td><td>950</td><td>1,000</td></tr>
<tr><td>EPS in Rs</td><td>5.1</td><td>5.6</td><td>6.0</td></tr>
</tbody>
</table>
</section>
<section id="profit-loss">
<table>
<thead><tr><th></th><th>Mar 2023</th><th>Mar 2024</th><th>Mar 2025</th></tr></thead>
<tbody>
<tr><td>Sales</td><td>3,000</td><td>3,400</td><td>3,800</td></tr>
<tr><td>Expenses</td><td>2,400</td><td>2,700</td><td>-</td></tr>
<tr><td>EPS in Rs</td><td>18.2</td><td>20.9</td><td>23.5</td></tr>
</tbody>
</table>
</section>
<section id="balance-sheet">
<table>
<thead><tr><th></th><th>Mar 2024</th><th>Mar 2025</th></tr></thead>
<tbody>
<tr><td>Reserves</td><td>1,100</td><td>1,300</td></tr>
<tr><td>Borrowings</td><td>600</td><td>550</td></tr>
</tbody>
</table>
</section>
</body></html>`

func scrapeTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company/ACME/consolidated/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, companyPage)
	}))
}

func TestScraperFundamentals(t *testing.T) {
	srv := scrapeTestServer(t)
	defer srv.Close()

	s := NewScraper(srv.URL)
	fm, err := s.Fundamentals(context.Background(), "acme")
	if err != nil {
		t.Fatal(err)
	}

	if fm.Sector != "IT Services & Consulting" {
		t.Errorf("sector = %q", fm.Sector)
	}

	// Page order is oldest-first; normalized order is most-recent-first,
	// and published crores scale to raw units.
	rev := fm.Series("revenue_h")
	if len(rev) != 3 {
		t.Fatalf("revenue_h len = %d, want 3", len(rev))
	}
	if *rev[0] != utils.FromCrores(3800) || *rev[2] != utils.FromCrores(3000) {
		t.Errorf("revenue_h = [%v .. %v]", *rev[0], *rev[2])
	}
	if fm.Periods[0] != "Mar 2025" {
		t.Errorf("periods[0] = %q", fm.Periods[0])
	}

	// A dash cell is a gap, not zero.
	exp := fm.Series("expenses_h")
	if exp[0] != nil {
		t.Errorf("expenses_h[0] = %v, want nil gap", *exp[0])
	}
	if *exp[1] != utils.FromCrores(2700) {
		t.Errorf("expenses_h[1] = %v", *exp[1])
	}

	// EPS is per-share, published as-is.
	if eps := fm.Series("eps_h"); *eps[0] != 23.5 {
		t.Errorf("eps_h[0] = %v", *eps[0])
	}
}

func TestScraperQuarterly(t *testing.T) {
	srv := scrapeTestServer(t)
	defer srv.Close()

	s := NewScraper(srv.URL)
	fm, err := s.Fundamentals(context.Background(), "ACME")
	if err != nil {
		t.Fatal(err)
	}

	q := fm.Series("revenue_q_h")
	if len(q) != 3 || *q[0] != utils.FromCrores(1000) {
		t.Fatalf("revenue_q_h = %v", q)
	}

	if len(fm.QuarterDates) != 3 {
		t.Fatalf("quarter dates = %d, want 3", len(fm.QuarterDates))
	}
	// "Jun 2025" labels the quarter ending on the month's last day.
	want := time.Date(2025, time.June, 30, 0, 0, 0, 0, utils.IST)
	if !fm.QuarterDates[0].Equal(want) {
		t.Errorf("quarter date[0] = %s, want %s", fm.QuarterDates[0], want)
	}
}

func TestScraperMissingCompany(t *testing.T) {
	srv := scrapeTestServer(t)
	defer srv.Close()

	s := NewScraper(srv.URL)
	if _, err := s.Fundamentals(context.Background(), "NOPE"); err == nil {
		t.Error("missing company should error")
	}
}

func TestParseTableNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1,234", 1234, true},
		{"12.5%", 12.5, true},
		{"₹ 450", 450, true},
		{"-", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseTableNumber(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseTableNumber(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
