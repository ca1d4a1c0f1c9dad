package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chartTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			http.NotFound(w, r)
			return
		}
		ticker := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		if ticker == "MISSING.NS" {
			fmt.Fprint(w, `{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`)
			return
		}
		fmt.Fprint(w, `{"chart":{"result":[{
			"timestamp":[1748822400,1748908800,1748995200],
			"indicators":{"quote":[{
				"open":[100,104,null],
				"high":[105,108,110],
				"low":[99,103,106],
				"close":[104,107,109],
				"volume":[1000,1200,null]
			}]}
		}],"error":null}}`)
	}))
}

func TestVendorPriceHistory(t *testing.T) {
	srv := chartTestServer(t)
	defer srv.Close()

	v := NewVendor(srv.URL, "")
	from := time.Unix(1748822400, 0)
	to := time.Unix(1748995200, 0)

	bars, err := v.PriceHistory(context.Background(), "RELIANCE", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 3 {
		t.Fatalf("bars = %d, want 3", len(bars))
	}
	if bars[0].Close != 104 || bars[1].Close != 107 {
		t.Errorf("closes = %v %v", bars[0].Close, bars[1].Close)
	}
	// Null columns become zero values, not a dropped bar.
	if bars[2].Open != 0 || bars[2].Close != 109 {
		t.Errorf("null-tolerant bar = %+v", bars[2])
	}
}

func TestVendorPriceHistoryError(t *testing.T) {
	srv := chartTestServer(t)
	defer srv.Close()

	v := NewVendor(srv.URL, "")
	if _, err := v.PriceHistory(context.Background(), "MISSING", time.Unix(0, 0), time.Unix(1, 0)); err == nil {
		t.Error("vendor error payload should surface as an error")
	}
}

func TestVendorFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/fundamentals/ACME" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"ticker":"ACME","sector":"Diversified","periods":["Mar 2025"],"fields":{"revenue_h":[1e10]}}`)
	}))
	defer srv.Close()

	v := NewVendor("", srv.URL)
	fm, err := v.Fundamentals(context.Background(), "acme")
	if err != nil {
		t.Fatal(err)
	}
	if !fm.HasData() || fm.Sector != "Diversified" {
		t.Errorf("fm = %+v", fm)
	}
}

func TestVendorFundamentalsUnconfigured(t *testing.T) {
	v := NewVendor("", "")
	if _, err := v.Fundamentals(context.Background(), "ACME"); err != ErrNotSupported {
		t.Errorf("err = %v, want ErrNotSupported", err)
	}
}
