// Package api provides the HTTP REST API server for fundlens.
//
// It exposes endpoints for normalized financial statements, derived
// valuation series, quotes, and market news.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/fundlens/internal/config"
	"github.com/seenimoa/fundlens/internal/datasource"
	"github.com/seenimoa/fundlens/internal/engine"
	"github.com/seenimoa/fundlens/internal/rescache"
	"github.com/seenimoa/fundlens/internal/statement"
	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	eng    *engine.Engine
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	agg := datasource.NewAggregator(datasource.Options{
		ChartBaseURL:        cfg.Data.VendorChartBaseURL,
		FundamentalsBaseURL: cfg.Data.FundamentalsBaseURL,
		ScraperBaseURL:      cfg.Data.ScraperBaseURL,
		SnapshotDir:         cfg.Data.SnapshotDir,
		SyntheticEnabled:    cfg.Data.SyntheticEnabled,
		LiveTimeout:         cfg.Data.LiveTimeout(),
		NewsFeeds:           newsFeeds(cfg.News.Feeds),
	})

	cache := rescache.New(cfg.Data.CacheSweepThreshold)
	eng := engine.New(agg, cache, cfg.Data.CacheTTL())

	srv := &Server{cfg: cfg, eng: eng}
	srv.router = srv.buildRouter()
	return srv, nil
}

// NewServerWithEngine creates a server over a prebuilt engine. Used by
// tests to inject an offline aggregator.
func NewServerWithEngine(cfg *config.Config, eng *engine.Engine) *Server {
	srv := &Server{cfg: cfg, eng: eng}
	srv.router = srv.buildRouter()
	return srv
}

func newsFeeds(feeds []config.FeedConfig) []datasource.NewsFeed {
	if len(feeds) == 0 {
		return nil // keep defaults
	}
	out := make([]datasource.NewsFeed, len(feeds))
	for i, f := range feeds {
		out[i] = datasource.NewsFeed{Name: f.Name, URL: f.URL}
	}
	return out
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Statements
		r.Get("/statements/{ticker}/{kind}", s.handleStatement)

		// Derived valuation series
		r.Get("/series/{ticker}/{metric}", s.handleSeries)

		// Quotes
		r.Get("/quote/{ticker}", s.handleQuote)

		// News
		r.Get("/news", s.handleMarketNews)
		r.Get("/news/{ticker}", s.handleTickerNews)

		// Ticker search
		r.Get("/search/tickers", s.handleSearchTickers)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":        "ok",
			"version":       "dev",
			"market_status": utils.MarketStatus(),
			"time_ist":      utils.FormatDateTimeIST(utils.NowIST()),
		},
	})
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	kind, ok := statement.ParseStatement(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown statement kind: %s", chi.URLParam(r, "kind")))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := s.eng.Statement(ctx, ticker, kind)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	metric, ok := engine.ParseMetric(chi.URLParam(r, "metric"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown metric: %s", chi.URLParam(r, "metric")))
		return
	}

	tfStr := r.URL.Query().Get("timeframe")
	if tfStr == "" {
		tfStr = "1Y"
	}
	tf, ok := models.ParseTimeframe(tfStr)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown timeframe: %s", tfStr))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := s.eng.ValuationSeries(ctx, ticker, metric, tf)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	quote, err := s.eng.Quote(ctx, ticker)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: quote})
}

func (s *Server) handleMarketNews(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20)

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	articles, err := s.eng.MarketNews(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: articles})
}

func (s *Server) handleTickerNews(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	limit := parseLimit(r, 10)

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	articles, err := s.eng.News(ctx, ticker, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: articles})
}

func (s *Server) handleSearchTickers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: []interface{}{}})
		return
	}

	q = strings.ToUpper(q)

	// Static list of well-known NSE tickers for autocomplete.
	knownTickers := map[string]string{
		"RELIANCE":   "Reliance Industries Ltd",
		"TCS":        "Tata Consultancy Services Ltd",
		"INFY":       "Infosys Ltd",
		"HDFCBANK":   "HDFC Bank Ltd",
		"ICICIBANK":  "ICICI Bank Ltd",
		"HINDUNILVR": "Hindustan Unilever Ltd",
		"BHARTIARTL": "Bharti Airtel Ltd",
		"ITC":        "ITC Ltd",
		"SBIN":       "State Bank of India",
		"BAJFINANCE": "Bajaj Finance Ltd",
		"LT":         "Larsen & Toubro Ltd",
		"KOTAKBANK":  "Kotak Mahindra Bank Ltd",
		"AXISBANK":   "Axis Bank Ltd",
		"ASIANPAINT": "Asian Paints Ltd",
		"MARUTI":     "Maruti Suzuki India Ltd",
		"WIPRO":      "Wipro Ltd",
		"TITAN":      "Titan Company Ltd",
		"HCLTECH":    "HCL Technologies Ltd",
		"SUNPHARMA":  "Sun Pharmaceutical Industries Ltd",
		"TATAMOTORS": "Tata Motors Ltd",
	}

	type TickerResult struct {
		Ticker string `json:"ticker"`
		Name   string `json:"name"`
	}

	var results []TickerResult
	for ticker, name := range knownTickers {
		if strings.Contains(ticker, q) || strings.Contains(strings.ToUpper(name), q) {
			results = append(results, TickerResult{Ticker: ticker, Name: name})
			if len(results) >= 10 {
				break
			}
		}
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: results})
}

// ============================================================
// Helpers
// ============================================================

func parseLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNoData):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
