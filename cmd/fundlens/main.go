// fundlens — normalized financial statements and derived valuation
// series for NSE-listed companies.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/fundlens/api"
	"github.com/seenimoa/fundlens/internal/config"
	"github.com/seenimoa/fundlens/internal/datasource"
	"github.com/seenimoa/fundlens/internal/engine"
	"github.com/seenimoa/fundlens/internal/rescache"
	"github.com/seenimoa/fundlens/internal/statement"
	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fundlens",
	Short: "fundlens — normalized fundamentals and valuation series for NSE stocks",
	Long: `fundlens normalizes Indian-market financial statements into
banking and non-banking schemas, and derives daily valuation series
(P/E, market-cap/sales) by joining price history with reported
fundamentals. Data falls back from live sources through local
snapshots to synthetic generation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statementCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildEngine wires the data-source tiers and response cache from config.
func buildEngine() *engine.Engine {
	agg := datasource.NewAggregator(datasource.Options{
		ChartBaseURL:        cfg.Data.VendorChartBaseURL,
		FundamentalsBaseURL: cfg.Data.FundamentalsBaseURL,
		ScraperBaseURL:      cfg.Data.ScraperBaseURL,
		SnapshotDir:         cfg.Data.SnapshotDir,
		SyntheticEnabled:    cfg.Data.SyntheticEnabled,
		LiveTimeout:         cfg.Data.LiveTimeout(),
	})
	return engine.New(agg, rescache.New(cfg.Data.CacheSweepThreshold), cfg.Data.CacheTTL())
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fundlens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return fmt.Errorf("server setup failed: %w", err)
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 fundlens API server listening on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Statement Command ---

var statementCmd = &cobra.Command{
	Use:   "statement [ticker]",
	Short: "Show a normalized financial statement",
	Long: `Render one of the normalized statements for a company:
profit-loss, balance-sheet, cash-flow, or ratios. Values are reported
in crores; banking companies use the banking schema automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kindStr, _ := cmd.Flags().GetString("kind")
		kind, ok := statement.ParseStatement(kindStr)
		if !ok {
			return fmt.Errorf("unknown statement kind: %s", kindStr)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		result, err := buildEngine().Statement(ctx, args[0], kind)
		if err != nil {
			return err
		}

		printStatement(result)
		return nil
	},
}

func init() {
	statementCmd.Flags().String("kind", "profit-loss", "statement kind: profit-loss, balance-sheet, cash-flow, ratios")
}

func printStatement(res *models.StatementResult) {
	fmt.Printf("📈 %s — %s (%s, data: %s)\n\n", res.Ticker, res.Statement, res.CompanyType, res.Provenance)

	fmt.Printf("%-28s", "")
	for _, p := range res.Periods {
		fmt.Printf("%14s", p)
	}
	fmt.Println()

	for _, row := range res.Rows {
		if row.IsSection {
			fmt.Printf("\n%s\n", row.Label)
			continue
		}
		label := row.Label
		for i := 0; i < row.Indent; i++ {
			label = "  " + label
		}
		fmt.Printf("%-28s", label)
		for _, v := range row.Values {
			fmt.Printf("%14s", v)
		}
		fmt.Println()
	}
}

// --- Series Command ---

var seriesCmd = &cobra.Command{
	Use:   "series [ticker]",
	Short: "Show a derived valuation series",
	Long: `Derive a daily valuation ratio series by joining price history
with reported fundamentals.

Examples:
  fundlens series RELIANCE --metric pe --timeframe 1Y
  fundlens series TCS --metric mcap-sales --timeframe 3Y`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metricStr, _ := cmd.Flags().GetString("metric")
		metric, ok := engine.ParseMetric(metricStr)
		if !ok {
			return fmt.Errorf("unknown metric: %s", metricStr)
		}

		tfStr, _ := cmd.Flags().GetString("timeframe")
		tf, ok := models.ParseTimeframe(tfStr)
		if !ok {
			return fmt.Errorf("unknown timeframe: %s", tfStr)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		result, err := buildEngine().ValuationSeries(ctx, args[0], metric, tf)
		if err != nil {
			return err
		}

		fmt.Printf("📊 %s %s over %s (data: %s)\n", result.Ticker, result.Metric, result.Timeframe, result.Provenance)
		fmt.Printf("   points: %d, median: %.2f\n\n", len(result.Data), result.Median)
		for _, p := range result.Data {
			marker := ""
			if p.Bar != nil {
				marker = "  ◆"
			}
			fmt.Printf("  %s  %10.2f%s\n", utils.FormatDateIST(p.Time), p.Ratio, marker)
		}
		return nil
	},
}

func init() {
	seriesCmd.Flags().String("metric", "pe", "series metric: pe, mcap-sales")
	seriesCmd.Flags().String("timeframe", "1Y", "timeframe: 1M, 6M, 1Y, 3Y, 5Y")
}

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote [ticker]",
	Short: "Show a basic quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		q, err := buildEngine().Quote(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("💹 %s\n", q.Ticker)
		fmt.Printf("   Last:       ₹%.2f\n", q.LastPrice)
		fmt.Printf("   Change:     %.2f (%.2f%%)\n", q.Change, q.ChangePct)
		if q.MarketCap > 0 {
			fmt.Printf("   Market Cap: %s\n", utils.FormatINRCompact(q.MarketCap))
		}
		fmt.Printf("   As of:      %s\n", utils.FormatDateTimeIST(q.Timestamp))
		return nil
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [ticker]",
	Short: "Show recent market news, optionally filtered by ticker",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		eng := buildEngine()
		var articles []models.NewsArticle
		var err error
		if len(args) == 1 {
			articles, err = eng.News(ctx, args[0], limit)
		} else {
			articles, err = eng.MarketNews(ctx, limit)
		}
		if err != nil {
			return err
		}

		for _, a := range articles {
			fmt.Printf("📰 %s\n   %s | %s\n   %s\n\n",
				a.Title, a.Source, utils.FormatDateTimeIST(a.PublishedAt), a.Link)
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("limit", 10, "maximum number of articles")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  fundlens — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (IST):    %s\n", utils.FormatDateTimeIST(utils.NowIST()))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("    Chart Source:  %s\n", cfg.Data.VendorChartBaseURL)
		fmt.Printf("    Scraper:       %s\n", cfg.Data.ScraperBaseURL)
		snapshot := cfg.Data.SnapshotDir
		if snapshot == "" {
			snapshot = "(disabled)"
		}
		fmt.Printf("    Snapshots:     %s\n", snapshot)
		fmt.Printf("    Synthetic:     %t\n", cfg.Data.SyntheticEnabled)
		fmt.Printf("    Cache TTL:     %s\n", cfg.Data.CacheTTL())
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
