// Nivesh — Indian stock research and analysis service.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/niveshlab/nivesh/api"
	"github.com/niveshlab/nivesh/internal/config"
	"github.com/niveshlab/nivesh/internal/datasource"
	"github.com/niveshlab/nivesh/internal/directory"
	"github.com/niveshlab/nivesh/internal/fundamentals"
	"github.com/niveshlab/nivesh/internal/llm"
	"github.com/niveshlab/nivesh/internal/report"
	"github.com/niveshlab/nivesh/internal/research"
	"github.com/niveshlab/nivesh/pkg/utils"
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
	Use:   "nivesh",
	Short: "Nivesh — Indian stock research and analysis service",
	Long: `Nivesh aggregates fundamentals, news, and price history for NSE/BSE
stocks and produces an LLM-written research note per symbol, served
over a small HTTP API or directly from the command line.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Local .env files are a convenience; absence is not an error.
		_ = godotenv.Load()

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
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(stocksCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildPipeline wires the data sources, directory, and analysis
// pipeline from the loaded configuration.
func buildPipeline() (*directory.Directory, *research.Orchestrator) {
	yahoo := datasource.NewYahoo()
	fmp := datasource.NewFMP(cfg.Providers.FMPKey)

	dir := directory.New(
		datasource.NewNSEList(),
		datasource.NewBSEList(),
		directory.WithTTL(time.Duration(cfg.Directory.TTLHours)*time.Hour),
	)

	fetcher := fundamentals.NewFetcher(fmp, yahoo)
	renderer := report.NewRenderer(yahoo)

	var news research.NewsFetcher
	if cfg.Providers.MarketauxKey != "" {
		news = datasource.NewMarketaux(cfg.Providers.MarketauxKey)
	} else {
		news = datasource.NewRSSNews()
	}

	var analyzer research.Analyzer
	if provider, err := llm.NewGeminiProvider(cfg.LLM.GeminiKey, llm.WithGeminiModel(cfg.LLM.Model)); err == nil {
		analyzer = provider
	} else {
		analyzer = unavailableAnalyzer{}
	}

	return dir, research.NewOrchestrator(fetcher, news, renderer, analyzer)
}

// unavailableAnalyzer stands in when no LLM credential is configured;
// the orchestrator degrades the narrative instead of failing requests.
type unavailableAnalyzer struct{}

func (unavailableAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	return "", llm.ErrNoAPIKey
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Nivesh %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, orch := buildPipeline()
		srv := api.NewServer(cfg, dir, orch)

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting Nivesh API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Run the analysis pipeline for one stock",
	Long: `Fetch fundamentals, news, and a one-year price chart for an
exchange-qualified symbol (RELIANCE.NS, 500325.BO) and print the
LLM-written research note.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := utils.QualifySymbol(args[0])
		asJSON, _ := cmd.Flags().GetBool("json")

		_, orch := buildPipeline()
		result, err := orch.Analyze(cmd.Context(), symbol)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", symbol, err)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Printf("%s (%s)\n\n", result.Symbol, utils.Exchange(result.Symbol))
		for _, row := range result.Fundamentals {
			fmt.Printf("  %-24s %s\n", row.Key+":", row.Value)
		}
		if len(result.Headlines) > 0 {
			fmt.Println("\nRecent news:")
			for _, h := range result.Headlines {
				fmt.Printf("  - %s\n", h)
			}
		}
		fmt.Printf("\n%s\n", result.Analysis)
		if result.Partial {
			fmt.Println("\n(partial result: one or more data sources were unavailable)")
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print the full result as JSON")
}

// --- Stocks Command ---

var stocksCmd = &cobra.Command{
	Use:   "stocks",
	Short: "List tradable symbols per exchange",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := buildPipeline()
		nse, bse := dir.Get(cmd.Context())

		fmt.Printf("NSE (%d):\n", len(nse))
		for _, s := range nse {
			fmt.Printf("  %s\n", s)
		}
		fmt.Printf("BSE (%d):\n", len(bse))
		for _, s := range bse {
			fmt.Printf("  %s\n", s)
		}
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Nivesh — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    LLM Model:     %s\n", cfg.LLM.Model)
		fmt.Printf("    Directory TTL: %dh\n", cfg.Directory.TTLHours)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-20s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
