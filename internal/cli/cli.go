package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/harvest-reports/internal/config"
	"github.com/pfrederiksen/harvest-reports/internal/harvest"
	"github.com/pfrederiksen/harvest-reports/internal/logger"
	"github.com/pfrederiksen/harvest-reports/internal/scraper"
	"github.com/pfrederiksen/harvest-reports/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfigFile string
	flagVerbose    bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest-reports",
		Short: "Download hunting harvest reports as CSV files",
		Long: `A CLI tool that crawls the WDFW game harvest index page, follows the report
links listed under each species, and saves every report table as CSV,
one file per species and report category.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCrawl,
	}

	// Define flags
	cmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "Config file (default ./harvest.yaml if present)")
	cmd.PersistentFlags().String("base-url", config.DefaultBaseURL, "Base URL that relative report links are appended to")
	cmd.PersistentFlags().String("index-path", config.DefaultIndexPath, "Path (or absolute URL) of the harvest index page")
	cmd.PersistentFlags().String("output-dir", config.DefaultOutputDir, "Directory for CSV output")
	cmd.PersistentFlags().String("user-agent", config.DefaultUserAgent, "User-Agent header for HTTP requests")
	cmd.PersistentFlags().Duration("timeout", scraper.DefaultTimeout, "Per-request HTTP timeout")
	cmd.PersistentFlags().Int("concurrency", 1, "Number of report pages fetched at once")
	cmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().String("format", "text", "Summary format: text, json, or markdown")
	cmd.Flags().String("sort", "", "Sort summary files by: species, category, or rows")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging and output")

	cmd.AddCommand(newConfigCmd())

	return cmd
}

// newConfigCmd creates the command that prints the effective configuration
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfigFile, cmd.Flags())
			if err != nil {
				return err
			}
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// runCrawl is the main command logic
func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfigFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sortOrder := SortOrder(strings.ToLower(cfg.Sort))
	if !sortOrder.Valid() {
		return eris.Errorf("invalid sort: %s (must be 'species', 'category', or 'rows')", cfg.Sort)
	}
	format := OutputFormat(strings.ToLower(cfg.Format))

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	logger.ResetMetrics()
	defer logger.Default().Sync() // nolint:errcheck

	// Initialize storage
	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return eris.Wrap(err, "initializing storage")
	}

	// Initialize scraper
	sc := scraper.New(
		scraper.WithTimeout(cfg.Timeout),
		scraper.WithUserAgent(cfg.UserAgent),
	)
	crawler := scraper.NewCrawler(sc, cfg.BaseURL, scraper.WithConcurrency(cfg.Concurrency))

	logger.Info("Starting crawl", logger.Fields{
		"index_url":   cfg.IndexURL(),
		"output_dir":  store.OutputDir(),
		"concurrency": cfg.Concurrency,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := crawler.CrawlURL(ctx, cfg.IndexURL())
	if err != nil {
		return eris.Wrap(err, "crawling harvest reports")
	}

	agg := harvest.Aggregate(result)

	written, err := store.WriteAll(agg)
	if err != nil {
		return eris.Wrap(err, "saving tables")
	}

	// Prepare output
	out := NewOutputResult(result, written)
	out.CrawledAt = time.Now().UTC()
	out.IndexURL = cfg.IndexURL()
	out.OutputDir = store.OutputDir()
	out.Metrics = logger.GetMetricsSnapshot()
	sortFiles(out.Files, sortOrder)

	if err := WriteOutput(cmd.OutOrStdout(), out, format, flagVerbose); err != nil {
		return eris.Wrap(err, "writing output")
	}

	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
