package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/analyzer"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/config"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/crawler"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/database"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/exclusion"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/log"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url]...",
		Short: "Crawl one or more websites and analyze their SEO",
		Long: `Crawl starts from each seed URL and explores the site breadth-first,
staying on the seed's domain. Pages are analyzed in batches by a
generative model, which reports per-page SEO attributes and issues.

The crawl stops when the page budget is reached or the site runs out
of same-domain links. Results are printed as a report and stored in a
local database for later export.

Examples:
  # Crawl a single site with defaults (50 pages)
  seocrawl crawl https://example.com

  # Crawl multiple sites concurrently
  seocrawl crawl https://example.com https://example.org

  # Larger budget, slower pace
  seocrawl crawl --pages 200 --delay 3s https://example.com

  # Skip URLs already covered by a previous run
  seocrawl crawl --exclusions previous-crawl.csv https://example.com

  # Output a CSV report to a file
  seocrawl crawl --csv --output report.csv https://example.com

Configuration file (.seocrawl) example:
  defaults:
    crawlDelay: 2s
  sites:
    example.com:
      targetPages: 100
      exclusions:
        - https://example.com/cart`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("pages", "p", config.DefaultTargetPages,
		"Maximum number of pages to analyze per site")
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		"Number of URLs analyzed per model call")
	cmd.Flags().DurationP("delay", "d", config.DefaultCrawlDelay,
		"Pause between analysis batches")
	cmd.Flags().DurationP("call-timeout", "t", config.DefaultCallTimeout,
		"Timeout for each model call")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of sites crawled in parallel")
	cmd.Flags().StringP("exclusions", "x", "",
		"File with URLs to exclude, one per line (a previous CSV report works)")

	// Model flags
	cmd.Flags().String("api-key", "",
		"API key for the generative model (default: GEMINI_API_KEY environment variable)")
	cmd.Flags().String("model", config.DefaultModel,
		"Generative model used for page analysis")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seocrawl in current or home directory)")

	// Report flags
	cmd.Flags().Bool("csv", false,
		"Output CSV report (mutually exclusive with --json and --markdown)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --csv and --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --csv and --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Storage flags
	cmd.Flags().Bool("no-db", false,
		"Do not save the crawl session to the local database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.TargetPages, err = cmd.Flags().GetInt("pages")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch-size")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.CallTimeout, err = cmd.Flags().GetDuration("call-timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.ExclusionFile, err = cmd.Flags().GetString("exclusions")
	if err != nil {
		return nil, err
	}

	cfg.APIKey, err = cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	cfg.Model, err = cmd.Flags().GetString("model")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Get positional arguments (seed URLs)
	cfg.Seeds = args

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"targetPages", cfg.TargetPages,
		"batchSize", cfg.BatchSize,
		"concurrency", cfg.Concurrency,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Load the exclusion file once; it applies to every seed
	var exclusions []string
	if cfg.ExclusionFile != "" {
		var err error
		exclusions, err = exclusion.ParseFile(cfg.ExclusionFile)
		if err != nil {
			return fmt.Errorf("failed to load exclusion file: %w", err)
		}
		logger.Info("loaded exclusions", "file", cfg.ExclusionFile, "count", len(exclusions))
	}

	// The Gemini client serves both roles: page analysis and link
	// extraction come back from the same structured-output call.
	gem := analyzer.NewGemini(cfg.APIKey,
		analyzer.WithGeminiModel(cfg.Model),
		analyzer.WithGeminiLogger(logger),
	)

	// Crawl sites concurrently when there is more than one seed
	if len(cfg.Seeds) > 1 && cfg.Concurrency > 1 {
		return runBatchCrawl(ctx, cfg, gem, db, exclusions, logger)
	}

	// Single seed or sequential crawling
	return runSequentialCrawl(ctx, cfg, gem, db, exclusions, logger)
}

// runSequentialCrawl crawls seeds one at a time, applying per-site
// configuration overrides from the config file.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, gem *analyzer.Gemini, db *database.CrawlDB, exclusions []string, logger *slog.Logger) error {
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Get site-specific configuration
		siteConfig := siteConfigFor(cfg, seed)

		ctrl := newControllerForSite(gem, cfg, siteConfig, exclusions, logger)

		fmt.Printf("Crawling %s...\n", seed)

		summary, err := ctrl.Crawl(ctx, seed)
		pages := ctrl.Results()
		if err != nil {
			// Partial results are still reported and saved; the
			// summary carries the failure reason.
			logger.Error("crawl failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, err)
			if summary == nil {
				continue
			}
		} else {
			fmt.Printf("Analyzed %d pages in %s\n\n",
				summary.Analyzed, summary.Elapsed.Round(time.Millisecond))
		}

		// Generate and output report
		if err := outputReport(cfg, summary, pages); err != nil {
			logger.Error("report failed", "seed", seed, "error", err)
		}

		// Save to database if enabled
		if err := saveSession(ctx, db, summary, pages, logger); err != nil {
			logger.Error("failed to save crawl session", "seed", seed, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchCrawler,
// with one progress bar per site.
func runBatchCrawl(ctx context.Context, cfg *config.Config, gem *analyzer.Gemini, db *database.CrawlDB, exclusions []string, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d sites (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.Concurrency)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch crawling uses default site config only; site-specific configs (budget, delay, exclusions) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--concurrency 1) to apply per-site settings.\n\n")
	}

	progress := mpb.New(mpb.WithOutput(os.Stderr))

	bc := crawler.NewBatchCrawler(
		func() *crawler.Controller {
			// Batch runs share one controller configuration, so only
			// the config file's defaults apply here.
			var siteConfig config.SiteConfig
			if cfg.SiteConfigs != nil {
				siteConfig = cfg.SiteConfigs.Defaults
			}
			return newControllerForSite(gem, cfg, siteConfig, exclusions, logger)
		},
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithBatchLogger(logger),
		crawler.WithStartHook(func(_ int, seed string, ctrl *crawler.Controller) {
			bar := progress.AddBar(int64(cfg.TargetPages),
				mpb.PrependDecorators(
					decor.Name(seed, decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.CountersNoUnit("[%d / %d]", decor.WCSyncWidth),
					decor.Percentage(decor.WCSyncSpace),
				),
			)
			go trackProgress(ctx, bar, ctrl)
		}),
	)

	results, err := bc.CrawlAll(ctx, cfg.Seeds)
	progress.Wait()
	if err != nil {
		return err
	}

	for i, result := range results {
		fmt.Printf("[%d/%d] %s: %s\n", i+1, len(results), result.Seed, result.Summary.State)

		// Generate and output report
		if err := outputReport(cfg, result.Summary, result.Pages); err != nil {
			logger.Error("report failed", "seed", result.Seed, "error", err)
		}

		// Save to database if enabled
		if err := saveSession(ctx, db, result.Summary, result.Pages, logger); err != nil {
			logger.Error("failed to save crawl session", "seed", result.Seed, "error", err)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return nil
}

// trackProgress drives a progress bar from controller snapshots until
// the crawl reaches a terminal state.
func trackProgress(ctx context.Context, bar *mpb.Bar, ctrl *crawler.Controller) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			bar.Abort(false)
			return
		case <-ticker.C:
			snapshot := ctrl.Progress()
			bar.SetTotal(int64(snapshot.Target), false)
			bar.SetCurrent(int64(snapshot.Analyzed))
			if snapshot.State.Terminal() {
				// A crawl can finish under budget when the site runs
				// out of links; shrink the total so the bar completes.
				bar.SetTotal(int64(snapshot.Analyzed), true)
				return
			}
		}
	}
}

// siteConfigFor returns the merged site configuration for a seed URL.
// Seeds that do not parse fall back to the defaults; the controller
// rejects them properly when the crawl starts.
func siteConfigFor(cfg *config.Config, seed string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	parsed, err := url.Parse(seed)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(parsed.Hostname())
}

// newControllerForSite creates a crawl controller with site-specific
// overrides applied on top of the global configuration.
func newControllerForSite(gem *analyzer.Gemini, cfg *config.Config, siteConfig config.SiteConfig, exclusions []string, logger *slog.Logger) *crawler.Controller {
	targetPages := cfg.TargetPages
	if siteConfig.TargetPages > 0 {
		targetPages = siteConfig.TargetPages
	}
	batchSize := cfg.BatchSize
	if siteConfig.BatchSize > 0 {
		batchSize = siteConfig.BatchSize
	}
	delay := cfg.CrawlDelay
	if siteConfig.CrawlDelay > 0 {
		delay = time.Duration(siteConfig.CrawlDelay)
	}

	merged := append(append([]string(nil), exclusions...), siteConfig.Exclusions...)

	return crawler.NewController(gem, gem,
		crawler.WithTargetPages(targetPages),
		crawler.WithBatchSize(batchSize),
		crawler.WithInterBatchDelay(delay),
		crawler.WithCallTimeout(cfg.CallTimeout),
		crawler.WithExclusions(merged),
		crawler.WithLogger(logger),
	)
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, summary *model.Summary, pages []model.CrawledPage) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports can reveal site structure that should only be readable by the owner
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// CSV output (per-page data; re-usable as an exclusion list)
	if cfg.CSVReport {
		writer := report.NewCSVWriter(output)
		_, err := writer.Write(summary, pages)
		return err
	}

	// JSON output (full summary and page data)
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output,
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()),
		)
		_, err := writer.Write(summary, pages)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(summary, pages)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(summary, pages)
	return err
}

// saveSession saves the crawl session to the database if enabled.
// If db is nil, this function is a no-op.
func saveSession(ctx context.Context, db *database.CrawlDB, summary *model.Summary, pages []model.CrawledPage, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveSession(ctx, summary, pages)
	if err != nil {
		return fmt.Errorf("failed to save crawl session: %w", err)
	}

	logger.Info("crawl session saved to database", "id", id, "site_domain", summary.SiteDomain)
	return nil
}
