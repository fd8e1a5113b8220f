package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/analyzer"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/config"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/database"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// discardLogger returns a logger that writes nowhere.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [seed-url]..." {
			t.Errorf("expected use 'crawl [seed-url]...', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("pages")
		if flag == nil {
			t.Fatal("expected pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch-size flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch-size")
		if flag == nil {
			t.Fatal("expected batch-size flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has delay flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("delay")
		if flag == nil {
			t.Fatal("expected delay flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
	})

	t.Run("has call-timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("call-timeout")
		if flag == nil {
			t.Fatal("expected call-timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has concurrency flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("concurrency")
		if flag == nil {
			t.Fatal("expected concurrency flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
	})

	t.Run("has exclusions flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("exclusions")
		if flag == nil {
			t.Fatal("expected exclusions flag")
		}
		if flag.Shorthand != "x" {
			t.Errorf("expected shorthand 'x', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has report format flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("csv") == nil {
			t.Error("expected csv flag")
		}
		jsonFlag := cmd.Flags().Lookup("json")
		if jsonFlag == nil {
			t.Fatal("expected json flag")
		}
		if jsonFlag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", jsonFlag.Shorthand)
		}
		mdFlag := cmd.Flags().Lookup("markdown")
		if mdFlag == nil {
			t.Fatal("expected markdown flag")
		}
		if mdFlag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", mdFlag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-db flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("no-db")
		if flag == nil {
			t.Fatal("expected no-db flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("db-dir")
		if flag != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewCrawlCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		// Set verbose flag to true
		_ = root.PersistentFlags().Set("verbose", "true")

		// Get crawl subcommand
		crawlCmd, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatalf("failed to find crawl command: %v", err)
		}

		result := getVerboseFlag(crawlCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.com" {
			t.Errorf("expected seeds [https://example.com], got %v", cfg.Seeds)
		}
		if cfg.TargetPages != config.DefaultTargetPages {
			t.Errorf("expected TargetPages %d, got %d", config.DefaultTargetPages, cfg.TargetPages)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("expected BatchSize %d, got %d", config.DefaultBatchSize, cfg.BatchSize)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true by default")
		}
		if cfg.DBDir == "" {
			t.Error("expected non-empty DBDir")
		}
	})

	t.Run("builds config with custom page budget", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("pages", "200")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.TargetPages != 200 {
			t.Errorf("expected TargetPages 200, got %d", cfg.TargetPages)
		}
	})

	t.Run("builds config with custom delay", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("delay", "3s")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.CrawlDelay != 3*time.Second {
			t.Errorf("expected CrawlDelay 3s, got %s", cfg.CrawlDelay)
		}
	})

	t.Run("api key falls back to environment", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "env-test-key")

		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.APIKey != "env-test-key" {
			t.Errorf("expected APIKey from environment, got %q", cfg.APIKey)
		}
	})

	t.Run("api key flag overrides environment", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "env-test-key")

		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("api-key", "flag-test-key")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.APIKey != "flag-test-key" {
			t.Errorf("expected APIKey from flag, got %q", cfg.APIKey)
		}
	})

	t.Run("no-db flag disables saving", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("no-db", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-db")
		}
	})

	t.Run("explicit missing config file returns error", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("loads site configs from config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), ".seocrawl")
		content := `sites:
  example.com:
    targetPages: 100
    crawlDelay: 2s
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		site, ok := cfg.SiteConfigs.Sites["example.com"]
		if !ok {
			t.Fatal("expected site config for example.com")
		}
		if site.TargetPages != 100 {
			t.Errorf("expected TargetPages 100, got %d", site.TargetPages)
		}
		if time.Duration(site.CrawlDelay) != 2*time.Second {
			t.Errorf("expected CrawlDelay 2s, got %s", time.Duration(site.CrawlDelay))
		}
	})
}

// TestSiteConfigFor tests per-seed site config resolution.
func TestSiteConfigFor(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.SiteConfigs = &config.File{
		Defaults: config.SiteConfig{BatchSize: 3},
		Sites: map[string]config.SiteConfig{
			"example.com": {TargetPages: 100},
		},
	}

	t.Run("merges site-specific config over defaults", func(t *testing.T) {
		t.Parallel()
		site := siteConfigFor(cfg, "https://example.com/start")
		if site.TargetPages != 100 {
			t.Errorf("expected TargetPages 100, got %d", site.TargetPages)
		}
		if site.BatchSize != 3 {
			t.Errorf("expected BatchSize 3 from defaults, got %d", site.BatchSize)
		}
	})

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()
		site := siteConfigFor(cfg, "https://other.com")
		if site.TargetPages != 0 {
			t.Errorf("expected no TargetPages override, got %d", site.TargetPages)
		}
		if site.BatchSize != 3 {
			t.Errorf("expected BatchSize 3 from defaults, got %d", site.BatchSize)
		}
	})

	t.Run("nil site configs yields zero value", func(t *testing.T) {
		t.Parallel()
		bare := config.NewConfig()
		site := siteConfigFor(bare, "https://example.com")
		if site.TargetPages != 0 || site.BatchSize != 0 {
			t.Errorf("expected zero site config, got %+v", site)
		}
	})
}

// TestNewControllerForSite tests controller construction.
func TestNewControllerForSite(t *testing.T) {
	t.Parallel()

	gem := analyzer.NewGemini("test-key")
	cfg := config.NewConfig()

	ctrl := newControllerForSite(gem, cfg, config.SiteConfig{}, nil, nil)
	if ctrl == nil {
		t.Fatal("expected non-nil controller")
	}
	if got := ctrl.State(); got != model.StateIdle {
		t.Errorf("expected new controller in idle state, got %s", got)
	}
}

// TestOutputReport tests report generation and file output.
func TestOutputReport(t *testing.T) {
	summary := &model.Summary{
		SeedURL:    "https://example.com",
		SiteDomain: "example.com",
		State:      model.StateCompleted,
		Analyzed:   1,
		Discovered: 2,
		Elapsed:    1500 * time.Millisecond,
	}
	pages := []model.CrawledPage{
		{
			AnalysisRecord: model.AnalysisRecord{
				URL:    "https://example.com",
				Status: 200,
				Title:  "Example",
			},
		},
	}

	t.Run("writes CSV report to nested output path", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.CSVReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "crawl.csv")

		if err := outputReport(cfg, summary, pages); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to read report file: %v", err)
		}
		if !strings.HasPrefix(string(data), `"URL","Status"`) {
			t.Errorf("expected CSV header, got %q", string(data)[:40])
		}
		if !strings.Contains(string(data), `"https://example.com"`) {
			t.Error("expected page URL in CSV output")
		}
	})

	t.Run("writes simple report by default", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.ReportFile = filepath.Join(t.TempDir(), "report.txt")

		if err := outputReport(cfg, summary, pages); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to read report file: %v", err)
		}
		if !strings.Contains(string(data), "SEO CRAWL REPORT") {
			t.Error("expected simple report banner")
		}
	})

	t.Run("writes JSON report", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "report.json")

		if err := outputReport(cfg, summary, pages); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to read report file: %v", err)
		}
		if !strings.Contains(string(data), `"state": "completed"`) {
			t.Error("expected JSON state name in output")
		}
	})
}

// TestSaveSession tests database persistence from the CLI path.
func TestSaveSession(t *testing.T) {
	t.Parallel()

	summary := &model.Summary{
		SeedURL:    "https://example.com",
		SiteDomain: "example.com",
		State:      model.StateCompleted,
		Analyzed:   1,
		Discovered: 1,
		Elapsed:    time.Second,
	}
	pages := []model.CrawledPage{{
		AnalysisRecord: model.AnalysisRecord{URL: "https://example.com", Status: 200},
	}}

	t.Run("nil database is a no-op", func(t *testing.T) {
		t.Parallel()
		if err := saveSession(context.Background(), nil, summary, pages, discardLogger()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("saves session to database", func(t *testing.T) {
		t.Parallel()
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		ctx := context.Background()
		if err := saveSession(ctx, db, summary, pages, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sessions, err := db.ListSessions(ctx)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(sessions) != 1 {
			t.Fatalf("expected 1 session, got %d", len(sessions))
		}
		if sessions[0].SiteDomain != "example.com" {
			t.Errorf("expected site domain example.com, got %q", sessions[0].SiteDomain)
		}
	})
}
