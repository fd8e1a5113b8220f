package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/config"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/database"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/log"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-export a stored crawl session",
		Long: `Export reloads a crawl session from the local database and writes it
in the requested report format, without re-crawling the site.

Select a session either by ID (see "seocrawl sessions") or by domain,
which picks that domain's most recent session.

Examples:
  # Export the latest session for a domain as CSV
  seocrawl export --domain example.com --csv --output report.csv

  # Export a specific session as JSON
  seocrawl export --id 42 --json`,
		RunE: runExportCmd,
	}

	// Session selection flags
	cmd.Flags().Int64("id", 0,
		"Session ID to export (see \"seocrawl sessions\")")
	cmd.Flags().String("domain", "",
		"Export the most recent session for this domain")

	// Report flags
	cmd.Flags().Bool("csv", false,
		"Output CSV report (mutually exclusive with --json and --markdown)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --csv and --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --csv and --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	domain, err := cmd.Flags().GetString("domain")
	if err != nil {
		return err
	}
	if id == 0 && domain == "" {
		return fmt.Errorf("specify a session with --id or --domain")
	}
	if id != 0 && domain != "" {
		return fmt.Errorf("--id and --domain are mutually exclusive")
	}

	cfg := config.NewConfig()
	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return err
	}
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	summary, pages, err := loadSession(cmd, id, domain)
	if err != nil {
		return err
	}

	return outputReport(cfg, summary, pages)
}

// loadSession opens the database read-only and loads the requested
// session by ID or by latest-for-domain.
func loadSession(cmd *cobra.Command, id int64, domain string) (*model.Summary, []model.CrawledPage, error) {
	// The database must already exist; export never creates one
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if id != 0 {
		return db.GetSession(cmd.Context(), id)
	}
	return db.GetLatestSession(cmd.Context(), domain)
}
