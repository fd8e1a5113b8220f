package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the crawl engine's defaults so that CLI, config
// file, and library callers agree on what "unset" means.
const (
	// DefaultBatchSize is the number of URLs sent to the page analyzer
	// per call. Five keeps each structured-output request small enough
	// to decode reliably while amortizing per-call overhead.
	DefaultBatchSize = 5

	// DefaultTargetPages is the page budget per site. Fifty pages covers
	// the head of most small business sites in a single run; larger
	// audits raise it via the --pages CLI flag.
	DefaultTargetPages = 50

	// DefaultCrawlDelay is the fixed pause between analysis batches.
	// This is a politeness and quota setting: one second keeps a crawl
	// well under typical generative-API rate limits.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultCallTimeout bounds each analyzer/extractor invocation.
	// Generative calls routinely take tens of seconds for a five-URL
	// batch; two minutes leaves headroom without hanging forever.
	DefaultCallTimeout = 2 * time.Minute

	// DefaultConcurrency is the number of sites crawled in parallel in
	// batch mode. Analyzer quotas, not CPU, are the practical limit.
	DefaultConcurrency = 3

	// DefaultModel is the generative model used for page analysis and
	// link extraction when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// AppName is the application name used for XDG directory paths.
	AppName = "seocrawl"
)

// Config holds all configuration options for a crawl run.
// This struct is designed to be populated from CLI flags and passed
// through the application via dependency injection rather than global
// state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// Seeds is the list of seed URLs to crawl. Each seed gets its own
	// crawl session with its own frontier and page budget.
	Seeds []string

	// TargetPages is the page budget per site. The crawl stops once
	// this many pages have been analyzed, even if the frontier still
	// holds discovered URLs.
	TargetPages int

	// BatchSize is the number of URLs analyzed per analyzer call.
	BatchSize int

	// CrawlDelay is the fixed pause between batches. A simple
	// fixed-interval rate limiter, not adaptive.
	CrawlDelay time.Duration

	// CallTimeout bounds each external analyzer/extractor call.
	CallTimeout time.Duration

	// Concurrency is the number of sites crawled in parallel when
	// multiple seeds are given. Each site's crawl stays sequential.
	Concurrency int

	// APIKey authenticates requests to the generative analysis service.
	// Usually supplied through the GEMINI_API_KEY environment variable
	// rather than a flag, to keep it out of shell history.
	APIKey string

	// Model is the generative model name used for analysis.
	Model string

	// ExclusionFile is the path to a line-oriented exclusion list.
	// A previous run's CSV export works directly as input.
	ExclusionFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// CSVReport enables CSV report output. Mutually exclusive with
	// JSONReport and MarkdownReport.
	CSVReport bool

	// JSONReport enables JSON report output. Mutually exclusive with
	// CSVReport and MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output. Mutually exclusive
	// with CSVReport and JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// When set, crawl sessions are saved for later export and
	// comparison. Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist crawl sessions.
	SaveToDB bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .seocrawl in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific overrides loaded from the config
	// file, keyed by hostname.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (batch size, delay,
// page budget). This also serves as documentation of what the defaults
// are.
func NewConfig() *Config {
	return &Config{
		TargetPages: DefaultTargetPages,
		BatchSize:   DefaultBatchSize,
		CrawlDelay:  DefaultCrawlDelay,
		CallTimeout: DefaultCallTimeout,
		Concurrency: DefaultConcurrency,
		Model:       DefaultModel,
	}
}

// XDGDataDir returns the XDG data directory for the crawler.
// On Linux: ~/.local/share/seocrawl
// On macOS: ~/Library/Application Support/seocrawl
// On Windows: %LOCALAPPDATA%\seocrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
// On Linux: ~/.config/seocrawl
// On macOS: ~/Library/Application Support/seocrawl
// On Windows: %APPDATA%\seocrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	// A zero or negative budget would mean no crawling at all
	if c.TargetPages <= 0 {
		return ErrInvalidTargetPages
	}

	// BatchSize must be positive; zero would stall the scheduler
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// CrawlDelay may be zero (no pause) but never negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// CallTimeout must be positive; zero would fail every external call
	if c.CallTimeout <= 0 {
		return ErrInvalidCallTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// At most one report format can be selected
	formats := 0
	for _, set := range []bool{c.CSVReport, c.JSONReport, c.MarkdownReport} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	return nil
}
