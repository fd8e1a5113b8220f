package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoSeed is returned when no seed URL is specified.
	// This error occurs when neither a positional argument nor a seed
	// list provides a URL to start from.
	ErrNoSeed = errors.New("no seed URL specified: provide at least one URL to crawl")

	// ErrInvalidTargetPages is returned when the page budget is not positive.
	// A budget of zero or negative would mean no pages are ever analyzed.
	ErrInvalidTargetPages = errors.New("invalid page budget: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would stall the scheduler before the first
	// analyzer call.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidCrawlDelay is returned when the inter-batch delay is negative.
	// A negative delay is invalid; use 0 for no delay between batches.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidCallTimeout is returned when the per-call timeout is not positive.
	// A zero timeout would cancel every analyzer call before it starts.
	ErrInvalidCallTimeout = errors.New("invalid call timeout: must be positive")

	// ErrInvalidConcurrency is returned when the site concurrency is not positive.
	// At least one crawl must be allowed in flight.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --csv, --json, and --markdown is specified. Only one output format
	// can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose at most one of --csv, --json, --markdown")
)
