package crawler

import "errors"

// Crawl engine errors.
//
// Design decision: Only seed validation and session reuse get their own
// sentinels. Collaborator failures keep the analyzer package's sentinels
// (analyzer.ErrAnalysis, analyzer.ErrExtraction) so callers have exactly
// one name per failure kind to match with errors.Is.
var (
	// ErrInvalidSeedURL is returned when the seed cannot be parsed as
	// an absolute http(s) URL. The crawl never starts.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must be an absolute http(s) URL")

	// ErrAlreadyStarted is returned when Crawl is called on a
	// controller that has already run. A controller owns exactly one
	// session; create a new controller for a new crawl.
	ErrAlreadyStarted = errors.New("crawl already started: controllers are single-use")
)
