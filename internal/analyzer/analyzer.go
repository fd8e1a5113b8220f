package analyzer

import (
	"context"
	"errors"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// Sentinel errors for collaborator failures.
//
// Design decision: We use two package-level sentinels rather than typed
// errors because the crawl engine only needs to distinguish "the analyzer
// broke" from "the extractor broke" when surfacing the failure reason.
// Decode and service failures are wrapped under the same sentinel so
// callers can use errors.Is without caring about the cause.
var (
	// ErrAnalysis is returned when the page analyzer fails, either
	// because the service call failed or because the response could
	// not be decoded into analysis records.
	ErrAnalysis = errors.New("page analysis failed")

	// ErrExtraction is returned when link extraction fails.
	ErrExtraction = errors.New("link extraction failed")
)

// Link is one outbound link discovered on a page.
type Link struct {
	// URL is the absolute link target.
	URL string `json:"url"`

	// AnchorText is the visible text of the link.
	AnchorText string `json:"anchor_text"`
}

// PageAnalyzer produces SEO metadata for a batch of URLs.
//
// Contract: the returned slice has exactly one record per input URL, in
// input order. Callers must not call Analyze with an empty batch; they
// short-circuit to an empty result instead.
type PageAnalyzer interface {
	// Analyze analyzes the given URLs in the context of the site at
	// contextURL and returns one record per URL.
	Analyze(ctx context.Context, urls []string, contextURL string) ([]model.AnalysisRecord, error)
}

// LinkExtractor lists the outbound links of a single page.
//
// Contract: the returned links are absolute and unique per call.
// Cross-domain links may appear; the caller applies the same-domain
// filter before enqueueing.
type LinkExtractor interface {
	// Extract returns the outbound links of pageURL. siteDomain is the
	// crawl's site hostname, passed so implementations can focus their
	// output, but callers never rely on the filtering.
	Extract(ctx context.Context, pageURL, siteDomain string) ([]Link, error)
}
