package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/analyzer"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// oversupply is the load-shedding threshold for link discovery: when the
// frontier already holds more than 1.5 times the remaining page budget,
// extracting more links only grows a queue that will never drain. The
// comparison is done in integer arithmetic (2*len > 3*remaining).
const (
	oversupplyNum   = 3
	oversupplyDenom = 2
)

// scheduler processes exactly one bounded batch per invocation: dequeue,
// analyze, attach inlink snapshots, then feed discovered links back into
// the frontier.
//
// The scheduler owns no goroutines. Every external call it makes is a
// cooperative suspension point of the single crawl task, bounded by
// callTimeout and cancellable through the caller's context.
type scheduler struct {
	frontier  *Frontier
	graph     *LinkGraph
	analyzer  analyzer.PageAnalyzer
	extractor analyzer.LinkExtractor

	// siteDomain is the seed's hostname; only exact matches are
	// enqueued. Subdomains do not match.
	siteDomain string

	// contextURL is the seed URL, handed to the analyzer as site
	// context.
	contextURL string

	// batchSize is the maximum number of URLs analyzed per batch.
	batchSize int

	// callTimeout bounds each analyzer/extractor invocation.
	callTimeout time.Duration

	logger *slog.Logger
}

// processBatch runs one batch against the analyzer and extractor.
//
// It returns the pages emitted by this batch. The returned pages are
// valid even when err is non-nil: a batch whose analysis succeeded but
// whose link extraction failed has already emitted its pages, and the
// spec keeps partial results visible. An empty frontier yields
// (nil, nil), the "no work" signal.
func (s *scheduler) processBatch(ctx context.Context, analyzed, target int) ([]model.CrawledPage, error) {
	size := s.batchSize
	if remaining := target - analyzed; remaining < size {
		size = remaining
	}

	batch := s.frontier.DequeueBatch(size)
	if len(batch) == 0 {
		return nil, nil
	}

	records, err := s.analyzeBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	// Attach the inlink snapshot at emission time. Edges recorded from
	// sibling pages later in this same batch are intentionally not
	// attached; the snapshot timing is part of the engine's contract.
	pages := make([]model.CrawledPage, 0, len(records))
	for _, record := range records {
		pages = append(pages, model.CrawledPage{
			AnalysisRecord: record,
			Inlinks:        s.graph.EdgesFor(record.URL),
		})
	}
	analyzed += len(pages)

	// Budget reached: the crawl is over, discovering more links would
	// only be thrown away.
	if analyzed >= target {
		return pages, nil
	}

	for _, page := range pages {
		if !page.IsSuccess() {
			s.logger.Debug("skipping link discovery for error page",
				"url", page.URL,
				"status", page.Status,
			)
			continue
		}

		// Load shedding: the frontier is already oversupplied
		// relative to the remaining budget.
		if oversupplyNum*(target-analyzed) < oversupplyDenom*s.frontier.Len() {
			s.logger.Debug("frontier oversupplied, skipping link extraction",
				"url", page.URL,
				"queued", s.frontier.Len(),
				"remaining", target-analyzed,
			)
			continue
		}

		links, err := s.extractLinks(ctx, page.URL)
		if err != nil {
			return pages, err
		}

		for _, link := range links {
			s.recordLink(page.URL, link)
		}
	}

	return pages, nil
}

// analyzeBatch invokes the page analyzer with a per-call timeout and
// validates the cardinality contract.
func (s *scheduler) analyzeBatch(ctx context.Context, batch []string) ([]model.AnalysisRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	records, err := s.analyzer.Analyze(callCtx, batch, s.contextURL)
	if err != nil {
		return nil, err
	}

	// The engine counts analyzed pages by record, so a collaborator
	// that breaks the one-record-per-URL contract would corrupt the
	// budget accounting. Treat it like any other analysis failure.
	if len(records) != len(batch) {
		return nil, fmt.Errorf("%w: analyzer returned %d records for %d URLs",
			analyzer.ErrAnalysis, len(records), len(batch))
	}

	return records, nil
}

// extractLinks invokes the link extractor with a per-call timeout.
func (s *scheduler) extractLinks(ctx context.Context, pageURL string) ([]analyzer.Link, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	return s.extractor.Extract(callCtx, pageURL, s.siteDomain)
}

// recordLink processes one discovered link: unparseable links are
// dropped, every parseable link is recorded in the inlink graph, and
// only exact same-domain links enter the frontier.
func (s *scheduler) recordLink(sourceURL string, link analyzer.Link) {
	target, err := url.Parse(link.URL)
	if err != nil {
		s.logger.Debug("dropping malformed link",
			"source", sourceURL,
			"link", link.URL,
		)
		return
	}

	// The graph records all edges, cross-domain included, so backlink
	// reporting stays complete even for targets we never crawl.
	s.graph.RecordEdge(link.URL, sourceURL, link.AnchorText)

	if target.Hostname() == s.siteDomain {
		s.frontier.Enqueue(link.URL)
	}
}
