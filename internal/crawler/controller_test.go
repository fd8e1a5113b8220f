package crawler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/analyzer"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// fakeAnalyzer answers every URL with a configurable status (200 by
// default) and records the batches it was called with.
type fakeAnalyzer struct {
	status      map[string]int
	batches     [][]string
	failOnBatch int // 1-based batch index to fail on, 0 = never
}

func (f *fakeAnalyzer) Analyze(_ context.Context, urls []string, _ string) ([]model.AnalysisRecord, error) {
	f.batches = append(f.batches, slices.Clone(urls))
	if f.failOnBatch > 0 && len(f.batches) == f.failOnBatch {
		return nil, fmt.Errorf("%w: undecodable response", analyzer.ErrAnalysis)
	}

	records := make([]model.AnalysisRecord, 0, len(urls))
	for _, u := range urls {
		status, ok := f.status[u]
		if !ok {
			status = 200
		}
		records = append(records, model.AnalysisRecord{URL: u, Status: status})
	}
	return records, nil
}

// fakeExtractor serves a fixed outlink map and records which pages it
// was asked about.
type fakeExtractor struct {
	links      map[string][]analyzer.Link
	calls      []string
	failOnPage string
}

func (f *fakeExtractor) Extract(_ context.Context, pageURL, _ string) ([]analyzer.Link, error) {
	f.calls = append(f.calls, pageURL)
	if f.failOnPage != "" && pageURL == f.failOnPage {
		return nil, fmt.Errorf("%w: service unavailable", analyzer.ErrExtraction)
	}
	return f.links[pageURL], nil
}

// sameDomainLinks builds n distinct outlinks under example.com.
func sameDomainLinks(n int) []analyzer.Link {
	links := make([]analyzer.Link, 0, n)
	for i := range n {
		links = append(links, analyzer.Link{
			URL:        fmt.Sprintf("https://example.com/page-%d", i),
			AnchorText: fmt.Sprintf("Page %d", i),
		})
	}
	return links
}

// resultURLs extracts the URLs of a result sequence.
func resultURLs(pages []model.CrawledPage) []string {
	urls := make([]string, 0, len(pages))
	for _, p := range pages {
		urls = append(urls, p.URL)
	}
	return urls
}

// TestControllerBudget tests budget respect and batch truncation on a
// site where the seed links to more pages than the budget allows.
func TestControllerBudget(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	fa := &fakeAnalyzer{}
	fe := &fakeExtractor{links: map[string][]analyzer.Link{seed: sameDomainLinks(15)}}

	ctrl := NewController(fa, fe,
		WithBatchSize(5),
		WithTargetPages(10),
		WithInterBatchDelay(0),
	)

	summary, err := ctrl.Crawl(context.Background(), seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Analyzed != 10 {
		t.Errorf("expected exactly 10 analyzed pages, got %d", summary.Analyzed)
	}
	if summary.State != model.StateCompleted {
		t.Errorf("expected completed state, got %s", summary.State)
	}
	if got := len(ctrl.Results()); got != 10 {
		t.Errorf("expected 10 results, got %d", got)
	}

	// The frontier starts with the seed alone, so the batch sizes are
	// 1 (seed), then 5, then 4: the final batch is truncated to land
	// exactly on the budget.
	wantSizes := []int{1, 5, 4}
	gotSizes := make([]int, 0, len(fa.batches))
	for _, b := range fa.batches {
		gotSizes = append(gotSizes, len(b))
	}
	if !slices.Equal(gotSizes, wantSizes) {
		t.Errorf("expected batch sizes %v, got %v", wantSizes, gotSizes)
	}
}

// TestControllerBFSOrdering tests that pages are analyzed in discovery
// order across batches.
func TestControllerBFSOrdering(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	fa := &fakeAnalyzer{}
	fe := &fakeExtractor{links: map[string][]analyzer.Link{
		seed: {
			{URL: "https://example.com/a", AnchorText: "A"},
			{URL: "https://example.com/b", AnchorText: "B"},
			{URL: "https://example.com/c", AnchorText: "C"},
		},
		"https://example.com/a": {
			{URL: "https://example.com/d", AnchorText: "D"},
			// Rediscovery of b must not move it in the queue.
			{URL: "https://example.com/b", AnchorText: "B again"},
		},
	}}

	ctrl := NewController(fa, fe,
		WithBatchSize(2),
		WithTargetPages(5),
		WithInterBatchDelay(0),
	)

	if _, err := ctrl.Crawl(context.Background(), seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		seed,
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
		"https://example.com/d",
	}
	if got := resultURLs(ctrl.Results()); !slices.Equal(got, want) {
		t.Errorf("expected BFS order %v, got %v", want, got)
	}
}

// TestControllerDomainRestriction tests the exact-hostname enqueue filter
// and cross-domain edge recording.
func TestControllerDomainRestriction(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	fa := &fakeAnalyzer{}
	fe := &fakeExtractor{links: map[string][]analyzer.Link{
		seed: {
			{URL: "https://example.com/on-domain", AnchorText: "stay"},
			{URL: "https://blog.example.com/post", AnchorText: "subdomain"},
			{URL: "https://other.com/", AnchorText: "elsewhere"},
		},
	}}

	ctrl := NewController(fa, fe,
		WithBatchSize(5),
		WithTargetPages(10),
		WithInterBatchDelay(0),
	)

	if _, err := ctrl.Crawl(context.Background(), seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, u := range resultURLs(ctrl.Results()) {
		if strings.Contains(u, "blog.example.com") || strings.Contains(u, "other.com") {
			t.Errorf("off-domain URL was crawled: %s", u)
		}
	}
	if got := len(ctrl.Results()); got != 2 {
		t.Errorf("expected seed plus one on-domain page, got %d results", got)
	}
}

// TestControllerExclusion tests that excluded URLs are never crawled,
// the seed included.
func TestControllerExclusion(t *testing.T) {
	t.Parallel()

	t.Run("excluded link never enters the frontier", func(t *testing.T) {
		t.Parallel()

		seed := "https://example.com"
		fa := &fakeAnalyzer{}
		fe := &fakeExtractor{links: map[string][]analyzer.Link{
			seed: {
				{URL: "https://example.com/a", AnchorText: "excluded"},
				{URL: "https://example.com/b", AnchorText: "allowed"},
			},
			"https://example.com/b": {
				// Linked again from a second page; still excluded.
				{URL: "https://example.com/a", AnchorText: "excluded again"},
			},
		}}

		ctrl := NewController(fa, fe,
			WithBatchSize(5),
			WithTargetPages(10),
			WithInterBatchDelay(0),
			WithExclusions([]string{"https://example.com/a"}),
		)

		if _, err := ctrl.Crawl(context.Background(), seed); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if slices.Contains(resultURLs(ctrl.Results()), "https://example.com/a") {
			t.Error("excluded URL appeared in results")
		}
		for _, batch := range fa.batches {
			if slices.Contains(batch, "https://example.com/a") {
				t.Error("excluded URL was sent to the analyzer")
			}
		}
	})

	t.Run("excluded seed completes empty", func(t *testing.T) {
		t.Parallel()

		seed := "https://example.com"
		fa := &fakeAnalyzer{}
		fe := &fakeExtractor{}

		ctrl := NewController(fa, fe,
			WithInterBatchDelay(0),
			WithExclusions([]string{seed}),
		)

		summary, err := ctrl.Crawl(context.Background(), seed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.State != model.StateCompleted {
			t.Errorf("expected completed state, got %s", summary.State)
		}
		if summary.Analyzed != 0 {
			t.Errorf("expected no pages analyzed, got %d", summary.Analyzed)
		}
		if len(fa.batches) != 0 {
			t.Errorf("analyzer must not be called, got %d batches", len(fa.batches))
		}
	})
}

// TestControllerAnalyzerFailure tests the fatal error boundary: a decode
// failure on batch 2 keeps batch 1's pages and stops the crawl.
func TestControllerAnalyzerFailure(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	fa := &fakeAnalyzer{failOnBatch: 2}
	fe := &fakeExtractor{links: map[string][]analyzer.Link{seed: sameDomainLinks(8)}}

	ctrl := NewController(fa, fe,
		WithBatchSize(5),
		WithTargetPages(20),
		WithInterBatchDelay(0),
	)

	summary, err := ctrl.Crawl(context.Background(), seed)
	if !errors.Is(err, analyzer.ErrAnalysis) {
		t.Fatalf("expected ErrAnalysis, got %v", err)
	}

	if summary.State != model.StateFailed {
		t.Errorf("expected failed state, got %s", summary.State)
	}
	if summary.ErrorMessage == "" {
		t.Error("expected a failure reason in the summary")
	}
	// Batch 1 was the seed alone; its page stays visible.
	if got := resultURLs(ctrl.Results()); !slices.Equal(got, []string{seed}) {
		t.Errorf("expected batch 1 results only, got %v", got)
	}
	if len(fa.batches) != 2 {
		t.Errorf("expected no batch after the failure, got %d batches", len(fa.batches))
	}
}

// TestControllerExtractionFailure tests that an extractor failure aborts
// the crawl but keeps the failing batch's pages.
func TestControllerExtractionFailure(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	fa := &fakeAnalyzer{}
	fe := &fakeExtractor{
		links:      map[string][]analyzer.Link{seed: sameDomainLinks(3)},
		failOnPage: seed,
	}

	ctrl := NewController(fa, fe,
		WithBatchSize(5),
		WithTargetPages(10),
		WithInterBatchDelay(0),
	)

	summary, err := ctrl.Crawl(context.Background(), seed)
	if !errors.Is(err, analyzer.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if summary.State != model.StateFailed {
		t.Errorf("expected failed state, got %s", summary.State)
	}
	// The seed's analysis succeeded before extraction failed.
	if got := resultURLs(ctrl.Results()); !slices.Equal(got, []string{seed}) {
		t.Errorf("expected the seed page in results, got %v", got)
	}
}

// TestControllerErrorPageSkipsExtraction tests that no link extraction
// happens for pages with status >= 400.
func TestControllerErrorPageSkipsExtraction(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	dead := "https://example.com/dead"
	fa := &fakeAnalyzer{status: map[string]int{dead: 404}}
	fe := &fakeExtractor{links: map[string][]analyzer.Link{
		seed: {{URL: dead, AnchorText: "dead"}},
		dead: {{URL: "https://example.com/ghost", AnchorText: "ghost"}},
	}}

	ctrl := NewController(fa, fe,
		WithBatchSize(5),
		WithTargetPages(10),
		WithInterBatchDelay(0),
	)

	if _, err := ctrl.Crawl(context.Background(), seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if slices.Contains(fe.calls, dead) {
		t.Error("extractor was called for a 404 page")
	}
	if slices.Contains(resultURLs(ctrl.Results()), "https://example.com/ghost") {
		t.Error("a 404 page contributed frontier entries")
	}
}

// TestControllerInlinkSnapshot tests inlink snapshot timing: edges known
// at emission are attached, later edges are not.
func TestControllerInlinkSnapshot(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	fa := &fakeAnalyzer{}
	fe := &fakeExtractor{links: map[string][]analyzer.Link{
		seed: {
			{URL: "https://example.com/a", AnchorText: "to a"},
			{URL: "https://example.com/b", AnchorText: "to b"},
		},
		"https://example.com/a": {
			// A second edge into b, recorded while b is queued.
			{URL: "https://example.com/b", AnchorText: "a to b"},
		},
		"https://example.com/b": {
			// A late edge into the already-emitted seed.
			{URL: seed, AnchorText: "back home"},
		},
	}}

	// Target 4 leaves budget after b, so b's back-link to the seed is
	// recorded after the seed was already emitted.
	ctrl := NewController(fa, fe,
		WithBatchSize(1),
		WithTargetPages(4),
		WithInterBatchDelay(0),
	)

	if _, err := ctrl.Crawl(context.Background(), seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := ctrl.Results()
	if len(results) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(results))
	}

	// The seed was emitted before any edge pointed at it; the late
	// back-link from b is never attached retroactively.
	if len(results[0].Inlinks) != 0 {
		t.Errorf("expected no inlinks on the seed, got %v", results[0].Inlinks)
	}

	// Page b was emitted after both edges into it were recorded.
	b := results[2]
	if b.URL != "https://example.com/b" {
		t.Fatalf("expected b third, got %s", b.URL)
	}
	if len(b.Inlinks) != 2 {
		t.Fatalf("expected 2 inlinks on b, got %v", b.Inlinks)
	}
	if b.Inlinks[0].SourceURL != seed || b.Inlinks[1].SourceURL != "https://example.com/a" {
		t.Errorf("unexpected inlink sources: %+v", b.Inlinks)
	}
}

// TestControllerLoadShedding tests that link extraction stops once the
// frontier holds more than 1.5x the remaining budget.
func TestControllerLoadShedding(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	fa := &fakeAnalyzer{}
	fe := &fakeExtractor{links: map[string][]analyzer.Link{seed: sameDomainLinks(30)}}

	ctrl := NewController(fa, fe,
		WithBatchSize(5),
		WithTargetPages(10),
		WithInterBatchDelay(0),
	)

	if _, err := ctrl.Crawl(context.Background(), seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// After the seed floods the frontier with 30 links, every later
	// page sees an oversupplied frontier and skips extraction.
	if !slices.Equal(fe.calls, []string{seed}) {
		t.Errorf("expected extraction for the seed only, got %v", fe.calls)
	}
}

// TestControllerMalformedLink tests that an unparseable discovered link
// is dropped without failing the crawl.
func TestControllerMalformedLink(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	fa := &fakeAnalyzer{}
	fe := &fakeExtractor{links: map[string][]analyzer.Link{
		seed: {
			{URL: "https://example.com/ok", AnchorText: "fine"},
			{URL: "https://exa mple.com/\x7f", AnchorText: "broken"},
		},
	}}

	ctrl := NewController(fa, fe,
		WithBatchSize(5),
		WithTargetPages(10),
		WithInterBatchDelay(0),
	)

	summary, err := ctrl.Crawl(context.Background(), seed)
	if err != nil {
		t.Fatalf("expected malformed link to be recovered locally, got %v", err)
	}
	if summary.Analyzed != 2 {
		t.Errorf("expected seed plus the valid link, got %d pages", summary.Analyzed)
	}
}

// TestControllerInvalidSeed tests seed validation.
func TestControllerInvalidSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		seed string
	}{
		{name: "not a URL", seed: "://nope"},
		{name: "no scheme", seed: "example.com"},
		{name: "unsupported scheme", seed: "ftp://example.com"},
		{name: "empty", seed: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := NewController(&fakeAnalyzer{}, &fakeExtractor{}, WithInterBatchDelay(0))
			summary, err := ctrl.Crawl(context.Background(), tt.seed)
			if !errors.Is(err, ErrInvalidSeedURL) {
				t.Fatalf("expected ErrInvalidSeedURL, got %v", err)
			}
			if summary.State != model.StateFailed {
				t.Errorf("expected failed state, got %s", summary.State)
			}
		})
	}
}

// TestControllerSingleUse tests that a controller cannot be reused.
func TestControllerSingleUse(t *testing.T) {
	t.Parallel()

	ctrl := NewController(&fakeAnalyzer{}, &fakeExtractor{}, WithInterBatchDelay(0))
	if _, err := ctrl.Crawl(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ctrl.Crawl(context.Background(), "https://example.com"); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

// TestControllerCancellation tests that cancelling the context stops the
// crawl at the next suspension point.
func TestControllerCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := NewController(&fakeAnalyzer{}, &fakeExtractor{}, WithInterBatchDelay(0))
	summary, err := ctrl.Crawl(ctx, "https://example.com")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary.State != model.StateFailed {
		t.Errorf("expected failed state, got %s", summary.State)
	}
	if summary.Analyzed != 0 {
		t.Errorf("expected no pages analyzed, got %d", summary.Analyzed)
	}
}

// TestControllerProgress tests the observable progress snapshot.
func TestControllerProgress(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	fa := &fakeAnalyzer{}
	fe := &fakeExtractor{links: map[string][]analyzer.Link{seed: sameDomainLinks(4)}}

	ctrl := NewController(fa, fe,
		WithBatchSize(5),
		WithTargetPages(5),
		WithInterBatchDelay(0),
	)

	if got := ctrl.Progress(); got.State != model.StateIdle {
		t.Errorf("expected idle before start, got %s", got.State)
	}

	if _, err := ctrl.Crawl(context.Background(), seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	progress := ctrl.Progress()
	if progress.State != model.StateCompleted {
		t.Errorf("expected completed state, got %s", progress.State)
	}
	if progress.Analyzed != 5 {
		t.Errorf("expected 5 analyzed, got %d", progress.Analyzed)
	}
	// Seed plus four discovered links.
	if progress.Discovered != 5 {
		t.Errorf("expected 5 discovered, got %d", progress.Discovered)
	}
	if progress.Target != 5 {
		t.Errorf("expected target 5, got %d", progress.Target)
	}
}

// TestControllerDedup tests the dedup invariant: visited count bounds the
// result count even with heavy re-linking.
func TestControllerDedup(t *testing.T) {
	t.Parallel()

	seed := "https://example.com"
	// Every page links back to every other page.
	pages := []string{seed, "https://example.com/a", "https://example.com/b"}
	links := make(map[string][]analyzer.Link)
	for _, from := range pages {
		for _, to := range pages {
			if from != to {
				links[from] = append(links[from], analyzer.Link{URL: to, AnchorText: "x"})
			}
		}
	}

	fa := &fakeAnalyzer{}
	fe := &fakeExtractor{links: links}
	ctrl := NewController(fa, fe,
		WithBatchSize(2),
		WithTargetPages(10),
		WithInterBatchDelay(0),
	)

	summary, err := ctrl.Crawl(context.Background(), seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Analyzed != 3 {
		t.Errorf("expected each page analyzed once, got %d", summary.Analyzed)
	}
	seen := make(map[string]int)
	for _, u := range resultURLs(ctrl.Results()) {
		seen[u]++
		if seen[u] > 1 {
			t.Errorf("URL analyzed more than once: %s", u)
		}
	}
	if summary.Discovered < summary.Analyzed {
		t.Errorf("visited (%d) must bound results (%d)", summary.Discovered, summary.Analyzed)
	}
}
