package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// SiteResult is the outcome of crawling one seed in a batch run.
type SiteResult struct {
	// Seed is the seed URL this result belongs to.
	Seed string

	// Summary is the terminal crawl summary. On failure it carries
	// the error message; the pages analyzed before the failure are
	// still present in Pages.
	Summary *model.Summary

	// Pages is the result sequence of the crawl.
	Pages []model.CrawledPage
}

// BatchCrawler crawls multiple seed URLs concurrently, one controller
// per seed, with a bounded number of crawls in flight.
//
// Design decision: Concurrency lives here and only here. Each site's
// crawl stays strictly sequential inside its controller, which is what
// preserves the dedup and BFS ordering invariants; running whole sites
// in parallel shares nothing, so no further coordination is needed.
type BatchCrawler struct {
	// controllerFactory creates a fresh controller for each seed.
	// Controllers are single-use, so sharing one across seeds would
	// fail on the second crawl.
	controllerFactory func() *Controller

	// concurrency is the maximum number of crawls in flight.
	concurrency int

	// started, when set, is invoked as each seed's crawl begins.
	// It runs on the crawling goroutine; implementations that touch
	// shared state must synchronize.
	started func(index int, seed string, ctrl *Controller)

	logger *slog.Logger

	mu      sync.Mutex
	results []*SiteResult
}

// BatchOption configures a BatchCrawler.
type BatchOption func(*BatchCrawler)

// WithConcurrency sets the maximum number of concurrent site crawls.
// Default is 3: analyzer quotas, not CPU, are the practical limit.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchCrawler) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithStartHook registers a callback invoked as each crawl starts.
// The hook receives the seed's index, the seed URL, and the live
// controller, which observers can poll for progress.
func WithStartHook(hook func(index int, seed string, ctrl *Controller)) BatchOption {
	return func(b *BatchCrawler) {
		b.started = hook
	}
}

// WithBatchLogger sets a custom logger for batch-level events.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchCrawler) {
		b.logger = logger
	}
}

// NewBatchCrawler creates a batch crawler. controllerFactory is called
// once per seed to create that seed's controller.
func NewBatchCrawler(controllerFactory func() *Controller, opts ...BatchOption) *BatchCrawler {
	b := &BatchCrawler{
		controllerFactory: controllerFactory,
		concurrency:       3,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// CrawlAll crawls every seed and returns one result per seed, in input
// order. A failed crawl does not stop the others: the failure is
// recorded in that seed's summary. The returned error is non-nil only
// when the batch itself was cancelled.
func (b *BatchCrawler) CrawlAll(ctx context.Context, seeds []string) ([]*SiteResult, error) {
	b.logger.Info("starting batch crawl",
		"sites", len(seeds),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	b.results = make([]*SiteResult, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			ctrl := b.controllerFactory()
			if b.started != nil {
				b.started(i, seed, ctrl)
			}

			summary, err := ctrl.Crawl(ctx, seed)
			if err != nil {
				// Recorded in the summary; the other sites
				// keep crawling.
				b.logger.Warn("site crawl failed",
					"seed", seed,
					"error", err,
				)
			}

			b.mu.Lock()
			b.results[i] = &SiteResult{
				Seed:    seed,
				Summary: summary,
				Pages:   ctrl.Results(),
			}
			b.mu.Unlock()

			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch crawl complete",
		"sites", len(seeds),
		"elapsed", time.Since(start),
	)

	return b.results, err
}
