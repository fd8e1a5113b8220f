package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/analyzer"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// Default crawl settings.
const (
	// DefaultBatchSize is the number of URLs analyzed per batch.
	// Five keeps a single analyzer call small enough for reliable
	// structured output while amortizing the per-call overhead.
	DefaultBatchSize = 5

	// DefaultTargetPages is the page budget when none is configured.
	DefaultTargetPages = 50

	// DefaultInterBatchDelay is the fixed pause between batches.
	// A simple fixed-interval rate limiter, not adaptive.
	DefaultInterBatchDelay = 1 * time.Second

	// DefaultCallTimeout bounds each analyzer/extractor invocation.
	DefaultCallTimeout = 2 * time.Minute
)

// Controller drives one crawl session from seed to completion. It owns
// the session state exclusively: the frontier, the visited registry, and
// the inlink graph are mutated only from the task running Crawl.
//
// The lifecycle is Idle -> Initializing -> Running -> Completed, with
// Running -> Failed on the first collaborator error. Observers read
// progress through Progress and Results, which return snapshots and are
// safe to call from other goroutines while the crawl runs.
//
// Design decision: A controller is single-use. Session state (visited
// registry, inlink graph, results) has no meaningful reset semantics;
// reusing it across crawls would silently carry dedup state from one
// site to the next. Constructing a controller is cheap, so batch callers
// build one per seed.
type Controller struct {
	pageAnalyzer  analyzer.PageAnalyzer
	linkExtractor analyzer.LinkExtractor

	batchSize   int
	targetPages int
	delay       time.Duration
	callTimeout time.Duration
	exclusions  []string
	logger      *slog.Logger

	// mu guards the observable session state below. The crawl task is
	// the only writer; readers are progress observers.
	mu         sync.Mutex
	state      model.State
	results    []model.CrawledPage
	discovered int
	analyzed   int
}

// Option configures a Controller.
type Option func(*Controller)

// WithBatchSize sets the number of URLs analyzed per batch.
func WithBatchSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithTargetPages sets the page budget for the session.
func WithTargetPages(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.targetPages = n
		}
	}
}

// WithInterBatchDelay sets the fixed pause between batches.
// Zero disables the delay (useful in tests).
func WithInterBatchDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithCallTimeout bounds each external collaborator invocation.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// WithExclusions pre-seeds the visited registry with URLs that must
// never be crawled, the seed included.
func WithExclusions(urls []string) Option {
	return func(c *Controller) {
		c.exclusions = urls
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a crawl controller using the given collaborators.
func NewController(pageAnalyzer analyzer.PageAnalyzer, linkExtractor analyzer.LinkExtractor, opts ...Option) *Controller {
	c := &Controller{
		pageAnalyzer:  pageAnalyzer,
		linkExtractor: linkExtractor,
		batchSize:     DefaultBatchSize,
		targetPages:   DefaultTargetPages,
		delay:         DefaultInterBatchDelay,
		callTimeout:   DefaultCallTimeout,
		state:         model.StateIdle,
		results:       make([]model.CrawledPage, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Crawl runs the session to a terminal state and returns its summary.
//
// The summary is returned alongside the error on failure: pages analyzed
// before the failure stay visible through Results, and the summary's
// ErrorMessage carries the failure reason.
func (c *Controller) Crawl(ctx context.Context, seedURL string) (*model.Summary, error) {
	start := time.Now()

	c.mu.Lock()
	if c.state != model.StateIdle {
		c.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	c.state = model.StateInitializing
	c.mu.Unlock()

	siteDomain, err := resolveSiteDomain(seedURL)
	if err != nil {
		c.setState(model.StateFailed)
		return c.summary(seedURL, "", start, err), err
	}

	frontier := NewFrontier()
	graph := NewLinkGraph()
	for _, excluded := range c.exclusions {
		frontier.Exclude(excluded)
	}
	// The seed passes through the same gate as any discovered link:
	// an excluded seed simply never enters the queue and the crawl
	// completes empty.
	frontier.Enqueue(seedURL)

	sched := &scheduler{
		frontier:    frontier,
		graph:       graph,
		analyzer:    c.pageAnalyzer,
		extractor:   c.linkExtractor,
		siteDomain:  siteDomain,
		contextURL:  seedURL,
		batchSize:   c.batchSize,
		callTimeout: c.callTimeout,
		logger:      c.logger,
	}

	c.setState(model.StateRunning)
	c.logger.Info("crawl started",
		"seed", seedURL,
		"site_domain", siteDomain,
		"target_pages", c.targetPages,
		"batch_size", c.batchSize,
	)

	analyzed := 0
	for {
		c.publishProgress(frontier.VisitedCount(), analyzed)

		if frontier.Len() == 0 || analyzed >= c.targetPages {
			break
		}

		// Suspension point: between batches.
		if err := ctx.Err(); err != nil {
			c.setState(model.StateFailed)
			return c.summary(seedURL, siteDomain, start, err), err
		}

		pages, err := sched.processBatch(ctx, analyzed, c.targetPages)

		// Pages emitted before a failure remain part of the result
		// sequence, so append before looking at the error.
		analyzed += len(pages)
		c.appendResults(pages, frontier.VisitedCount(), analyzed)

		if err != nil {
			c.setState(model.StateFailed)
			c.logger.Error("crawl aborted",
				"seed", seedURL,
				"analyzed", analyzed,
				"error", err,
			)
			return c.summary(seedURL, siteDomain, start, err), err
		}

		c.logger.Debug("batch completed",
			"analyzed", analyzed,
			"queued", frontier.Len(),
			"discovered", frontier.VisitedCount(),
		)

		// Fixed inter-batch delay, skipped when no work remains.
		if c.delay > 0 && frontier.Len() > 0 && analyzed < c.targetPages {
			select {
			case <-ctx.Done():
				c.setState(model.StateFailed)
				return c.summary(seedURL, siteDomain, start, ctx.Err()), ctx.Err()
			case <-time.After(c.delay):
			}
		}
	}

	c.setState(model.StateCompleted)
	summary := c.summary(seedURL, siteDomain, start, nil)
	c.logger.Info("crawl completed",
		"seed", seedURL,
		"analyzed", summary.Analyzed,
		"discovered", summary.Discovered,
		"elapsed", summary.Elapsed,
	)

	return summary, nil
}

// Results returns a snapshot of the pages emitted so far, in emission
// order. Each batch's pages become visible before the next batch starts.
func (c *Controller) Results() []model.CrawledPage {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]model.CrawledPage, len(c.results))
	copy(snapshot, c.results)
	return snapshot
}

// Progress returns a read-only snapshot of the session counters.
func (c *Controller) Progress() model.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	return model.Progress{
		State:      c.state,
		Discovered: c.discovered,
		Analyzed:   c.analyzed,
		Target:     c.targetPages,
	}
}

// State returns the current session state.
func (c *Controller) State() model.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// setState transitions the session state.
func (c *Controller) setState(state model.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// publishProgress updates the observable counters.
func (c *Controller) publishProgress(discovered, analyzed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discovered = discovered
	c.analyzed = analyzed
}

// appendResults appends a batch's pages and updates the counters in one
// critical section, so observers never see pages without the matching
// progress.
func (c *Controller) appendResults(pages []model.CrawledPage, discovered, analyzed int) {
	if len(pages) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, pages...)
	c.discovered = discovered
	c.analyzed = analyzed
}

// summary builds the terminal summary for the session.
func (c *Controller) summary(seedURL, siteDomain string, start time.Time, err error) *model.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &model.Summary{
		SeedURL:    seedURL,
		SiteDomain: siteDomain,
		State:      c.state,
		Analyzed:   c.analyzed,
		Discovered: c.discovered,
		Elapsed:    time.Since(start),
	}
	if err != nil {
		s.ErrorMessage = err.Error()
	}

	return s
}

// resolveSiteDomain extracts the same-domain filter hostname from the
// seed URL. Anything that is not an absolute http(s) URL with a host is
// rejected; url.Parse alone accepts far too much.
func resolveSiteDomain(seedURL string) (string, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSeedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSeedURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidSeedURL)
	}

	return u.Hostname(), nil
}
