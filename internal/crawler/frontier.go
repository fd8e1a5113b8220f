package crawler

// Frontier is the crawl frontier: a strict FIFO queue of discovered but
// not yet analyzed URLs, paired with the visited registry that guards
// against re-discovery.
//
// Design decision: One structure owns both the queue and the registry
// because a single membership check serves two purposes:
// 1. Deduplication: a URL is enqueued at most once, ever
// 2. Exclusion: pre-seeding the registry without enqueueing makes
//    excluded URLs look "already seen" to every later discovery
// Splitting them apart would force every caller to keep the two in sync.
//
// URLs are compared by exact string match. The frontier performs no
// normalization; producers are responsible for the form of their URLs.
//
// The Frontier is not safe for concurrent use. The crawl engine mutates
// it from a single logical task only.
type Frontier struct {
	// queue holds discovered URLs in arrival order.
	queue []string

	// visited is the registry of every URL ever accepted or excluded.
	visited map[string]bool
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		queue:   make([]string, 0),
		visited: make(map[string]bool),
	}
}

// Exclude registers a URL in the visited registry without enqueueing it.
// The URL then fails every later Enqueue, which is how exclusion lists
// are enforced.
func (f *Frontier) Exclude(url string) {
	f.visited[url] = true
}

// Enqueue accepts a URL for analysis. It returns false, without side
// effects, if the URL is already registered (previously enqueued or
// excluded). Otherwise it registers the URL and appends it to the tail.
func (f *Frontier) Enqueue(url string) bool {
	if f.visited[url] {
		return false
	}
	f.visited[url] = true
	f.queue = append(f.queue, url)
	return true
}

// DequeueBatch removes and returns up to n URLs from the head of the
// queue, preserving arrival order. Strict FIFO dequeueing is what makes
// the crawl breadth-first.
func (f *Frontier) DequeueBatch(n int) []string {
	if n <= 0 || len(f.queue) == 0 {
		return nil
	}
	if n > len(f.queue) {
		n = len(f.queue)
	}

	batch := make([]string, n)
	copy(batch, f.queue[:n])
	f.queue = f.queue[n:]

	return batch
}

// Len returns the number of URLs waiting in the queue.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// VisitedCount returns the number of URLs ever registered, including
// pre-seeded exclusions.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}
