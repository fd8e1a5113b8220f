package crawler

import "github.com/baawa1/AI-SEO-Web-Crawler/internal/model"

// LinkGraph is the inlink graph: for each target URL, the ordered list of
// incoming edges observed during the crawl.
//
// The graph grows monotonically and is never pruned. Duplicate edges
// (same source and anchor) are kept, and cross-domain targets are
// recorded even though they are never enqueued: the backlink report is
// about what links where, not about what gets crawled.
//
// Like the Frontier, the graph is mutated from a single logical task and
// carries no locking of its own.
type LinkGraph struct {
	// edges maps a target URL to its inlinks in discovery order.
	edges map[string][]model.Inlink
}

// NewLinkGraph creates an empty link graph.
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{
		edges: make(map[string][]model.Inlink),
	}
}

// RecordEdge appends one observed edge to the target's inlink list,
// creating the list if this is the first edge for the target.
func (g *LinkGraph) RecordEdge(target, source, anchorText string) {
	g.edges[target] = append(g.edges[target], model.Inlink{
		SourceURL:  source,
		AnchorText: anchorText,
	})
}

// EdgesFor returns a snapshot of the inlinks recorded for target so far.
// The returned slice is a copy; edges recorded later do not appear in it.
// A target with no recorded edges yields an empty, non-nil slice.
func (g *LinkGraph) EdgesFor(target string) []model.Inlink {
	edges := g.edges[target]
	snapshot := make([]model.Inlink, len(edges))
	copy(snapshot, edges)
	return snapshot
}

// TargetCount returns the number of distinct targets with at least one
// recorded edge.
func (g *LinkGraph) TargetCount() int {
	return len(g.edges)
}
