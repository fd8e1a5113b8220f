// Package crawler implements the crawl orchestration engine: a budgeted
// breadth-first traversal of a site that records which pages link to
// which.
//
// # Architecture
//
//   - Frontier: strict FIFO queue of discovered URLs plus the visited
//     registry. One membership check serves deduplication and exclusion.
//   - LinkGraph: target URL -> ordered inlink list, grown monotonically.
//   - scheduler: processes one bounded batch per call against the
//     external analyzer and extractor.
//   - Controller: the state machine driving batches to completion,
//     owning all session state.
//   - BatchCrawler: bounded-concurrency fan-out over multiple seeds.
//
// # Concurrency model
//
// One crawl is one logical task. The frontier, registry, and graph are
// mutated only from that task and carry no locks; the controller exposes
// mutex-guarded snapshots (Progress, Results) for observers. Suspension
// points are the analyzer call, each extractor call, and the inter-batch
// delay; the context is honored at each and every external call runs
// under a per-call timeout.
//
// # Error policy
//
// Any analyzer or extractor failure is fatal to the crawl: the session
// transitions to Failed, no retry is attempted, and pages emitted before
// the failure remain visible. The only locally recovered error is a
// discovered link that fails URL parsing, which is dropped.
package crawler
