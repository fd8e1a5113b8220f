// Package database provides SQLite-based storage for crawl sessions.
//
// This package implements the CrawlDB, which stores:
//   - Crawl sessions with their terminal summaries
//   - Analyzed pages in emission order
//   - Observed inlink edges per page
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for our use case
//  4. WAL mode provides good concurrent read performance
package database
