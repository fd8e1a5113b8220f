// Package model defines the data structures shared across the crawler:
// analysis records, crawled pages with their inlink snapshots, session
// states, and progress reporting types.
//
// Design decision: Models are in a separate package to avoid circular
// dependencies. The crawler, analyzer, report, and database packages all
// consume these types without depending on each other.
//
// Models are plain data with minimal behavior. The exceptions are small
// derivations that belong with the data itself, such as CrawledPage.Issues,
// which turns raw metadata into SEO issue labels.
package model
