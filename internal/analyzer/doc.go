// Package analyzer defines the crawl engine's external collaborators and
// provides two implementations of them.
//
// # Contracts
//
// The engine depends on two narrow interfaces:
//
//   - PageAnalyzer turns a batch of URLs into SEO analysis records,
//     one per URL, in input order.
//   - LinkExtractor lists the outbound links of a single page.
//
// The engine treats both as opaque: it never fetches or parses live pages
// itself. Any failure from either collaborator aborts the whole crawl.
//
// # Implementations
//
//   - Gemini calls the Google generative language API and decodes its
//     strict-JSON answers. This is the production path.
//   - Static serves preloaded in-memory pages, parsing them with
//     golang.org/x/net/html. It backs tests and offline dry runs.
package analyzer
