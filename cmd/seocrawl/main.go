// Package main provides the entry point for the seocrawl CLI.
//
// seocrawl is an AI-assisted SEO crawler for small business websites.
// It crawls a site breadth-first, analyzes each page with a generative
// model, and reports SEO issues (missing titles, thin content, broken
// pages, duplicate content).
//
// Usage:
//
//	seocrawl crawl https://example.com
//	seocrawl export --domain example.com --csv
//
// See --help for all available options.
package main

// main is the entry point for seocrawl.
func main() {
	Execute()
}
