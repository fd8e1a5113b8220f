// Package report generates crawl reports in multiple output formats.
//
// Supported formats:
//   - Simple: human-readable text for terminal display
//   - CSV: one row per page in the fixed export column order; a CSV
//     export can be fed back in as an exclusion list
//   - JSON: structured output for tool integration
//   - Markdown: GitHub-flavored markdown for documentation and sharing
package report
