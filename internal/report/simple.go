package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-page listing in addition to the summary.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-page details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl report in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary, pages []model.CrawledPage) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeIssues(&sb, pages)
	if w.verbose {
		w.writePages(&sb, pages)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SEO CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Seed URL:        %s\n", summary.SeedURL)
	fmt.Fprintf(sb, "Site Domain:     %s\n", summary.SiteDomain)
	fmt.Fprintf(sb, "Pages Analyzed:  %d\n", summary.Analyzed)
	fmt.Fprintf(sb, "URLs Discovered: %d\n", summary.Discovered)
	fmt.Fprintf(sb, "Elapsed:         %s\n", summary.Elapsed)

	if summary.State == model.StateFailed {
		fmt.Fprintf(sb, "Status:          FAILED - %s\n", summary.ErrorMessage)
	} else {
		sb.WriteString("Status:          Completed\n")
	}

	sb.WriteString("\n")
}

// writeIssues writes the aggregated issue counts.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, pages []model.CrawledPage) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ISSUE SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	order, counts := issueCounts(pages)
	if len(order) == 0 {
		sb.WriteString("  No SEO issues detected\n\n")
		return
	}

	for _, issue := range order {
		fmt.Fprintf(sb, "  [!] %-30s %d\n", issue, counts[issue])
	}
	sb.WriteString("\n")
}

// writePages writes the per-page detail listing.
func (w *SimpleWriter) writePages(sb *strings.Builder, pages []model.CrawledPage) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, page := range pages {
		fmt.Fprintf(sb, "  [%d] %s\n", page.Status, page.URL)
		if page.Title != "" {
			fmt.Fprintf(sb, "      Title: %s\n", page.Title)
		}
		if issues := page.Issues(); len(issues) > 0 {
			fmt.Fprintf(sb, "      Issues: %s\n", strings.Join(issues, ", "))
		}
		fmt.Fprintf(sb, "      Inlinks: %d\n", len(page.Inlinks))
	}
	sb.WriteString("\n")
}
