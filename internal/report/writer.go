package report

import (
	"io"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// Writer defines the interface for report output.
// Implementations write crawl results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the crawl report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *model.Summary, pages []model.CrawledPage) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(summary *model.Summary, pages []model.CrawledPage) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary, pages)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// issueCounts aggregates per-page issue labels across the whole crawl.
// The returned slice preserves first-seen order so reports are stable.
func issueCounts(pages []model.CrawledPage) ([]string, map[string]int) {
	counts := make(map[string]int)
	var order []string

	for _, page := range pages {
		for _, issue := range page.Issues() {
			if _, seen := counts[issue]; !seen {
				order = append(order, issue)
			}
			counts[issue]++
		}
	}

	return order, counts
}
