package report

import (
	"encoding/json"
	"io"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is embedded in the output for traceability; empty means
	// omit the field.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// WithVersion embeds the crawler version in the report output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the top-level JSON document: the crawl summary plus the
// full page list.
//
// Design decision: We wrap summary and pages in one document rather than
// emitting them separately because downstream tools want a single
// self-describing file per crawl.
type JSONReport struct {
	// Version is the crawler version that generated this report.
	Version string `json:"version,omitempty"`

	// Summary describes the crawl session outcome.
	Summary *model.Summary `json:"summary"`

	// Pages is the full result sequence in emission order.
	Pages []model.CrawledPage `json:"pages"`
}

// Write outputs the crawl report as a single JSON document.
func (w *JSONWriter) Write(summary *model.Summary, pages []model.CrawledPage) (int, error) {
	// An empty crawl still yields a valid document with "pages": []
	if pages == nil {
		pages = []model.CrawledPage{}
	}

	doc := JSONReport{
		Version: w.version,
		Summary: summary,
		Pages:   pages,
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(doc, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
