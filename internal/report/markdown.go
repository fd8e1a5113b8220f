package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing audit results.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// titler upper-cases issue labels for display ("missing title" ->
	// "Missing Title").
	titler cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}
}

// Write outputs the crawl report in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary, pages []model.CrawledPage) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeIssueSummary(md, pages)
	w.writePages(md, pages)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("SEO Crawl Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + summary.SeedURL + "`"},
			{"Site Domain", "`" + summary.SiteDomain + "`"},
			{"Pages Analyzed", strconv.Itoa(summary.Analyzed)},
			{"URLs Discovered", strconv.Itoa(summary.Discovered)},
			{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
			{"Status", w.statusText(summary)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on the terminal state.
func (w *MarkdownWriter) statusText(summary *model.Summary) string {
	if summary.State == model.StateFailed {
		return "❌ Failed - " + summary.ErrorMessage
	}
	return "✅ Completed"
}

// writeIssueSummary writes the aggregated issue counts with a pie chart.
func (w *MarkdownWriter) writeIssueSummary(md *markdown.Markdown, pages []model.CrawledPage) {
	md.H2("Issue Summary")
	md.PlainText("")

	order, counts := issueCounts(pages)
	if len(order) == 0 {
		md.Tip("No SEO issues detected across the crawled pages.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(order))
	total := 0
	for _, issue := range order {
		rows = append(rows, []string{w.titler.String(issue), strconv.Itoa(counts[issue])})
		total += counts[issue]
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(total) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Issue", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, order, counts)
	w.writeAlert(md, pages)
}

// writePieChart writes a mermaid pie chart of the issue distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, order []string, counts map[string]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Distribution"),
		piechart.WithShowData(true),
	)

	for _, issue := range order {
		chart.LabelAndIntValue(w.titler.String(issue), uint64(counts[issue]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert scaled to how broken the site is.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, pages []model.CrawledPage) {
	broken := 0
	for _, page := range pages {
		if !page.IsSuccess() {
			broken++
		}
	}

	switch {
	case broken > 0:
		md.Warningf(
			"%d of %d crawled pages returned an error status. Broken pages waste crawl budget and lose link equity.",
			broken, len(pages),
		)
	default:
		md.Note("All crawled pages returned a success status.")
	}
	md.PlainText("")
}

// writePages writes the per-page detail table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, pages []model.CrawledPage) {
	md.H2("Pages")
	md.PlainText("")

	if len(pages) == 0 {
		md.PlainText("No pages were analyzed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(pages))
	for _, page := range pages {
		title := page.Title
		if title == "" {
			title = "-"
		}

		rows = append(rows, []string{
			truncateString(page.URL, 60),
			strconv.Itoa(page.Status),
			truncateString(title, 40),
			strconv.Itoa(page.WordCount),
			strconv.Itoa(len(page.Inlinks)),
			strconv.Itoa(len(page.Issues())),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Title", "Words", "Inlinks", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
