package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// csvColumns is the fixed column order of the CSV export. Exclusion
// parsing relies on the URL being the first column, so the order is part
// of the format contract, not a presentation choice.
var csvColumns = []string{
	"URL",
	"Status",
	"Crawl Depth",
	"Response Time",
	"Redirect URL",
	"Canonical URL",
	"isNoIndex",
	"isNoFollow",
	"isBlockedByRobotsTxt",
	"Title",
	"Title Length",
	"Meta Description",
	"Meta Description Length",
	"H1s",
	"H2s",
	"Word Count",
	"Duplicate Content Score",
	"Missing Alt Text Images",
	"Schema Types",
	"URL Parameters",
	"Inlinks",
}

// listSeparator joins list-valued fields (H1s, schema types, inlinks)
// inside a single CSV cell.
const listSeparator = "|"

// CSVWriter outputs one row per analyzed page in the fixed export format.
//
// Design decision: We render rows by hand instead of using encoding/csv
// because the format quotes every field unconditionally, while
// encoding/csv only quotes fields that need it. Always-quoted output
// keeps the file stable for the exclusion-list round trip regardless of
// cell content.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the header row followed by one row per page.
// The summary is unused: the CSV format carries per-page data only.
func (w *CSVWriter) Write(_ *model.Summary, pages []model.CrawledPage) (int, error) {
	var sb strings.Builder

	writeRow(&sb, csvColumns)
	for _, page := range pages {
		writeRow(&sb, pageRow(&page))
	}

	return w.output.Write([]byte(sb.String()))
}

// pageRow renders one page into cell values, in column order.
func pageRow(page *model.CrawledPage) []string {
	return []string{
		page.URL,
		strconv.Itoa(page.Status),
		strconv.Itoa(page.CrawlDepth),
		strconv.Itoa(page.ResponseTimeMs),
		page.RedirectURL,
		page.CanonicalURL,
		strconv.FormatBool(page.IsNoIndex),
		strconv.FormatBool(page.IsNoFollow),
		strconv.FormatBool(page.IsBlockedByRobotsTxt),
		page.Title,
		strconv.Itoa(page.TitleLength),
		page.MetaDescription,
		strconv.Itoa(page.MetaDescriptionLength),
		strings.Join(page.H1s, listSeparator),
		strings.Join(page.H2s, listSeparator),
		strconv.Itoa(page.WordCount),
		strconv.FormatFloat(page.DuplicateContentScore, 'f', -1, 64),
		strconv.Itoa(page.MissingAltTextImages),
		strings.Join(page.SchemaTypes, listSeparator),
		strings.Join(page.URLParameters, listSeparator),
		formatInlinks(page.Inlinks),
	}
}

// formatInlinks renders the inlink list as `sourceUrl ("anchorText")`
// entries joined with the list separator.
func formatInlinks(inlinks []model.Inlink) string {
	if len(inlinks) == 0 {
		return ""
	}

	parts := make([]string, 0, len(inlinks))
	for _, inlink := range inlinks {
		parts = append(parts, inlink.SourceURL+` ("`+inlink.AnchorText+`")`)
	}

	return strings.Join(parts, listSeparator)
}

// writeRow appends one CSV row. Every cell is quoted, with internal
// quotes doubled.
func writeRow(sb *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}
