package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// Fixture is one preloaded page served by the Static analyzer.
type Fixture struct {
	// HTML is the page markup.
	HTML string

	// Status is the HTTP status code to report. Zero means 200.
	Status int

	// RedirectURL is the redirect target to report, if any.
	RedirectURL string

	// ResponseTimeMs is the response time to report.
	ResponseTimeMs int

	// BlockedByRobotsTxt marks the page as disallowed by robots.txt.
	BlockedByRobotsTxt bool
}

// Static implements PageAnalyzer and LinkExtractor over a fixed set of
// in-memory pages. It performs no network I/O: analysis and extraction
// parse the preloaded markup directly.
//
// Design decision: We ship this alongside the Gemini client because:
// 1. Engine tests need a deterministic collaborator
// 2. Dry runs against a site snapshot should not burn API quota
// 3. It documents, in code, exactly what the analyzer contract means
type Static struct {
	// fixtures maps URL to its page. Exact string match, like the
	// engine's visited registry.
	fixtures map[string]Fixture

	// contentHashes counts body-text hashes across all fixtures,
	// used to derive the duplicate content score.
	contentHashes map[string]int
}

// NewStatic creates a Static analyzer over the given pages.
func NewStatic(fixtures map[string]Fixture) *Static {
	s := &Static{
		fixtures:      fixtures,
		contentHashes: make(map[string]int),
	}

	// Precompute text hashes so Analyze can flag exact duplicates.
	for _, f := range fixtures {
		if h := textHash(f.HTML); h != "" {
			s.contentHashes[h]++
		}
	}

	return s
}

// Analyze implements PageAnalyzer. Unknown URLs are reported as 404s
// rather than failing the batch, mirroring how a live analyzer reports
// dead links it was asked about.
func (s *Static) Analyze(_ context.Context, urls []string, _ string) ([]model.AnalysisRecord, error) {
	records := make([]model.AnalysisRecord, 0, len(urls))
	for _, pageURL := range urls {
		fixture, ok := s.fixtures[pageURL]
		if !ok {
			records = append(records, model.AnalysisRecord{
				URL:           pageURL,
				Status:        404,
				H1s:           []string{},
				H2s:           []string{},
				SchemaTypes:   []string{},
				URLParameters: []string{},
			})
			continue
		}

		record, err := s.analyzePage(pageURL, fixture)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// analyzePage parses one fixture into an analysis record.
func (s *Static) analyzePage(pageURL string, fixture Fixture) (model.AnalysisRecord, error) {
	record := model.AnalysisRecord{
		URL:                  pageURL,
		Status:               fixture.Status,
		RedirectURL:          fixture.RedirectURL,
		IsBlockedByRobotsTxt: fixture.BlockedByRobotsTxt,
		ResponseTimeMs:       fixture.ResponseTimeMs,
		H1s:                  []string{},
		H2s:                  []string{},
		SchemaTypes:          []string{},
		URLParameters:        []string{},
	}
	if record.Status == 0 {
		record.Status = 200
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return model.AnalysisRecord{}, err
	}
	record.URLParameters = queryParameterNames(u)

	doc, err := html.Parse(strings.NewReader(fixture.HTML))
	if err != nil {
		return model.AnalysisRecord{}, err
	}

	var words int
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				record.Title = innerText(n)
			case "h1":
				record.H1s = append(record.H1s, innerText(n))
			case "h2":
				record.H2s = append(record.H2s, innerText(n))
			case "meta":
				name := strings.ToLower(getAttr(n, "name"))
				contentAttr := getAttr(n, "content")
				switch name {
				case "description":
					record.MetaDescription = contentAttr
				case "robots":
					directives := strings.ToLower(contentAttr)
					record.IsNoIndex = record.IsNoIndex || strings.Contains(directives, "noindex")
					record.IsNoFollow = record.IsNoFollow || strings.Contains(directives, "nofollow")
				}
			case "link":
				if strings.EqualFold(getAttr(n, "rel"), "canonical") {
					record.CanonicalURL = getAttr(n, "href")
				}
			case "img":
				if strings.TrimSpace(getAttr(n, "alt")) == "" {
					record.MissingAltTextImages++
				}
			case "script":
				if strings.EqualFold(getAttr(n, "type"), "application/ld+json") {
					record.SchemaTypes = append(record.SchemaTypes, schemaTypes(innerText(n))...)
				}
				// Script bodies are code, not page content.
				return
			case "style":
				return
			}
		}
		if n.Type == html.TextNode {
			words += len(strings.Fields(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	record.WordCount = words
	record.TitleLength = len(record.Title)
	record.MetaDescriptionLength = len(record.MetaDescription)

	// A body text shared by more than one fixture is an exact duplicate.
	if h := textHash(fixture.HTML); h != "" && s.contentHashes[h] > 1 {
		record.DuplicateContentScore = 1.0
	}

	return record, nil
}

// Extract implements LinkExtractor. It resolves every anchor against the
// page URL and returns each target once, in document order.
func (s *Static) Extract(_ context.Context, pageURL, _ string) ([]Link, error) {
	fixture, ok := s.fixtures[pageURL]
	if !ok {
		return []Link{}, nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	doc, err := html.Parse(strings.NewReader(fixture.HTML))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	links := make([]Link, 0)
	seen := make(map[string]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if resolved := resolveHref(base, getAttr(n, "href")); resolved != "" && !seen[resolved] {
				seen[resolved] = true
				links = append(links, Link{URL: resolved, AnchorText: innerText(n)})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// resolveHref resolves href against base, dropping non-navigational
// schemes and bare fragments.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	resolved.Fragment = ""
	return resolved.String()
}

// queryParameterNames returns the sorted query parameter names of u.
func queryParameterNames(u *url.URL) []string {
	names := make([]string, 0)
	for name := range u.Query() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// schemaTypes extracts @type values from a JSON-LD payload.
// Both a single object and an array of objects are accepted; @type may
// be a string or a list of strings.
func schemaTypes(payload string) []string {
	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil
	}

	objects := make([]any, 0, 1)
	switch v := raw.(type) {
	case []any:
		objects = v
	default:
		objects = append(objects, v)
	}

	types := make([]string, 0)
	for _, obj := range objects {
		m, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		switch t := m["@type"].(type) {
		case string:
			types = append(types, t)
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					types = append(types, s)
				}
			}
		}
	}

	return types
}

// innerText collects the trimmed text content of a node subtree.
func innerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// textHash hashes the whitespace-normalized text of a page.
func textHash(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	normalized := strings.Join(strings.Fields(sb.String()), " ")
	if normalized == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
