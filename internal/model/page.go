package model

// Inlink is one observed incoming edge for a page: which URL linked to it
// and with what anchor text.
//
// Design decision: We keep duplicates (same source and anchor) instead of
// deduplicating because:
// 1. The number of times a page is linked from the same source is itself
//    an SEO signal (navigation vs. one-off editorial links)
// 2. Discovery order is meaningful when debugging a crawl
// 3. Deduplication is cheap to do downstream but impossible to undo
type Inlink struct {
	// SourceURL is the URL of the page that contained the link.
	SourceURL string `json:"source_url"`

	// AnchorText is the visible text of the link on the source page.
	AnchorText string `json:"anchor_text"`
}

// AnalysisRecord holds the SEO-relevant metadata produced by the page
// analyzer for a single URL. It is everything a CrawledPage carries except
// the inlinks, which are owned by the crawl engine's link graph.
type AnalysisRecord struct {
	// URL is the analyzed page URL.
	URL string `json:"url"`

	// Status is the HTTP status code reported for the page.
	Status int `json:"status"`

	// CrawlDepth is the number of link-hops from the seed URL,
	// as reported by the analyzer.
	CrawlDepth int `json:"crawl_depth"`

	// RedirectURL is the redirect target, if the page redirects.
	RedirectURL string `json:"redirect_url,omitempty"`

	// CanonicalURL is the rel=canonical target, if declared.
	CanonicalURL string `json:"canonical_url,omitempty"`

	// IsNoIndex reports whether the page declares a noindex directive.
	IsNoIndex bool `json:"is_no_index"`

	// IsNoFollow reports whether the page declares a nofollow directive.
	IsNoFollow bool `json:"is_no_follow"`

	// IsBlockedByRobotsTxt reports whether robots.txt disallows the page.
	IsBlockedByRobotsTxt bool `json:"is_blocked_by_robots_txt"`

	// Title is the page title.
	Title string `json:"title"`

	// TitleLength is the title length in characters.
	TitleLength int `json:"title_length"`

	// MetaDescription is the meta description content.
	MetaDescription string `json:"meta_description"`

	// MetaDescriptionLength is the meta description length in characters.
	MetaDescriptionLength int `json:"meta_description_length"`

	// H1s contains the text of all h1 headings in document order.
	H1s []string `json:"h1s"`

	// H2s contains the text of all h2 headings in document order.
	H2s []string `json:"h2s"`

	// WordCount is the visible word count of the page body.
	WordCount int `json:"word_count"`

	// DuplicateContentScore estimates content duplication in [0, 1],
	// where 1 means the content duplicates another page.
	DuplicateContentScore float64 `json:"duplicate_content_score"`

	// MissingAltTextImages is the number of images without alt text.
	MissingAltTextImages int `json:"missing_alt_text_images"`

	// SchemaTypes lists structured-data types found on the page.
	SchemaTypes []string `json:"schema_types"`

	// URLParameters lists query parameter names present in the URL.
	URLParameters []string `json:"url_parameters"`

	// ResponseTimeMs is the page response time in milliseconds.
	ResponseTimeMs int `json:"response_time_ms"`
}

// CrawledPage is the unit of crawl output: one analysis record enriched
// with the inlinks known for the page at the moment it was emitted.
//
// The inlinks are a snapshot. Edges discovered after emission, including
// edges from sibling pages in the same batch, are never attached
// retroactively. Pages analyzed early in a crawl therefore under-report
// inlinks; callers that need the complete graph should read it from the
// crawl engine directly.
type CrawledPage struct {
	AnalysisRecord

	// Inlinks is the list of incoming edges observed before this page
	// was emitted, in discovery order.
	Inlinks []Inlink `json:"inlinks"`
}

// Thresholds for SEO issue detection. These follow the conventional limits
// used by SEO tooling: search engines truncate titles around 60 characters
// and meta descriptions around 160.
const (
	maxTitleLength           = 60
	maxMetaDescriptionLength = 160
	minWordCount             = 300
	duplicateContentLimit    = 0.8
)

// Issues derives SEO issue labels for the page. Labels are lowercase;
// presentation layers decide how to render them.
func (p *CrawledPage) Issues() []string {
	issues := make([]string, 0)

	if p.Status >= 400 {
		issues = append(issues, "broken page")
	}
	if p.TitleLength == 0 {
		issues = append(issues, "missing title")
	} else if p.TitleLength > maxTitleLength {
		issues = append(issues, "long title")
	}
	if p.MetaDescriptionLength == 0 {
		issues = append(issues, "missing meta description")
	} else if p.MetaDescriptionLength > maxMetaDescriptionLength {
		issues = append(issues, "long meta description")
	}
	switch {
	case len(p.H1s) == 0:
		issues = append(issues, "missing h1")
	case len(p.H1s) > 1:
		issues = append(issues, "multiple h1")
	}
	if p.Status < 400 && p.WordCount < minWordCount {
		issues = append(issues, "thin content")
	}
	if p.DuplicateContentScore >= duplicateContentLimit {
		issues = append(issues, "duplicate content")
	}
	if p.MissingAltTextImages > 0 {
		issues = append(issues, "images missing alt text")
	}
	if p.IsNoIndex {
		issues = append(issues, "noindex")
	}
	if p.IsBlockedByRobotsTxt {
		issues = append(issues, "blocked by robots.txt")
	}

	return issues
}

// IsSuccess reports whether the page responded with a non-error status.
// Link discovery only happens for successful pages.
func (p *CrawledPage) IsSuccess() bool {
	return p.Status < 400
}
