package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// Default Gemini client settings.
const (
	// DefaultGeminiBaseURL is the generative language API endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultGeminiModel balances cost and quality for structured
	// extraction tasks. Analysis batches are small, so a flash-class
	// model is sufficient.
	DefaultGeminiModel = "gemini-2.0-flash"

	// defaultGeminiTimeout bounds a single API call. Batches of five
	// URLs typically return within 30 seconds; we leave headroom for
	// slow pages the model has to reason about.
	defaultGeminiTimeout = 90 * time.Second

	// maxResponseSize limits the API response body we read.
	maxResponseSize = 4 * 1024 * 1024 // 4MB
)

// Gemini implements PageAnalyzer and LinkExtractor against the Google
// generative language API. The model is asked for strict JSON output and
// the response is decoded into the crawler's types.
//
// Design decision: One type implements both contracts because the two
// calls share all transport concerns (auth, endpoint, decoding, fence
// stripping). The crawl engine still consumes them through the two
// narrow interfaces, so a deployment can mix implementations.
type Gemini struct {
	// httpClient performs the API calls.
	httpClient *http.Client

	// apiKey authenticates against the API. It is sent in a header,
	// never in the URL, so it cannot leak through request logging.
	apiKey string

	// baseURL is the API root. Overridable for tests.
	baseURL string

	// model is the model identifier to invoke.
	model string

	// logger for structured logging.
	logger *slog.Logger
}

// GeminiOption configures a Gemini client.
type GeminiOption func(*Gemini)

// WithGeminiHTTPClient sets a custom HTTP client.
// Useful for injecting transports in tests.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(g *Gemini) {
		g.httpClient = client
	}
}

// WithGeminiBaseURL overrides the API endpoint.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(g *Gemini) {
		g.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithGeminiModel sets the model identifier.
func WithGeminiModel(modelName string) GeminiOption {
	return func(g *Gemini) {
		g.model = modelName
	}
}

// WithGeminiLogger sets a custom logger.
func WithGeminiLogger(logger *slog.Logger) GeminiOption {
	return func(g *Gemini) {
		g.logger = logger
	}
}

// NewGemini creates a Gemini-backed analyzer with the given API key.
func NewGemini(apiKey string, opts ...GeminiOption) *Gemini {
	g := &Gemini{
		apiKey:  apiKey,
		baseURL: DefaultGeminiBaseURL,
		model:   DefaultGeminiModel,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.httpClient == nil {
		g.httpClient = &http.Client{Timeout: defaultGeminiTimeout}
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g
}

// analysisPrompt instructs the model to return one record per URL as a
// strict JSON array. The key names match the model.AnalysisRecord JSON
// tags so the response decodes directly.
const analysisPrompt = `You are an SEO crawler backend. Visit each of the following URLs of the site %s and return a JSON array with EXACTLY one object per URL, in the SAME order as given.

Each object must have these keys:
url, status, crawl_depth, redirect_url, canonical_url, is_no_index, is_no_follow, is_blocked_by_robots_txt, title, title_length, meta_description, meta_description_length, h1s, h2s, word_count, duplicate_content_score, missing_alt_text_images, schema_types, url_parameters, response_time_ms

Rules: status is the HTTP status code as a number. h1s, h2s, schema_types and url_parameters are arrays of strings. duplicate_content_score is a number between 0 and 1. Respond with the raw JSON array only, no prose and no markdown fences.

URLs:
%s`

// Analyze implements PageAnalyzer.
func (g *Gemini) Analyze(ctx context.Context, urls []string, contextURL string) ([]model.AnalysisRecord, error) {
	if len(urls) == 0 {
		return []model.AnalysisRecord{}, nil
	}

	prompt := fmt.Sprintf(analysisPrompt, contextURL, strings.Join(urls, "\n"))

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	var records []model.AnalysisRecord
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &records); err != nil {
		return nil, fmt.Errorf("%w: undecodable response: %w", ErrAnalysis, err)
	}

	// The cardinality contract is part of the analyzer postcondition.
	// A short or long response means the model ignored the prompt and
	// the records cannot be matched back to their URLs.
	if len(records) != len(urls) {
		return nil, fmt.Errorf("%w: expected %d records, got %d", ErrAnalysis, len(urls), len(records))
	}

	return records, nil
}

// extractionPrompt instructs the model to list the outbound links of a
// single page as a strict JSON array.
const extractionPrompt = `You are an SEO crawler backend. List the outbound links found on the page %s. Focus on links to the domain %s, but include every absolute link you find.

Respond with a raw JSON array, no prose and no markdown fences. Each element must have the keys url (absolute URL as a string) and anchor_text (the visible link text). Do not repeat the same URL twice.`

// Extract implements LinkExtractor.
func (g *Gemini) Extract(ctx context.Context, pageURL, siteDomain string) ([]Link, error) {
	prompt := fmt.Sprintf(extractionPrompt, pageURL, siteDomain)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	var links []Link
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &links); err != nil {
		return nil, fmt.Errorf("%w: undecodable response: %w", ErrExtraction, err)
	}

	return links, nil
}

// generateRequest is the request payload for generateContent.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

// generateResponse is the subset of the generateContent response we need.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate performs one generateContent call and returns the text of the
// first candidate.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	g.logger.Debug("calling generative API", "model", g.model)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("undecodable API envelope: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("API returned no candidates")
	}

	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// stripCodeFence removes a single pair of markdown code fences.
// Models sometimes wrap JSON in ```json fences despite instructions.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop an optional language tag on the opening fence.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		if first == "json" || first == "" {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}

// truncate shortens s to at most n bytes for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
