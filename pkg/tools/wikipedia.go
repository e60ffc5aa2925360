package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const userAgent = "StudyBuddy/1.0 (educational research assistant)"

// WikipediaTool answers encyclopedic queries via the MediaWiki API.
// One request searches and pulls plain-text extracts together.
type WikipediaTool struct {
	apiBase    string
	maxResults int
	maxChars   int
	httpClient *http.Client
}

type WikipediaToolOptions struct {
	APIBase    string // defaults to the English Wikipedia API
	MaxResults int
	MaxChars   int
}

func NewWikipediaTool(opts WikipediaToolOptions) *WikipediaTool {
	apiBase := opts.APIBase
	if apiBase == "" {
		apiBase = "https://en.wikipedia.org/w/api.php"
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 2
	}
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = 4000
	}
	return &WikipediaTool{
		apiBase:    apiBase,
		maxResults: maxResults,
		maxChars:   maxChars,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *WikipediaTool) Name() string {
	return "wikipedia"
}

func (t *WikipediaTool) Description() string {
	return "Search Wikipedia for encyclopedic information on a topic. Best for definitions, concepts, historical facts, and general knowledge."
}

func (t *WikipediaTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Topic or question to look up",
			},
		},
		"required": []string{"query"},
	}
}

type wikipediaResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int    `json:"pageid"`
			Title   string `json:"title"`
			Extract string `json:"extract"`
			Index   int    `json:"index"`
		} `json:"pages"`
	} `json:"query"`
}

func (t *WikipediaTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return ErrorResult("query is required")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", fmt.Sprintf("%d", t.maxResults))
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("exintro", "0")

	req, err := http.NewRequestWithContext(ctx, "GET", t.apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to create request: %v", err)).WithError(err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return ErrorResult(fmt.Sprintf("wikipedia request failed: %v", err)).WithError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrorResult(fmt.Sprintf("wikipedia returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to read response: %v", err)).WithError(err)
	}

	var parsed wikipediaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ErrorResult(fmt.Sprintf("failed to parse wikipedia response: %v", err)).WithError(err)
	}

	text, items := t.formatPages(parsed, query)
	return TextResult(text).WithItems(items)
}

func (t *WikipediaTool) formatPages(parsed wikipediaResponse, query string) (string, []SearchItem) {
	type page struct {
		pageID  int
		title   string
		extract string
		index   int
	}
	pages := make([]page, 0, len(parsed.Query.Pages))
	for _, p := range parsed.Query.Pages {
		pages = append(pages, page{pageID: p.PageID, title: p.Title, extract: p.Extract, index: p.Index})
	}
	if len(pages) == 0 {
		return fmt.Sprintf("No Wikipedia articles found for: %s", query), nil
	}
	// The pages map loses search ranking; the index field restores it.
	sort.Slice(pages, func(i, j int) bool { return pages[i].index < pages[j].index })

	budget := t.maxChars / len(pages)
	var lines []string
	items := make([]SearchItem, 0, len(pages))
	for _, p := range pages {
		extract := p.extract
		if len(extract) > budget {
			extract = extract[:budget] + "..."
		}
		pageURL := fmt.Sprintf("https://en.wikipedia.org/?curid=%d", p.pageID)
		lines = append(lines, fmt.Sprintf("## %s\n%s\nSource: %s", p.title, extract, pageURL))
		items = append(items, SearchItem{URL: pageURL, Title: p.title})
	}
	return strings.Join(lines, "\n\n"), items
}
