package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// WebSearchTool answers current-events queries via the DuckDuckGo HTML
// endpoint. No API key required.
type WebSearchTool struct {
	searchBase string
	maxResults int
	httpClient *http.Client
}

type WebSearchToolOptions struct {
	SearchBase string
	MaxResults int
}

func NewWebSearchTool(opts WebSearchToolOptions) *WebSearchTool {
	searchBase := opts.SearchBase
	if searchBase == "" {
		searchBase = "https://html.duckduckgo.com/html/"
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	return &WebSearchTool{
		searchBase: searchBase,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *WebSearchTool) Name() string {
	return "web_search"
}

func (t *WebSearchTool) Description() string {
	return "Search the web for current information. Best for recent events, news, and anything requiring up-to-date sources. Returns titles, URLs, and snippets."
}

func (t *WebSearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query",
			},
		},
		"required": []string{"query"},
	}
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return ErrorResult("query is required")
	}

	searchURL := fmt.Sprintf("%s?q=%s", t.searchBase, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to create request: %v", err)).WithError(err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return ErrorResult(fmt.Sprintf("search request failed: %v", err)).WithError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to read response: %v", err)).WithError(err)
	}

	text, items := extractSearchResults(string(body), t.maxResults, query)
	return TextResult(text).WithItems(items)
}

var (
	reResultLink    = regexp.MustCompile(`<a[^>]*class="[^"]*result__a[^"]*"[^>]*href="([^"]+)"[^>]*>([\s\S]*?)</a>`)
	reResultSnippet = regexp.MustCompile(`<a class="result__snippet[^"]*".*?>([\s\S]*?)</a>`)
	reTag           = regexp.MustCompile(`<[^>]+>`)
)

// extractSearchResults pulls titles, hrefs, and snippets out of the DDG
// HTML page with regexes. Link and snippet anchors appear in the same
// order, so pairing by index holds.
func extractSearchResults(html string, count int, query string) (string, []SearchItem) {
	matches := reResultLink.FindAllStringSubmatch(html, count+5)
	if len(matches) == 0 {
		return fmt.Sprintf("No results found or extraction failed. Query: %s", query), nil
	}

	snippetMatches := reResultSnippet.FindAllStringSubmatch(html, count+5)

	if count > len(matches) {
		count = len(matches)
	}

	lines := []string{fmt.Sprintf("Results for: %s", query)}
	items := make([]SearchItem, 0, count)
	for i := 0; i < count; i++ {
		urlStr := decodeResultURL(matches[i][1])
		title := strings.TrimSpace(stripTags(matches[i][2]))

		var snippet string
		if i < len(snippetMatches) {
			snippet = strings.TrimSpace(stripTags(snippetMatches[i][1]))
		}

		lines = append(lines, fmt.Sprintf("%d. %s\n   %s", i+1, title, urlStr))
		if snippet != "" {
			lines = append(lines, "   "+snippet)
		}
		items = append(items, SearchItem{URL: urlStr, Title: title, Snippet: snippet})
	}

	return strings.Join(lines, "\n"), items
}

// decodeResultURL unwraps DDG's redirect links, which carry the real
// target in a uddg query parameter.
func decodeResultURL(urlStr string) string {
	if !strings.Contains(urlStr, "uddg=") {
		return urlStr
	}
	u, err := url.QueryUnescape(urlStr)
	if err != nil {
		return urlStr
	}
	idx := strings.Index(u, "uddg=")
	if idx == -1 {
		return urlStr
	}
	target := u[idx+5:]
	if amp := strings.Index(target, "&"); amp != -1 {
		target = target[:amp]
	}
	return target
}

func stripTags(content string) string {
	return reTag.ReplaceAllString(content, "")
}
