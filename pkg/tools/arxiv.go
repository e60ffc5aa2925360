package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ArxivTool searches arXiv's Atom export API for academic papers.
type ArxivTool struct {
	apiBase    string
	maxResults int
	maxChars   int
	httpClient *http.Client
}

type ArxivToolOptions struct {
	APIBase    string
	MaxResults int
	MaxChars   int
}

func NewArxivTool(opts ArxivToolOptions) *ArxivTool {
	apiBase := opts.APIBase
	if apiBase == "" {
		apiBase = "https://export.arxiv.org/api/query"
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = 4000
	}
	return &ArxivTool{
		apiBase:    apiBase,
		maxResults: maxResults,
		maxChars:   maxChars,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *ArxivTool) Name() string {
	return "arxiv"
}

func (t *ArxivTool) Description() string {
	return "Search arXiv for academic papers and research publications. Best for scientific research, recent papers, and technical topics in STEM fields."
}

func (t *ArxivTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Research topic or paper keywords",
			},
		},
		"required": []string{"query"},
	}
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

func (t *ArxivTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return ErrorResult("query is required")
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", t.maxResults))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, "GET", t.apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to create request: %v", err)).WithError(err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return ErrorResult(fmt.Sprintf("arxiv request failed: %v", err)).WithError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrorResult(fmt.Sprintf("arxiv returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to read response: %v", err)).WithError(err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return ErrorResult(fmt.Sprintf("failed to parse arxiv feed: %v", err)).WithError(err)
	}

	text, items := t.formatEntries(feed.Entries, query)
	return TextResult(text).WithItems(items)
}

func (t *ArxivTool) formatEntries(entries []arxivEntry, query string) (string, []SearchItem) {
	if len(entries) == 0 {
		return fmt.Sprintf("No arXiv papers found for: %s", query), nil
	}

	budget := t.maxChars / len(entries)
	var lines []string
	items := make([]SearchItem, 0, len(entries))
	for _, entry := range entries {
		title := collapseWhitespace(entry.Title)
		summary := collapseWhitespace(entry.Summary)
		if len(summary) > budget {
			summary = summary[:budget] + "..."
		}
		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			authors = append(authors, a.Name)
		}
		published := entry.Published
		if len(published) >= 10 {
			published = published[:10]
		}
		lines = append(lines, fmt.Sprintf("## %s\nAuthors: %s\nPublished: %s\n%s\nLink: %s",
			title, strings.Join(authors, ", "), published, summary, entry.ID))
		items = append(items, SearchItem{URL: entry.ID, Title: title, Snippet: summary})
	}
	return strings.Join(lines, "\n\n"), items
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
