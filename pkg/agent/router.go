package agent

import (
	"strings"

	"github.com/studybuddyhq/studybuddy/pkg/logger"
)

// Tool names the router hands out. They match the registered tool set.
const (
	ToolWikipedia  = "wikipedia"
	ToolArxiv      = "arxiv"
	ToolWebSearch  = "web_search"
	ToolExtractURL = "extract_url"
)

var (
	stemKeywords = []string{
		"math", "physics", "chemistry", "biology", "engineering",
		"quantum", "algorithm", "molecule", "protein", "theorem",
	}
	paperKeywords = []string{
		"paper", "research", "publication", "journal", "study",
		"experiment", "findings", "published", "arxiv",
	}
	recencyKeywords = []string{
		"recent", "latest", "new", "current", "today", "this year",
		"2023", "2024", "2025", "news",
	}
	urlMarkers = []string{
		"http", "https", "www.", ".com", ".org", ".edu",
	}
)

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// SelectTools returns tool names in preference order for a query. The
// checks run in a fixed priority: STEM research papers, then pasted
// URLs, then current events, then general knowledge. Deterministic for a
// given query.
func SelectTools(query string) []string {
	queryLower := strings.ToLower(query)

	switch {
	case containsAny(queryLower, stemKeywords) && containsAny(queryLower, paperKeywords):
		return []string{ToolArxiv, ToolWikipedia, ToolWebSearch}
	case containsAny(queryLower, urlMarkers):
		return []string{ToolExtractURL, ToolWebSearch}
	case containsAny(queryLower, recencyKeywords):
		return []string{ToolWebSearch, ToolWikipedia, ToolArxiv}
	default:
		return []string{ToolWikipedia, ToolWebSearch, ToolArxiv}
	}
}

// routeTools sets state.ToolChoice from the latest user message. A
// stem_focus flag in the conversation context promotes arxiv to the
// front when it is among the preferences.
func routeTools(state *State) {
	latest := state.LatestUserMessage()
	if latest == "" {
		state.ToolChoice = ""
		return
	}

	preferred := SelectTools(latest)

	if stemFocus, ok := state.Context["stem_focus"].(bool); ok && stemFocus {
		for i, name := range preferred {
			if name == ToolArxiv && i > 0 {
				preferred = append(preferred[:i], preferred[i+1:]...)
				preferred = append([]string{ToolArxiv}, preferred...)
				break
			}
		}
	}

	state.ToolChoice = preferred[0]
	logger.DebugCF("agent", "Tool routing decided",
		map[string]interface{}{
			"tool_choice": state.ToolChoice,
			"preferred":   preferred,
		})
}
