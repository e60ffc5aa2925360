package agent

import (
	"fmt"
	"strings"

	"github.com/studybuddyhq/studybuddy/pkg/memory"
	"github.com/studybuddyhq/studybuddy/pkg/tools"
)

// Critic decides after each tool pass whether another tool should run
// before the model answers. Deterministic heuristics over the tool
// output: failed or thin results and poor query coverage each warrant a
// retry with the next tool.
type Critic struct {
	MinOutputChars int
	MinCoverage    float64
}

func NewCritic() *Critic {
	return &Critic{
		MinOutputChars: 200,
		MinCoverage:    0.3,
	}
}

// Reflect reports whether the tool output is insufficient for the query.
// A true return sends the loop back through the router.
func (c *Critic) Reflect(query string, result *tools.ToolResult) (bool, string) {
	if result == nil || result.IsError {
		return true, "tool execution failed, trying an alternative source"
	}

	output := strings.TrimSpace(result.ForLLM)
	if len(output) < c.MinOutputChars {
		return true, fmt.Sprintf("tool output too thin (%d chars), gathering more", len(output))
	}

	keywords := memory.ExtractKeywords(query)
	if len(keywords) == 0 {
		return false, "tool output accepted"
	}

	outputLower := strings.ToLower(output)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(outputLower, kw) {
			matched++
		}
	}
	coverage := float64(matched) / float64(len(keywords))
	if coverage < c.MinCoverage {
		return true, fmt.Sprintf("tool output covers %.0f%% of the query terms, gathering more", coverage*100)
	}

	return false, "tool output accepted"
}
