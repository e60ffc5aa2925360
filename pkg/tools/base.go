package tools

import (
	"context"

	"github.com/studybuddyhq/studybuddy/pkg/providers"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) *ToolResult
}

// SearchItem is one source a tool consulted. Search tools report every
// result they return; the service surfaces these to the caller as the
// websites searched for a response.
type SearchItem struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// ToolResult is what a tool hands back to the model loop.
type ToolResult struct {
	ForLLM  string       // text injected into the conversation
	Items   []SearchItem // sources behind the text, may be empty
	IsError bool
	Err     error
}

func TextResult(text string) *ToolResult {
	return &ToolResult{ForLLM: text}
}

func ErrorResult(msg string) *ToolResult {
	return &ToolResult{ForLLM: msg, IsError: true}
}

func (r *ToolResult) WithError(err error) *ToolResult {
	r.Err = err
	return r
}

func (r *ToolResult) WithItems(items []SearchItem) *ToolResult {
	r.Items = items
	return r
}

// Definition converts a tool into the wire shape providers send to the
// model.
func Definition(t Tool) providers.ToolDefinition {
	return providers.ToolDefinition{
		Type: "function",
		Function: providers.ToolFunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}
