package tools

import (
	"context"
	"strings"
	"testing"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes the query" }
func (echoTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string"},
		},
		"required": []string{"query"},
	}
}
func (echoTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	query, _ := args["query"].(string)
	return TextResult("echo: " + query)
}

type nilResultTool struct{}

func (nilResultTool) Name() string                           { return "nil-result" }
func (nilResultTool) Description() string                    { return "returns nil" }
func (nilResultTool) Parameters() map[string]interface{}     { return map[string]interface{}{} }
func (nilResultTool) Execute(context.Context, map[string]interface{}) *ToolResult { return nil }

func TestToolRegistry_Execute(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(echoTool{})

	result := registry.Execute(context.Background(), "echo", map[string]interface{}{"query": "hi"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.ForLLM)
	}
	if result.ForLLM != "echo: hi" {
		t.Fatalf("unexpected output %q", result.ForLLM)
	}
}

func TestToolRegistry_UnknownTool(t *testing.T) {
	registry := NewToolRegistry()
	result := registry.Execute(context.Background(), "nope", nil)
	if !result.IsError {
		t.Fatal("unknown tool must produce an error result")
	}
	if !strings.Contains(result.ForLLM, "not found") {
		t.Fatalf("unexpected message %q", result.ForLLM)
	}
}

func TestToolRegistry_NilResultBecomesError(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(nilResultTool{})
	result := registry.Execute(context.Background(), "nil-result", nil)
	if result == nil || !result.IsError {
		t.Fatal("nil tool result must be converted to an error result")
	}
}

func TestDefinitions_WireShape(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(echoTool{})

	defs := registry.Definitions()
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[0].Type != "function" || defs[0].Function.Name != "echo" {
		t.Fatalf("unexpected definition %+v", defs[0])
	}
	if defs[0].Function.Parameters == nil {
		t.Fatal("parameters schema missing")
	}
}
