package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/studybuddyhq/studybuddy/pkg/logger"
	"github.com/studybuddyhq/studybuddy/pkg/providers"
)

type ToolRegistry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

func (r *ToolRegistry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Definitions returns the wire-format declarations for every registered
// tool, for handing to the provider.
func (r *ToolRegistry) Definitions() []providers.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]providers.ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, Definition(tool))
	}
	return defs
}

// Execute runs a named tool. Failures come back as error results, never
// as a nil ToolResult, so the caller can always feed something to the
// model.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]interface{}) *ToolResult {
	logger.InfoCF("tool", "Tool execution started",
		map[string]interface{}{
			"tool": name,
			"args": args,
		})

	tool, ok := r.Get(name)
	if !ok {
		logger.ErrorCF("tool", "Tool not found",
			map[string]interface{}{
				"tool": name,
			})
		return ErrorResult(fmt.Sprintf("tool %q not found", name)).WithError(fmt.Errorf("tool not found"))
	}

	start := time.Now()
	result := tool.Execute(ctx, args)
	duration := time.Since(start)

	if result == nil {
		result = ErrorResult(fmt.Sprintf("tool %q returned no result", name))
	}

	logger.InfoCF("tool", "Tool execution finished",
		map[string]interface{}{
			"tool":        name,
			"duration_ms": duration.Milliseconds(),
			"is_error":    result.IsError,
			"items":       len(result.Items),
		})

	return result
}
