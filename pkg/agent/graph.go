package agent

import (
	"context"
	"fmt"

	"github.com/studybuddyhq/studybuddy/pkg/logger"
	"github.com/studybuddyhq/studybuddy/pkg/providers"
	"github.com/studybuddyhq/studybuddy/pkg/tools"
)

// Orchestrator runs one request through the routing, model, tool, and
// critic stages. The flow mirrors a small state machine:
//
//	route -> chat -> (answer | tools -> critic -> route | chat) -> answer
//
// Tool passes are bounded; when the budget runs out the model is forced
// to answer with what it has.
type Orchestrator struct {
	provider providers.LLMProvider
	registry *tools.ToolRegistry
	critic   *Critic
	urls     *URLTracker

	model         string
	options       map[string]interface{}
	maxToolPasses int
}

type OrchestratorOptions struct {
	Provider      providers.LLMProvider
	Registry      *tools.ToolRegistry
	URLs          *URLTracker
	Model         string
	MaxTokens     int
	Temperature   float64
	MaxToolPasses int
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	maxToolPasses := opts.MaxToolPasses
	if maxToolPasses <= 0 {
		maxToolPasses = 3
	}
	options := map[string]interface{}{}
	if opts.MaxTokens > 0 {
		options["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}
	return &Orchestrator{
		provider:      opts.Provider,
		registry:      opts.Registry,
		critic:        NewCritic(),
		urls:          opts.URLs,
		model:         opts.Model,
		options:       options,
		maxToolPasses: maxToolPasses,
	}
}

// Result is what one orchestration run produces: the final answer plus
// every assistant message generated along the way.
type Result struct {
	Response   string
	AIMessages []string
	Reasoning  []ReasoningStep
}

// Run drives the state machine to a final answer. Tool failures degrade
// into critic retries; only provider failures surface as errors.
func (o *Orchestrator) Run(ctx context.Context, state *State) (*Result, error) {
	routeTools(state)

	state.addReasoning("thought", "I need to understand the user's query and determine the best approach to answer it.")
	if state.Memory != "" {
		state.addReasoning("memory", "Retrieving relevant context from hierarchical memory")
	}
	if state.ToolChoice != "" {
		state.addReasoning("routing", fmt.Sprintf("Selected %q as the primary tool for this query", state.ToolChoice))
	}

	conversationID, _ := state.Context["conversation_id"].(string)

	var aiMessages []string
	toolPasses := 0

	for {
		messages := make([]providers.Message, 0, len(state.Messages)+1)
		messages = append(messages, providers.Message{Role: "system", Content: BuildSystemPrompt(state)})
		messages = append(messages, state.Messages...)

		var defs []providers.ToolDefinition
		if toolPasses < o.maxToolPasses {
			defs = o.registry.Definitions()
		}

		resp, err := o.provider.Chat(ctx, messages, defs, o.model, o.options)
		if err != nil {
			state.addReasoning("error", err.Error())
			return nil, fmt.Errorf("model call failed: %w", err)
		}

		if len(resp.ToolCalls) == 0 || toolPasses >= o.maxToolPasses {
			state.Messages = append(state.Messages, providers.Message{Role: "assistant", Content: resp.Content})
			aiMessages = append(aiMessages, resp.Content)
			state.addReasoning("action", "Generated response with citations and references")
			return &Result{
				Response:   resp.Content,
				AIMessages: aiMessages,
				Reasoning:  state.Reasoning,
			}, nil
		}

		toolPasses++
		state.Messages = append(state.Messages, providers.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		if resp.Content != "" {
			aiMessages = append(aiMessages, resp.Content)
		}

		needMore := false
		for _, call := range resp.ToolCalls {
			result := o.registry.Execute(ctx, call.Name, call.Arguments)

			o.trackSources(conversationID, call.Name, result)

			state.Messages = append(state.Messages, providers.Message{
				Role:       "tool",
				Content:    result.ForLLM,
				Name:       call.Name,
				ToolCallID: call.ID,
			})
			state.addReasoning("tool", fmt.Sprintf("Executed %q", call.Name))
			if result != nil && result.IsError {
				detail := result.ForLLM
				if result.Err != nil {
					detail = result.Err.Error()
				}
				state.addReasoning("error", fmt.Sprintf("Tool %q failed: %s", call.Name, detail))
			}

			retry, verdict := o.critic.Reflect(state.LatestUserMessage(), result)
			state.addReasoning("reflection", verdict)
			if retry {
				needMore = true
			}
		}

		if needMore && toolPasses < o.maxToolPasses {
			logger.DebugCF("agent", "Critic requested another tool pass",
				map[string]interface{}{
					"pass": toolPasses,
				})
			routeTools(state)
		}
	}
}

func (o *Orchestrator) trackSources(conversationID, toolName string, result *tools.ToolResult) {
	if o.urls == nil || conversationID == "" || result == nil {
		return
	}
	for _, item := range result.Items {
		o.urls.Track(conversationID, item.URL, toolName, item.Title, item.Snippet)
	}
	for _, url := range ExtractURLs(result.ForLLM) {
		o.urls.Track(conversationID, url, toolName, "", "")
	}
}
