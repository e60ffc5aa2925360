// Package agent implements the reflect-and-retry orchestration loop for
// the study assistant: tool routing, the model call, tool execution with
// source tracking, and critic reflection between tool passes.
package agent

import (
	"github.com/studybuddyhq/studybuddy/pkg/providers"
)

// ReasoningStep is one entry in the explanation trail returned with a
// response. Both fields are plain strings at this boundary regardless of
// where the step originated.
type ReasoningStep struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// State is the mutable conversation state threaded through one
// orchestration run.
type State struct {
	Messages      []providers.Message
	Context       map[string]interface{}
	Memory        string
	MemorySummary string
	Reasoning     []ReasoningStep
	ToolChoice    string
}

// LatestUserMessage returns the content of the most recent user turn, or
// "" when there is none.
func (s *State) LatestUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == "user" {
			return s.Messages[i].Content
		}
	}
	return ""
}

func (s *State) addReasoning(stepType, content string) {
	s.Reasoning = append(s.Reasoning, ReasoningStep{Type: stepType, Content: content})
}
