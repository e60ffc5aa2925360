package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/studybuddyhq/studybuddy/pkg/config"
)

func testProviderConfig(apiBase string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Agents.Provider = ProviderGroq
	cfg.Providers.Groq.APIKey = "test-key"
	cfg.Providers.Groq.APIBase = apiBase
	return cfg
}

func TestCreateProvider_RequiresAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Agents.Provider = ProviderGroq
	if _, err := CreateProvider(cfg); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestCreateProvider_UnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Agents.Provider = "mystery"
	if _, err := CreateProvider(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestChat_SendsToolsAndParsesToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["tool_choice"] != "auto" {
			t.Errorf("expected tool_choice auto, got %v", req["tool_choice"])
		}
		if _, ok := req["tools"].([]interface{}); !ok {
			t.Error("tools missing from request")
		}

		_, _ = w.Write([]byte(`{
			"choices": [{
				"message": {
					"content": null,
					"tool_calls": [{
						"id": "call-9",
						"type": "function",
						"function": {"name": "wikipedia", "arguments": "{\"query\":\"go\"}"}
					}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	provider, err := CreateProvider(testProviderConfig(server.URL))
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	defs := []ToolDefinition{{
		Type: "function",
		Function: ToolFunctionDefinition{
			Name:       "wikipedia",
			Parameters: map[string]interface{}{"type": "object"},
		},
	}}
	resp, err := provider.Chat(context.Background(),
		[]Message{{Role: "user", Content: "hi"}}, defs, "", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	call := resp.ToolCalls[0]
	if call.ID != "call-9" || call.Name != "wikipedia" {
		t.Fatalf("unexpected tool call %+v", call)
	}
	if got, _ := call.Arguments["query"].(string); got != "go" {
		t.Fatalf("arguments not decoded: %+v", call.Arguments)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Fatalf("usage not parsed: %+v", resp.Usage)
	}
}

func TestChat_RetriesServerErrors(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 2 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	provider, err := CreateProvider(testProviderConfig(server.URL))
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	resp, err := provider.Chat(context.Background(),
		[]Message{{Role: "user", Content: "hi"}}, nil, "", nil)
	if err != nil {
		t.Fatalf("chat should succeed after retries: %v", err)
	}
	if resp.Content != "ok" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if hits != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits)
	}
}

func TestChat_DoesNotRetryClientErrors(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	provider, err := CreateProvider(testProviderConfig(server.URL))
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	_, err = provider.Chat(context.Background(),
		[]Message{{Role: "user", Content: "hi"}}, nil, "", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "bad request") {
		t.Fatalf("API error message lost: %v", err)
	}
	if hits != 1 {
		t.Fatalf("client error should not be retried, got %d attempts", hits)
	}
}

func TestToolCall_MarshalWireShape(t *testing.T) {
	msg := Message{
		Role: "assistant",
		ToolCalls: []ToolCall{{
			ID:        "call-1",
			Type:      "function",
			Name:      "wikipedia",
			Arguments: map[string]interface{}{"query": "go"},
		}},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"function":{"name":"wikipedia","arguments":"{\"query\":\"go\"}"}`) {
		t.Fatalf("arguments must be a JSON-encoded string: %s", s)
	}
}

func TestFlattenMessageContent(t *testing.T) {
	if got := flattenMessageContent("plain"); got != "plain" {
		t.Fatalf("string content: %q", got)
	}
	parts := []interface{}{
		map[string]interface{}{"type": "text", "text": "a"},
		map[string]interface{}{"type": "text", "text": "b"},
	}
	if got := flattenMessageContent(parts); got != "ab" {
		t.Fatalf("part list content: %q", got)
	}
	if got := flattenMessageContent(nil); got != "" {
		t.Fatalf("nil content: %q", got)
	}
}
