package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const ddgFixture = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc">The <b>Go</b> Documentation</a>
  <a class="result__snippet" href="#">Official docs for the Go programming language.</a>
</div>
<div class="result">
  <a class="result__a" href="https://go.dev/tour/">A Tour of Go</a>
  <a class="result__snippet" href="#">Interactive introduction.</a>
</div>
</body></html>`

func TestWebSearchTool_ExtractsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang docs" {
			t.Errorf("unexpected query %q", got)
		}
		_, _ = w.Write([]byte(ddgFixture))
	}))
	defer server.Close()

	tool := NewWebSearchTool(WebSearchToolOptions{SearchBase: server.URL, MaxResults: 3})
	result := tool.Execute(context.Background(), map[string]interface{}{"query": "golang docs"})

	if result.IsError {
		t.Fatalf("unexpected error: %s", result.ForLLM)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	// Redirect links unwrap to the real target; titles lose their markup.
	if result.Items[0].URL != "https://go.dev/doc/" {
		t.Fatalf("redirect not unwrapped: %q", result.Items[0].URL)
	}
	if result.Items[0].Title != "The Go Documentation" {
		t.Fatalf("tags not stripped from title: %q", result.Items[0].Title)
	}
	if result.Items[0].Snippet != "Official docs for the Go programming language." {
		t.Fatalf("snippet mismatch: %q", result.Items[0].Snippet)
	}
	if result.Items[1].URL != "https://go.dev/tour/" {
		t.Fatalf("plain link mishandled: %q", result.Items[1].URL)
	}
}

func TestWebSearchTool_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	}))
	defer server.Close()

	tool := NewWebSearchTool(WebSearchToolOptions{SearchBase: server.URL})
	result := tool.Execute(context.Background(), map[string]interface{}{"query": "zzz"})
	if result.IsError {
		t.Fatalf("no matches is not an error: %s", result.ForLLM)
	}
	if !strings.Contains(result.ForLLM, "No results found") {
		t.Fatalf("unexpected message %q", result.ForLLM)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected no items, got %v", result.Items)
	}
}

func TestDecodeResultURL(t *testing.T) {
	got := decodeResultURL("//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%20page&rut=xyz")
	if got != "https://example.com/a page" {
		t.Fatalf("unexpected decode %q", got)
	}
	if got := decodeResultURL("https://plain.example/x"); got != "https://plain.example/x" {
		t.Fatalf("plain url should pass through, got %q", got)
	}
}
