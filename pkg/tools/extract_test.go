package tools

import (
	"context"
	"net"
	"strings"
	"testing"
)

func parseIP(t *testing.T, raw string) net.IP {
	t.Helper()
	ip := net.ParseIP(raw)
	if ip == nil {
		t.Fatalf("invalid test ip %q", raw)
	}
	return ip
}

func TestExtractURLTool_RejectsBadTargets(t *testing.T) {
	tool := NewExtractURLTool(ExtractURLToolOptions{})

	cases := []struct {
		name string
		url  string
	}{
		{"scheme", "ftp://example.com/file"},
		{"missing host", "http:///path"},
		{"localhost", "http://localhost:8080/admin"},
		{"localhost subdomain", "http://foo.localhost/x"},
		{"loopback ip", "http://127.0.0.1/secrets"},
		{"private ip", "http://10.0.0.5/internal"},
		{"link local", "http://169.254.169.254/latest/meta-data/"},
		{"internal suffix", "http://service.internal/x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := tool.Execute(context.Background(), map[string]interface{}{"url": tc.url})
			if !result.IsError {
				t.Fatalf("expected %s to be rejected, got: %s", tc.url, result.ForLLM)
			}
		})
	}
}

func TestExtractURLTool_RequiresURL(t *testing.T) {
	tool := NewExtractURLTool(ExtractURLToolOptions{})
	if result := tool.Execute(context.Background(), map[string]interface{}{}); !result.IsError {
		t.Fatal("missing url should be an error result")
	}
}

func TestExtractText_StripsScriptsAndMarkup(t *testing.T) {
	html := `<html><head><style>body{color:red}</style>
<script>alert("x")</script></head>
<body><h1>Title</h1><p>First   paragraph.</p><p>Second.</p></body></html>`

	text := extractText(html)
	if strings.Contains(text, "alert") || strings.Contains(text, "color:red") {
		t.Fatalf("script/style leaked into text: %q", text)
	}
	if text != "Title First paragraph. Second." {
		t.Fatalf("unexpected extraction %q", text)
	}
}

func TestIsBlockedFetchIP(t *testing.T) {
	blocked := []string{"127.0.0.1", "10.1.2.3", "192.168.1.1", "169.254.169.254", "::1", "fc00::1"}
	for _, raw := range blocked {
		if !isBlockedFetchIP(parseIP(t, raw)) {
			t.Fatalf("%s should be blocked", raw)
		}
	}
	allowed := []string{"93.184.216.34", "2606:2800:220:1:248:1893:25c8:1946"}
	for _, raw := range allowed {
		if isBlockedFetchIP(parseIP(t, raw)) {
			t.Fatalf("%s should be allowed", raw)
		}
	}
}
