package tools

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ExtractURLTool fetches a page the user pointed at and reduces it to
// readable text. Targets resolving to private or local networks are
// refused, including across redirects.
type ExtractURLTool struct {
	maxChars int
	resolver *net.Resolver
}

type ExtractURLToolOptions struct {
	MaxChars int
}

func NewExtractURLTool(opts ExtractURLToolOptions) *ExtractURLTool {
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = 8000
	}
	return &ExtractURLTool{maxChars: maxChars}
}

func (t *ExtractURLTool) Name() string {
	return "extract_url"
}

func (t *ExtractURLTool) Description() string {
	return "Fetch a specific URL and extract its readable text content. Use when the user shares a link or asks about a specific page."
}

func (t *ExtractURLTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to fetch",
			},
		},
		"required": []string{"url"},
	}
}

func (t *ExtractURLTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	urlStr, ok := args["url"].(string)
	if !ok || strings.TrimSpace(urlStr) == "" {
		return ErrorResult("url is required")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return ErrorResult(fmt.Sprintf("invalid URL: %v", err))
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return ErrorResult("only http/https URLs are allowed")
	}
	if parsedURL.Host == "" {
		return ErrorResult("missing domain in URL")
	}

	if err := t.validateTargetHost(ctx, parsedURL.Hostname()); err != nil {
		return ErrorResult(fmt.Sprintf("blocked URL target: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return t.validateTargetHost(ctx, req.URL.Hostname())
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return ErrorResult(fmt.Sprintf("request failed: %v", err)).WithError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to read response: %v", err)).WithError(err)
	}

	text := extractText(string(body))
	truncated := false
	if len(text) > t.maxChars {
		text = text[:t.maxChars]
		truncated = true
	}

	forLLM := fmt.Sprintf("Content from %s (status %d):\n%s", urlStr, resp.StatusCode, text)
	if truncated {
		forLLM += "\n[content truncated]"
	}
	return TextResult(forLLM).WithItems([]SearchItem{{URL: urlStr, Title: parsedURL.Host}})
}

var (
	reScript = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	reStyle  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
)

func extractText(html string) string {
	html = reScript.ReplaceAllString(html, " ")
	html = reStyle.ReplaceAllString(html, " ")
	text := stripTags(html)
	return strings.Join(strings.Fields(text), " ")
}

func (t *ExtractURLTool) validateTargetHost(ctx context.Context, host string) error {
	normalizedHost := strings.TrimSuffix(strings.ToLower(host), ".")
	if normalizedHost == "" {
		return fmt.Errorf("missing host")
	}
	if normalizedHost == "localhost" ||
		strings.HasSuffix(normalizedHost, ".localhost") ||
		strings.HasSuffix(normalizedHost, ".local") ||
		strings.HasSuffix(normalizedHost, ".internal") {
		return fmt.Errorf("host %q resolves to local/private network", host)
	}

	if ip := net.ParseIP(normalizedHost); ip != nil {
		if isBlockedFetchIP(ip) {
			return fmt.Errorf("IP %s is not allowed", ip.String())
		}
		return nil
	}

	lookupCtx := ctx
	cancel := func() {}
	if _, hasDeadline := lookupCtx.Deadline(); !hasDeadline {
		lookupCtx, cancel = context.WithTimeout(lookupCtx, 5*time.Second)
	}
	defer cancel()

	resolver := t.resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupIPAddr(lookupCtx, normalizedHost)
	if err != nil {
		return fmt.Errorf("resolve host %q: %w", host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("resolve host %q: no addresses found", host)
	}
	for _, addr := range addrs {
		if isBlockedFetchIP(addr.IP) {
			return fmt.Errorf("resolved address %s is not allowed", addr.IP.String())
		}
	}
	return nil
}

var blockedFetchPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("192.88.99.0/24"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("224.0.0.0/4"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("::/128"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("ff00::/8"),
	netip.MustParsePrefix("2001:db8::/32"),
}

func isBlockedFetchIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified() {
		return true
	}

	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return true
	}
	for _, prefix := range blockedFetchPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
