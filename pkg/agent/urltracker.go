package agent

import (
	"regexp"
	"sync"
	"time"
)

// TrackedURL records one website consulted while answering, with the
// tool that surfaced it.
type TrackedURL struct {
	URL        string    `json:"url"`
	SourceTool string    `json:"source_tool"`
	Title      string    `json:"title,omitempty"`
	Snippet    string    `json:"snippet,omitempty"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	Hits       int       `json:"hits"`
}

// URLTracker deduplicates consulted websites per conversation. A URL
// seen again only refreshes its metadata; ordering is first-seen.
type URLTracker struct {
	mu       sync.Mutex
	byConv   map[string]map[string]*TrackedURL
	ordering map[string][]string
}

func NewURLTracker() *URLTracker {
	return &URLTracker{
		byConv:   map[string]map[string]*TrackedURL{},
		ordering: map[string][]string{},
	}
}

// Track records a consulted URL. Title and snippet are optional; tools
// that only surface bare URLs pass them empty, and a later sighting with
// metadata fills them in.
func (t *URLTracker) Track(conversationID, url, sourceTool, title, snippet string) {
	if conversationID == "" || url == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	urls, ok := t.byConv[conversationID]
	if !ok {
		urls = map[string]*TrackedURL{}
		t.byConv[conversationID] = urls
	}
	now := time.Now()
	if existing, ok := urls[url]; ok {
		existing.LastSeen = now
		existing.Hits++
		existing.SourceTool = sourceTool
		if title != "" {
			existing.Title = title
		}
		if snippet != "" {
			existing.Snippet = snippet
		}
		return
	}
	urls[url] = &TrackedURL{
		URL:        url,
		SourceTool: sourceTool,
		Title:      title,
		Snippet:    snippet,
		FirstSeen:  now,
		LastSeen:   now,
		Hits:       1,
	}
	t.ordering[conversationID] = append(t.ordering[conversationID], url)
}

// URLs returns the unique websites for a conversation in first-seen
// order.
func (t *URLTracker) URLs(conversationID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	order := t.ordering[conversationID]
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Detailed returns the tracked entries with metadata, in first-seen
// order.
func (t *URLTracker) Detailed(conversationID string) []TrackedURL {
	t.mu.Lock()
	defer t.mu.Unlock()
	urls := t.byConv[conversationID]
	out := make([]TrackedURL, 0, len(urls))
	for _, url := range t.ordering[conversationID] {
		if entry, ok := urls[url]; ok {
			out = append(out, *entry)
		}
	}
	return out
}

func (t *URLTracker) Clear(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byConv, conversationID)
	delete(t.ordering, conversationID)
}

var reURL = regexp.MustCompile(`https?://[^\s)"]+`)

// ExtractURLs pulls http(s) URLs out of free text, for tool outputs that
// embed sources inline rather than reporting them structurally.
func ExtractURLs(text string) []string {
	return reURL.FindAllString(text, -1)
}
