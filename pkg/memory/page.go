// Package memory implements the hierarchical conversation memory for the
// search agent: a bounded working window, an unbounded topic-indexed
// external store, a small set of always-retained attention sinks, and an
// incrementally extracted user profile. The design borrows the OS paging
// vocabulary: exchanges page out of the working window into long-term
// storage when the window overflows.
package memory

import "time"

// Page is a single message held in memory. Content and CreatedAt are
// immutable after creation; LastAccessed and AccessCount change only
// through Access.
type Page struct {
	Content      string
	Metadata     map[string]interface{}
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  int
}

// NewPage creates a page for a message with optional metadata.
func NewPage(content string, metadata map[string]interface{}) *Page {
	now := time.Now()
	md := map[string]interface{}{}
	for k, v := range metadata {
		md[k] = v
	}
	return &Page{
		Content:      content,
		Metadata:     md,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  0,
	}
}

// Access marks the page as read. Reads bump recency so frequently
// relevant pages stay warm in future ranking.
func (p *Page) Access() *Page {
	p.LastAccessed = time.Now()
	p.AccessCount++
	return p
}

// Exchange pairs one user turn with the assistant's reply. It is the
// atomic unit of memory: the two pages always move and persist together.
type Exchange struct {
	User *Page
	AI   *Page
}
