package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Config bounds and tunes one conversation's memory.
type Config struct {
	MainCapacity       int     `json:"main_memory_capacity"`
	AttentionSinkSize  int     `json:"attention_sink_size"`
	RecencyWeight      float64 `json:"recency_weight"`
	RelevanceThreshold float64 `json:"relevance_threshold"`
}

// DefaultConfig mirrors the tutoring service defaults: a ten-exchange
// working window, two attention sinks, recency favored 60/40 over
// relevance.
func DefaultConfig() Config {
	return Config{
		MainCapacity:       10,
		AttentionSinkSize:  2,
		RecencyWeight:      0.6,
		RelevanceThreshold: 0.3,
	}
}

// Stats are cumulative per-conversation counters.
type Stats struct {
	TotalExchanges int `json:"total_exchanges"`
	Pages          int `json:"pages"`
	Retrievals     int `json:"retrievals"`
}

// Memory is the two-tier conversation memory for one conversation id.
// It is not safe for concurrent use; the owning session serializes
// access.
type Memory struct {
	Config         Config
	Main           []Exchange            // bounded working window, oldest first
	External       map[string][]Exchange // topic label -> exchanges
	AttentionSinks []Exchange            // always-retained, FIFO-bounded
	UserProfile    map[string]interface{}
	Feedback       []FeedbackEntry
	Stats          Stats

	scorer Scorer
}

// FeedbackEntry records a user rating for one assistant message.
type FeedbackEntry struct {
	MessageID    string    `json:"message_id"`
	Rating       int       `json:"rating"`
	FeedbackText string    `json:"feedback_text,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// New creates an empty memory. A nil scorer selects keyword overlap, the
// always-available fallback strategy. Zero is a valid weight and
// threshold (pure-relevance ranking, no filter); negative values select
// the defaults.
func New(cfg Config, scorer Scorer) *Memory {
	def := DefaultConfig()
	if cfg.MainCapacity <= 0 {
		cfg.MainCapacity = def.MainCapacity
	}
	if cfg.AttentionSinkSize <= 0 {
		cfg.AttentionSinkSize = def.AttentionSinkSize
	}
	if cfg.RecencyWeight < 0 {
		cfg.RecencyWeight = def.RecencyWeight
	}
	if cfg.RelevanceThreshold < 0 {
		cfg.RelevanceThreshold = def.RelevanceThreshold
	}
	if scorer == nil {
		scorer = KeywordScorer{}
	}
	return &Memory{
		Config:      cfg,
		External:    map[string][]Exchange{},
		UserProfile: map[string]interface{}{},
		scorer:      scorer,
	}
}

// SetScorer swaps the relevance strategy. Used after deserialization,
// which cannot restore the non-persistent scorer.
func (m *Memory) SetScorer(scorer Scorer) {
	if scorer == nil {
		scorer = KeywordScorer{}
	}
	m.scorer = scorer
}

// AddExchange ingests one user/assistant pair. The exchange always enters
// the working window first; the oldest exchange pages out when the window
// overflows. Returns the new window length. Never fails.
func (m *Memory) AddExchange(userMessage, aiMessage string, userMetadata, aiMetadata map[string]interface{}) int {
	now := time.Now().Format(time.RFC3339)

	userMD := map[string]interface{}{"type": "user_message", "timestamp": now}
	for k, v := range userMetadata {
		userMD[k] = v
	}
	aiMD := map[string]interface{}{"type": "ai_message", "timestamp": now}
	for k, v := range aiMetadata {
		aiMD[k] = v
	}

	m.Main = append(m.Main, Exchange{
		User: NewPage(userMessage, userMD),
		AI:   NewPage(aiMessage, aiMD),
	})

	if len(m.Main) > m.Config.MainCapacity {
		m.pageOut()
	}

	m.Stats.TotalExchanges++
	m.updateUserProfile(userMessage, userMetadata)

	return len(m.Main)
}

// pageOut moves the oldest working-window exchange into external memory
// under every topic its user message matches, then evaluates it for
// attention-sink promotion.
func (m *Memory) pageOut() {
	oldest := m.Main[0]
	m.Main = m.Main[1:]

	for _, topic := range ExtractTopics(oldest.User.Content) {
		m.External[topic] = append(m.External[topic], oldest)
	}

	m.Stats.Pages++

	if isSinkCandidate(oldest.User.Content) {
		m.AttentionSinks = append(m.AttentionSinks, oldest)
		if len(m.AttentionSinks) > m.Config.AttentionSinkSize {
			m.AttentionSinks = m.AttentionSinks[1:]
		}
	}
}

type scoredExchange struct {
	score    float64
	exchange Exchange
}

// RetrieveRelevantContext builds the memory block injected into the
// system prompt: attention sinks verbatim, then the top working-window
// hits, then the top external hits under the query's topics. Empty
// sections are omitted.
func (m *Memory) RetrieveRelevantContext(query string, limit int) string {
	if limit <= 0 {
		limit = 3
	}

	var sections []string

	if len(m.AttentionSinks) > 0 {
		lines := make([]string, 0, len(m.AttentionSinks)*2)
		for _, ex := range m.AttentionSinks {
			lines = append(lines, "Attention Sink - Student: "+ex.User.Content)
			lines = append(lines, "Attention Sink - Response: "+ex.AI.Content)
		}
		sections = append(sections, "## Important Context\n"+strings.Join(lines, "\n"))
	}

	fromMain := m.searchSegment(query, m.Main)
	if len(fromMain) > 0 {
		lines := []string{"## Recent Conversation"}
		for i, se := range fromMain {
			if i >= limit {
				break
			}
			lines = append(lines, "Student: "+se.exchange.User.Content)
			lines = append(lines, "Study Buddy: "+truncateContent(se.exchange.AI.Content, 200))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	var candidates []Exchange
	for _, topic := range ExtractTopics(query) {
		candidates = append(candidates, m.External[topic]...)
	}
	fromExternal := m.searchSegment(query, candidates)
	if len(fromExternal) > 0 {
		lines := []string{"## Related Previous Exchanges"}
		for i, se := range fromExternal {
			if i >= limit {
				break
			}
			lines = append(lines, "Student previously asked: "+se.exchange.User.Content)
			lines = append(lines, "You answered: "+truncateContent(se.exchange.AI.Content, 200))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	m.Stats.Retrievals++

	return strings.Join(sections, "\n\n")
}

// searchSegment scores every exchange in a segment against the query,
// combining scorer similarity with recency decay over the last day.
// Scored pages are marked accessed, which keeps them warm for future
// ranking.
func (m *Memory) searchSegment(query string, segment []Exchange) []scoredExchange {
	if len(segment) == 0 {
		return nil
	}

	now := time.Now()
	scored := make([]scoredExchange, 0, len(segment))
	for _, ex := range segment {
		similarity, ok := m.scorer.Score(query, ex.User.Content)
		if !ok {
			continue
		}

		hours := now.Sub(ex.User.LastAccessed).Hours()
		if hours < 0 {
			hours = 0
		}
		recency := 1.0 / (1.0 + hours/24)

		combined := (1-m.Config.RecencyWeight)*similarity + m.Config.RecencyWeight*recency
		scored = append(scored, scoredExchange{score: combined, exchange: ex})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	for _, se := range scored {
		se.exchange.User.Access()
		se.exchange.AI.Access()
	}

	return scored
}

// Summary renders a human-readable digest of the profile and tier sizes.
func (m *Memory) Summary() string {
	var lines []string

	if len(m.UserProfile) > 0 {
		lines = append(lines, "## Student Profile")
		keys := make([]string, 0, len(m.UserProfile))
		for k := range m.UserProfile {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("- %s: %s", titleKey(k), profileValue(m.UserProfile[k])))
		}
	}

	lines = append(lines, "## Memory Statistics")
	lines = append(lines, fmt.Sprintf("- Current session exchanges: %d", len(m.Main)))
	lines = append(lines, fmt.Sprintf("- Total knowledge areas: %d", len(m.External)))
	lines = append(lines, fmt.Sprintf("- Total stored exchanges: %d", m.Stats.TotalExchanges))

	if len(m.External) > 0 {
		topics := make([]string, 0, len(m.External))
		for topic := range m.External {
			topics = append(topics, topic)
		}
		sort.Strings(topics)
		shown := topics
		if len(shown) > 5 {
			shown = shown[:5]
		}
		topicsStr := strings.Join(shown, ", ")
		if len(topics) > 5 {
			topicsStr += fmt.Sprintf(" and %d more", len(topics)-5)
		}
		lines = append(lines, "- Knowledge areas: "+topicsStr)
	}

	return strings.Join(lines, "\n")
}

func profileValue(v interface{}) string {
	switch vv := v.(type) {
	case []string:
		return strings.Join(vv, ", ")
	case []interface{}:
		parts := make([]string, 0, len(vv))
		for _, item := range vv {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func titleKey(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func truncateContent(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
