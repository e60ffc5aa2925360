package memory

import (
	"fmt"
	"strings"
	"testing"
)

func newTestMemory() *Memory {
	return New(DefaultConfig(), nil)
}

func TestNew_ZeroWeightsAreHonored(t *testing.T) {
	m := New(Config{
		MainCapacity:       5,
		AttentionSinkSize:  1,
		RecencyWeight:      0,
		RelevanceThreshold: 0,
	}, nil)

	if m.Config.RecencyWeight != 0 {
		t.Fatalf("expected recency weight 0 preserved, got %v", m.Config.RecencyWeight)
	}
	if m.Config.RelevanceThreshold != 0 {
		t.Fatalf("expected relevance threshold 0 preserved, got %v", m.Config.RelevanceThreshold)
	}

	def := DefaultConfig()
	m = New(Config{
		MainCapacity:       5,
		AttentionSinkSize:  1,
		RecencyWeight:      -1,
		RelevanceThreshold: -1,
	}, nil)

	if m.Config.RecencyWeight != def.RecencyWeight {
		t.Fatalf("expected default recency weight %v for negative input, got %v", def.RecencyWeight, m.Config.RecencyWeight)
	}
	if m.Config.RelevanceThreshold != def.RelevanceThreshold {
		t.Fatalf("expected default relevance threshold %v for negative input, got %v", def.RelevanceThreshold, m.Config.RelevanceThreshold)
	}
}

func TestAddExchange_WindowNeverExceedsCapacity(t *testing.T) {
	m := newTestMemory()

	for i := 0; i < 25; i++ {
		size := m.AddExchange(
			fmt.Sprintf("question about physics number %d", i),
			fmt.Sprintf("answer %d", i),
			nil, nil)
		if size > m.Config.MainCapacity {
			t.Fatalf("working window grew to %d, capacity is %d", size, m.Config.MainCapacity)
		}
	}

	if len(m.Main) != m.Config.MainCapacity {
		t.Fatalf("expected full window of %d, got %d", m.Config.MainCapacity, len(m.Main))
	}
	if m.Stats.TotalExchanges != 25 {
		t.Fatalf("expected 25 total exchanges, got %d", m.Stats.TotalExchanges)
	}
	if m.Stats.Pages != 15 {
		t.Fatalf("expected 15 page-outs, got %d", m.Stats.Pages)
	}
}

func TestPageOut_FansOutToEveryMatchedTopic(t *testing.T) {
	m := newTestMemory()

	// First exchange matches both physics and chemistry, then filler
	// pushes it out of the window.
	m.AddExchange("how do physics and chemistry overlap in thermodynamics", "they overlap", nil, nil)
	for i := 0; i < m.Config.MainCapacity; i++ {
		m.AddExchange(fmt.Sprintf("filler question %d", i), "filler answer", nil, nil)
	}

	if len(m.External["physics"]) != 1 {
		t.Fatalf("expected paged exchange under physics, got %d", len(m.External["physics"]))
	}
	if len(m.External["chemistry"]) != 1 {
		t.Fatalf("expected paged exchange under chemistry, got %d", len(m.External["chemistry"]))
	}
	if m.External["physics"][0].User != m.External["chemistry"][0].User {
		t.Fatal("topic entries should share the same underlying pages")
	}
}

func TestPageOut_PromotesSinkCandidatesWithinBound(t *testing.T) {
	m := newTestMemory()

	m.AddExchange("My name is Alex and I want to learn linear algebra", "Nice to meet you, Alex", nil, nil)
	m.AddExchange("my goal is to pass the physics exam", "Good goal", nil, nil)
	m.AddExchange("I prefer visual explanations, remember this", "Noted", nil, nil)
	for i := 0; i < m.Config.MainCapacity+2; i++ {
		m.AddExchange(fmt.Sprintf("filler question %d", i), "filler answer", nil, nil)
	}

	if len(m.AttentionSinks) != m.Config.AttentionSinkSize {
		t.Fatalf("expected %d sinks, got %d", m.Config.AttentionSinkSize, len(m.AttentionSinks))
	}
	// FIFO: the name exchange was flagged first and should have been
	// displaced by the two later candidates.
	for _, sink := range m.AttentionSinks {
		if strings.Contains(sink.User.Content, "My name is Alex") {
			t.Fatal("oldest sink should have been evicted FIFO")
		}
	}
}

func TestAddExchange_ExtractsUserProfile(t *testing.T) {
	m := newTestMemory()

	m.AddExchange("My name is Alex", "Hi Alex", nil, nil)
	m.AddExchange("I want to learn about linear algebra", "Sure", nil, nil)
	m.AddExchange("I want to learn about linear algebra", "Again, sure", nil, nil)

	if got, _ := m.UserProfile["name"].(string); got != "alex" {
		t.Fatalf("expected extracted name %q, got %q", "alex", got)
	}
	interests, _ := m.UserProfile["learning_interests"].([]string)
	if len(interests) != 1 || interests[0] != "linear algebra" {
		t.Fatalf("expected deduplicated learning interest list, got %v", interests)
	}
}

func TestRetrieveRelevantContext_SectionsAndTruncation(t *testing.T) {
	m := newTestMemory()

	longAnswer := strings.Repeat("x", 500)
	m.AddExchange("my name is Alex, remember this", "Noted, Alex", nil, nil)
	for i := 0; i < m.Config.MainCapacity; i++ {
		m.AddExchange(fmt.Sprintf("filler question %d", i), "filler answer", nil, nil)
	}
	m.AddExchange("explain the physics of pendulums", longAnswer, nil, nil)

	ctx := m.RetrieveRelevantContext("physics of pendulums", 3)

	if !strings.Contains(ctx, "## Important Context") {
		t.Fatalf("expected attention sink section, got:\n%s", ctx)
	}
	if !strings.Contains(ctx, "Attention Sink - Student: my name is Alex, remember this") {
		t.Fatalf("sink content missing:\n%s", ctx)
	}
	if !strings.Contains(ctx, "## Recent Conversation") {
		t.Fatalf("expected recent conversation section, got:\n%s", ctx)
	}
	if strings.Contains(ctx, longAnswer) {
		t.Fatal("assistant content should be truncated in retrieval")
	}
	if !strings.Contains(ctx, strings.Repeat("x", 200)+"...") {
		t.Fatal("expected 200-char truncation with ellipsis")
	}
	if m.Stats.Retrievals != 1 {
		t.Fatalf("expected retrieval counter bump, got %d", m.Stats.Retrievals)
	}
}

func TestRetrieveRelevantContext_EmptyMemoryIsEmpty(t *testing.T) {
	m := newTestMemory()
	if got := m.RetrieveRelevantContext("anything", 3); got != "" {
		t.Fatalf("expected empty retrieval, got %q", got)
	}
}

func TestRetrieveRelevantContext_ExternalSection(t *testing.T) {
	m := newTestMemory()

	m.AddExchange("what is quantum physics entanglement", "spooky action at a distance", nil, nil)
	for i := 0; i < m.Config.MainCapacity; i++ {
		m.AddExchange(fmt.Sprintf("unrelated cooking question %d", i), "recipe answer", nil, nil)
	}

	ctx := m.RetrieveRelevantContext("quantum physics entanglement", 3)
	if !strings.Contains(ctx, "## Related Previous Exchanges") {
		t.Fatalf("expected external memory section, got:\n%s", ctx)
	}
	if !strings.Contains(ctx, "Student previously asked: what is quantum physics entanglement") {
		t.Fatalf("paged exchange missing from retrieval:\n%s", ctx)
	}
}

func TestSummary_ProfileStatsAndTopicCap(t *testing.T) {
	m := newTestMemory()
	m.UserProfile["name"] = "alex"
	m.UserProfile["learning_interests"] = []string{"algebra", "calculus"}
	for _, topic := range []string{"math", "physics", "chemistry", "biology", "history", "art", "music"} {
		m.External[topic] = []Exchange{}
	}
	m.Stats.TotalExchanges = 12

	summary := m.Summary()

	if !strings.Contains(summary, "## Student Profile") {
		t.Fatalf("missing profile section:\n%s", summary)
	}
	if !strings.Contains(summary, "- Name: alex") {
		t.Fatalf("missing title-cased profile line:\n%s", summary)
	}
	if !strings.Contains(summary, "- Learning Interests: algebra, calculus") {
		t.Fatalf("missing joined list value:\n%s", summary)
	}
	if !strings.Contains(summary, "- Total stored exchanges: 12") {
		t.Fatalf("missing stats line:\n%s", summary)
	}
	if !strings.Contains(summary, "and 2 more") {
		t.Fatalf("expected topic list capped at 5 with remainder note:\n%s", summary)
	}
}

func TestExtractTopics(t *testing.T) {
	topics := ExtractTopics("I need help with calculus and physics homework")
	if len(topics) < 2 {
		t.Fatalf("expected subject matches, got %v", topics)
	}

	fallback := ExtractTopics("help me solve this equation please")
	if len(fallback) != 1 || fallback[0] != "mathematics" {
		t.Fatalf("expected coarse category fallback, got %v", fallback)
	}

	generic := ExtractTopics("hello there")
	if len(generic) != 1 || generic[0] != "general" {
		t.Fatalf("expected general fallback, got %v", generic)
	}
}
