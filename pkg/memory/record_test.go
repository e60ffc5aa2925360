package memory

import (
	"fmt"
	"testing"
	"time"
)

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	m := newTestMemory()
	m.AddExchange("My name is Alex", "Hi Alex", map[string]interface{}{"message_id": "01ABC"}, nil)
	for i := 0; i < m.Config.MainCapacity+3; i++ {
		m.AddExchange(fmt.Sprintf("physics question %d", i), fmt.Sprintf("answer %d", i), nil, nil)
	}
	m.Feedback = append(m.Feedback, FeedbackEntry{
		MessageID: "01ABC",
		Rating:    5,
		Timestamp: time.Now(),
	})
	_ = m.RetrieveRelevantContext("physics", 3)

	data, err := m.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	restored, err := Deserialize(data, nil)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if len(restored.Main) != len(m.Main) {
		t.Fatalf("window size changed: %d != %d", len(restored.Main), len(m.Main))
	}
	if len(restored.External) != len(m.External) {
		t.Fatalf("external topics changed: %d != %d", len(restored.External), len(m.External))
	}
	if len(restored.AttentionSinks) != len(m.AttentionSinks) {
		t.Fatalf("sinks changed: %d != %d", len(restored.AttentionSinks), len(m.AttentionSinks))
	}
	if restored.Stats != m.Stats {
		t.Fatalf("stats changed: %+v != %+v", restored.Stats, m.Stats)
	}
	if restored.Config != m.Config {
		t.Fatalf("config changed: %+v != %+v", restored.Config, m.Config)
	}
	if len(restored.Feedback) != 1 || restored.Feedback[0].Rating != 5 {
		t.Fatalf("feedback lost: %+v", restored.Feedback)
	}
	if got, _ := restored.UserProfile["name"].(string); got != "alex" {
		t.Fatalf("profile lost: %v", restored.UserProfile)
	}

	orig := m.Main[0].User
	back := restored.Main[0].User
	if back.Content != orig.Content {
		t.Fatalf("page content changed: %q != %q", back.Content, orig.Content)
	}
	if !back.CreatedAt.Equal(orig.CreatedAt) || !back.LastAccessed.Equal(orig.LastAccessed) {
		t.Fatal("page timestamps changed across round trip")
	}
	if back.AccessCount != orig.AccessCount {
		t.Fatalf("access count changed: %d != %d", back.AccessCount, orig.AccessCount)
	}
}

func TestDeserialize_ProfileListsKeepAccumulating(t *testing.T) {
	m := newTestMemory()
	m.AddExchange("i'm interested in algebra", "Great topic", nil, nil)

	data, err := m.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	restored, err := Deserialize(data, nil)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	restored.AddExchange("i'm interested in chemistry", "Also great", nil, nil)

	interests, ok := restored.UserProfile["interests"].([]string)
	if !ok {
		t.Fatalf("interests not a string list after reload: %T", restored.UserProfile["interests"])
	}
	want := []string{"algebra", "chemistry"}
	if len(interests) != 2 || interests[0] != want[0] || interests[1] != want[1] {
		t.Fatalf("reload dropped prior interests: got %v, want %v", interests, want)
	}
}

func TestDeserialize_RejectsGarbage(t *testing.T) {
	if _, err := Deserialize([]byte("{not json"), nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDeserialize_RestoredMemoryKeepsWorking(t *testing.T) {
	m := newTestMemory()
	m.AddExchange("chemistry question", "chemistry answer", nil, nil)

	data, err := m.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	restored, err := Deserialize(data, KeywordScorer{})
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	// The restored memory must accept new exchanges and retrieve.
	restored.AddExchange("another chemistry question", "sure", nil, nil)
	if got := restored.RetrieveRelevantContext("chemistry", 3); got == "" {
		t.Fatal("restored memory retrieved nothing")
	}
}
