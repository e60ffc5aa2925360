package memory

import (
	"encoding/json"
	"fmt"
	"time"
)

type pageRecord struct {
	Content      string                 `json:"content"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    string                 `json:"created_at"`
	LastAccessed string                 `json:"last_accessed"`
	AccessCount  int                    `json:"access_count"`
}

type exchangeRecord struct {
	User pageRecord `json:"user"`
	AI   pageRecord `json:"ai"`
}

type memoryRecord struct {
	Config         Config                      `json:"config"`
	Main           []exchangeRecord            `json:"main_memory"`
	External       map[string][]exchangeRecord `json:"external_memory"`
	AttentionSinks []exchangeRecord            `json:"attention_sinks"`
	UserProfile    map[string]interface{}      `json:"user_profile"`
	Feedback       []FeedbackEntry             `json:"feedback,omitempty"`
	Stats          Stats                       `json:"stats"`
}

func toPageRecord(p *Page) pageRecord {
	return pageRecord{
		Content:      p.Content,
		Metadata:     p.Metadata,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339Nano),
		LastAccessed: p.LastAccessed.Format(time.RFC3339Nano),
		AccessCount:  p.AccessCount,
	}
}

func fromPageRecord(rec pageRecord) (*Page, error) {
	created, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	accessed, err := time.Parse(time.RFC3339Nano, rec.LastAccessed)
	if err != nil {
		return nil, fmt.Errorf("parse last_accessed: %w", err)
	}
	md := rec.Metadata
	if md == nil {
		md = map[string]interface{}{}
	}
	return &Page{
		Content:      rec.Content,
		Metadata:     md,
		CreatedAt:    created,
		LastAccessed: accessed,
		AccessCount:  rec.AccessCount,
	}, nil
}

func toExchangeRecords(exchanges []Exchange) []exchangeRecord {
	recs := make([]exchangeRecord, 0, len(exchanges))
	for _, ex := range exchanges {
		recs = append(recs, exchangeRecord{
			User: toPageRecord(ex.User),
			AI:   toPageRecord(ex.AI),
		})
	}
	return recs
}

func fromExchangeRecords(recs []exchangeRecord) ([]Exchange, error) {
	exchanges := make([]Exchange, 0, len(recs))
	for _, rec := range recs {
		user, err := fromPageRecord(rec.User)
		if err != nil {
			return nil, err
		}
		ai, err := fromPageRecord(rec.AI)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, Exchange{User: user, AI: ai})
	}
	return exchanges, nil
}

// normalizeProfileLists restores list-valued profile entries, which JSON
// decodes as []interface{}, to []string so profile extraction keeps
// accumulating into them after a reload.
func normalizeProfileLists(profile map[string]interface{}) {
	for key, value := range profile {
		items, ok := value.([]interface{})
		if !ok {
			continue
		}
		values := make([]string, 0, len(items))
		for _, item := range items {
			values = append(values, fmt.Sprintf("%v", item))
		}
		profile[key] = values
	}
}

// Serialize renders the full memory state, page timestamps and access
// counts included, as JSON. The scorer is construction state and is not
// persisted.
func (m *Memory) Serialize() ([]byte, error) {
	external := make(map[string][]exchangeRecord, len(m.External))
	for topic, exchanges := range m.External {
		external[topic] = toExchangeRecords(exchanges)
	}
	rec := memoryRecord{
		Config:         m.Config,
		Main:           toExchangeRecords(m.Main),
		External:       external,
		AttentionSinks: toExchangeRecords(m.AttentionSinks),
		UserProfile:    m.UserProfile,
		Feedback:       m.Feedback,
		Stats:          m.Stats,
	}
	return json.MarshalIndent(rec, "", "  ")
}

// Deserialize restores a memory from its serialized form, wiring in the
// given scorer. Round trips with Serialize without loss.
func Deserialize(data []byte, scorer Scorer) (*Memory, error) {
	var rec memoryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode memory: %w", err)
	}

	m := New(rec.Config, scorer)

	var err error
	if m.Main, err = fromExchangeRecords(rec.Main); err != nil {
		return nil, err
	}
	if m.AttentionSinks, err = fromExchangeRecords(rec.AttentionSinks); err != nil {
		return nil, err
	}
	for topic, recs := range rec.External {
		exchanges, err := fromExchangeRecords(recs)
		if err != nil {
			return nil, err
		}
		m.External[topic] = exchanges
	}
	if rec.UserProfile != nil {
		normalizeProfileLists(rec.UserProfile)
		m.UserProfile = rec.UserProfile
	}
	m.Feedback = rec.Feedback
	m.Stats = rec.Stats

	return m, nil
}
