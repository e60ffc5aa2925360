package memory

import (
	"regexp"
	"strings"
)

// attentionSinkPhrases flag exchanges carrying durable facts about the
// user (identity, goals, preferences). The test is a boolean keyword
// match; sinks are kept FIFO among flagged exchanges, not re-ranked.
var attentionSinkPhrases = []string{
	"my name is", "i am", "i'm", "my goal", "my learning",
	"i want to", "i need to", "i prefer", "my background",
	"my major", "my field", "remember this", "important",
}

func isSinkCandidate(userContent string) bool {
	lower := strings.ToLower(userContent)
	for _, phrase := range attentionSinkPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

type profilePattern struct {
	re  *regexp.Regexp
	key string
}

// Profile keys holding lists accumulate values with dedup; the rest are
// scalar overwrite-on-match.
var listProfileKeys = map[string]bool{
	"field_of_study":     true,
	"learning_interests": true,
	"interests":          true,
}

var profilePatterns = []profilePattern{
	{regexp.MustCompile(`i'?m in (elementary|middle|high) school`), "education_level"},
	{regexp.MustCompile(`i'?m a (freshman|sophomore|junior|senior|college|university|graduate|phd) student`), "education_level"},
	{regexp.MustCompile(`i'?m studying ([a-zA-Z\s]+) at ([a-zA-Z\s]+)`), "field_of_study"},
	{regexp.MustCompile(`i want to learn about ([a-zA-Z\s]+)`), "learning_interests"},
	{regexp.MustCompile(`i'?m interested in ([a-zA-Z\s]+)`), "interests"},
	{regexp.MustCompile(`my name is ([a-zA-Z\s]+)`), "name"},
	{regexp.MustCompile(`call me ([a-zA-Z\s]+)`), "name"},
}

// updateUserProfile extracts profile facts from a user message and merges
// metadata keys prefixed "user_" (prefix stripped, overwrite).
func (m *Memory) updateUserProfile(message string, metadata map[string]interface{}) {
	lower := strings.ToLower(message)

	for _, pp := range profilePatterns {
		match := pp.re.FindStringSubmatch(lower)
		if match == nil {
			continue
		}
		value := strings.TrimSpace(match[1])
		if value == "" {
			continue
		}
		if listProfileKeys[pp.key] {
			existing, _ := m.UserProfile[pp.key].([]string)
			found := false
			for _, v := range existing {
				if v == value {
					found = true
					break
				}
			}
			if !found {
				m.UserProfile[pp.key] = append(existing, value)
			}
		} else {
			m.UserProfile[pp.key] = value
		}
	}

	for key, value := range metadata {
		if strings.HasPrefix(key, "user_") {
			m.UserProfile[strings.TrimPrefix(key, "user_")] = value
		}
	}
}
