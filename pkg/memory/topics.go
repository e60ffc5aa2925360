package memory

import "strings"

// academicSubjects is the fixed vocabulary used to index exchanges in
// external memory. Substring match against the lowercased user message.
var academicSubjects = []string{
	"math", "mathematics", "algebra", "calculus", "geometry", "statistics",
	"physics", "chemistry", "biology", "anatomy", "ecology", "genetics",
	"history", "geography", "civics", "political science", "economics",
	"literature", "writing", "grammar", "language", "linguistics",
	"computer science", "programming", "coding", "algorithms",
	"psychology", "sociology", "anthropology", "philosophy",
	"art", "music", "theater", "film", "design",
}

var coarseCategories = []struct {
	topic string
	terms []string
}{
	{"mathematics", []string{"math", "equation", "number", "calculation"}},
	{"science", []string{"science", "experiment", "theory", "natural"}},
	{"history", []string{"history", "past", "century", "ancient", "war", "civilization"}},
	{"literature", []string{"book", "novel", "story", "author", "write", "essay"}},
}

// ExtractTopics derives the topic labels used to file an exchange in
// external memory. Specific subjects first; if none match, one coarse
// category; "general" as last resort. A message matching k subjects
// yields k labels (fan-out is intentional, it enables multi-angle
// retrieval).
func ExtractTopics(message string) []string {
	lower := strings.ToLower(message)

	var found []string
	for _, subject := range academicSubjects {
		if strings.Contains(lower, subject) {
			found = append(found, subject)
		}
	}
	if len(found) > 0 {
		return found
	}

	for _, cat := range coarseCategories {
		for _, term := range cat.terms {
			if strings.Contains(lower, term) {
				return []string{cat.topic}
			}
		}
	}

	return []string{"general"}
}
