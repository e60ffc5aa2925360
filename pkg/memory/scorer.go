package memory

import "strings"

// Scorer measures query/content similarity for retrieval ranking. The
// similarity is combined with recency by the memory itself; scorers only
// answer "how alike are these texts" and whether the candidate should be
// skipped outright.
type Scorer interface {
	Name() string
	// Score returns a similarity in [0,1] and false when the candidate
	// carries no usable signal and must be excluded from ranking.
	Score(query, content string) (float64, bool)
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "in": {}, "to": {}, "for": {}, "with": {},
	"on": {}, "at": {},
}

// ExtractKeywords returns the lowercased non-stopword tokens of text,
// keeping only words longer than two characters.
func ExtractKeywords(text string) []string {
	words := tokenize(text)
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if _, ok := stopwords[word]; ok {
			continue
		}
		if len(word) <= 2 {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// KeywordScorer ranks by keyword overlap: matched query keywords divided
// by total query keywords. Always available; the default strategy.
type KeywordScorer struct{}

func (KeywordScorer) Name() string { return "keyword" }

func (KeywordScorer) Score(query, content string) (float64, bool) {
	keywords := ExtractKeywords(query)
	if len(keywords) == 0 {
		return 0, false
	}
	lower := strings.ToLower(content)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}
	if matched == 0 {
		return 0, false
	}
	return float64(matched) / float64(len(keywords)), true
}

// EmbeddingScorer ranks by cosine similarity of embedding vectors and
// drops candidates below the relevance threshold.
type EmbeddingScorer struct {
	embedder  Embedder
	threshold float64

	queryText string
	queryVec  []float32
}

func NewEmbeddingScorer(embedder Embedder, threshold float64) *EmbeddingScorer {
	if embedder == nil {
		embedder = NewChargramEmbedder()
	}
	return &EmbeddingScorer{embedder: embedder, threshold: threshold}
}

func (s *EmbeddingScorer) Name() string { return "embedding" }

// EmbedderModelID reports which embedding model backs the scorer.
func (s *EmbeddingScorer) EmbedderModelID() string { return s.embedder.ModelID() }

func (s *EmbeddingScorer) Score(query, content string) (float64, bool) {
	if s.queryText != query || s.queryVec == nil {
		s.queryText = query
		s.queryVec = s.embedder.Embed(query)
	}
	sim := cosineSimilarity(s.queryVec, s.embedder.Embed(content))
	if sim < s.threshold {
		return sim, false
	}
	return sim, true
}
