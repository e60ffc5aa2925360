package memory

import (
	"math"
	"testing"
)

func TestKeywordScorer_FractionOfQueryKeywords(t *testing.T) {
	s := KeywordScorer{}

	score, ok := s.Score("quantum physics entanglement", "a primer on quantum physics")
	if !ok {
		t.Fatal("expected a usable score")
	}
	want := 2.0 / 3.0
	if math.Abs(score-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, score)
	}
}

func TestKeywordScorer_SkipsWhenNoSignal(t *testing.T) {
	s := KeywordScorer{}

	if _, ok := s.Score("the a an", "anything"); ok {
		t.Fatal("stopword-only query should be skipped")
	}
	if _, ok := s.Score("quantum physics", "cooking recipes"); ok {
		t.Fatal("zero-match candidate should be skipped")
	}
}

func TestEmbeddingScorer_DeterministicAndOrdered(t *testing.T) {
	s := NewEmbeddingScorer(NewChargramEmbedder(), 0.0)

	first, _ := s.Score("linear algebra basics", "introduction to linear algebra")
	second, _ := s.Score("linear algebra basics", "introduction to linear algebra")
	if first != second {
		t.Fatalf("embedding score not deterministic: %f != %f", first, second)
	}

	related, _ := s.Score("linear algebra basics", "introduction to linear algebra")
	unrelated, _ := s.Score("linear algebra basics", "medieval French poetry")
	if related <= unrelated {
		t.Fatalf("related text should outscore unrelated: %f <= %f", related, unrelated)
	}
}

func TestEmbeddingScorer_ThresholdFilters(t *testing.T) {
	s := NewEmbeddingScorer(NewChargramEmbedder(), 0.99)
	if _, ok := s.Score("linear algebra", "medieval French poetry"); ok {
		t.Fatal("below-threshold candidate should be skipped")
	}
}

func TestEmbeddingScorer_HashEmbedderBacked(t *testing.T) {
	s := NewEmbeddingScorer(NewHashEmbedder(), 0.0)
	if got := s.EmbedderModelID(); got != "studybuddy-hash-256-v1" {
		t.Fatalf("unexpected embedder %q", got)
	}

	related, _ := s.Score("linear algebra basics", "introduction to linear algebra")
	unrelated, _ := s.Score("linear algebra basics", "medieval French poetry")
	if related <= unrelated {
		t.Fatalf("related text should outscore unrelated: %f <= %f", related, unrelated)
	}
}

func TestEmbedders_NormalizedVectors(t *testing.T) {
	for _, e := range []Embedder{NewChargramEmbedder(), NewHashEmbedder()} {
		vec := e.Embed("some study question about biology")
		var sum float64
		for _, v := range vec {
			sum += float64(v * v)
		}
		if math.Abs(math.Sqrt(sum)-1.0) > 1e-4 {
			t.Fatalf("%s: expected unit vector, got norm %f", e.ModelID(), math.Sqrt(sum))
		}
	}
}
