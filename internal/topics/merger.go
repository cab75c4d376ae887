package topics

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Merger decides whether a candidate phrase is a new topic for its scope or
// another mention of an existing one.
type Merger struct {
	cache *EmbeddingCache
	store CatalogueStore
}

func NewMerger(cache *EmbeddingCache, store CatalogueStore) *Merger {
	return &Merger{
		cache: cache,
		store: store,
	}
}

// MergeOrCreate folds one candidate phrase from a review into the scope's
// catalogue. The first existing entry whose similarity reaches MergeThreshold
// absorbs the review; otherwise a new entry is created with count 1. Empty
// phrases are ignored.
//
// Catalogues are expected to stay small (tens of entries per scope), so the
// full in-memory comparison is fine.
func (m *Merger) MergeOrCreate(ctx context.Context, scope Scope, phrase, reviewID string) error {
	phrase = NormalizeTopic(phrase)
	if phrase == "" {
		return nil
	}

	embedding, err := m.cache.GetOrCompute(ctx, topicSentence(phrase))
	if err != nil {
		return err
	}

	existing, err := m.store.List(ctx, scope)
	if err != nil {
		return err
	}

	for _, entry := range existing {
		if CosineSimilarity(embedding, entry.Embedding) >= MergeThreshold {
			return m.store.Absorb(ctx, entry.ID, reviewID)
		}
	}

	return m.store.Create(ctx, scope, phrase, embedding, reviewID)
}

// NormalizeTopic canonicalizes a candidate phrase for display and identity.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// topicSentence wraps a phrase in a fixed sentence before embedding. Short
// bare phrases produce unstable vectors at the similarity threshold we use;
// the template is for embeddings only, never for display.
func topicSentence(topic string) string {
	return fmt.Sprintf("This review discusses the %v of the product.", topic)
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// the vectors differ in length or either has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
