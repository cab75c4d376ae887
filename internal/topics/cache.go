package topics

import (
	"context"
	"strings"
)

// EmbeddingCache memoizes phrase embeddings so repeated phrases don't hit the
// embedding provider again. The backing store is append-only.
type EmbeddingCache struct {
	embedder Embedder
	store    EmbeddingStore
}

func NewEmbeddingCache(embedder Embedder, store EmbeddingStore) *EmbeddingCache {
	return &EmbeddingCache{
		embedder: embedder,
		store:    store,
	}
}

// GetOrCompute returns the embedding for text, computing and persisting it on
// first use. Nothing is written when the provider call fails. Two concurrent
// misses on the same text may both call the provider; the store's unique key
// makes the second insert a no-op.
func (c *EmbeddingCache) GetOrCompute(ctx context.Context, text string) ([]float64, error) {
	text = normalizeText(text)

	embedding, ok, err := c.store.Lookup(ctx, text)
	if err != nil {
		return nil, err
	}
	if ok {
		return embedding, nil
	}

	embedding, err = c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.store.Insert(ctx, text, embedding); err != nil {
		return nil, err
	}

	return embedding, nil
}

// normalizeText is the cache key normalization. Case-insensitive so that
// phrasings differing only by case share one entry.
func normalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
