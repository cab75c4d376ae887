// Package topics maintains a deduplicated catalogue of review topics per
// (workspace, product) scope. Candidate phrases extracted from individual
// reviews are merged into the catalogue by embedding similarity, with a
// ledger guaranteeing each review contributes at most once.
package topics

import (
	"context"

	"reviewly/models"

	"github.com/tmc/langchaingo/schema"
)

// MergeThreshold is the minimum cosine similarity for treating a candidate
// phrase as the same topic as an existing catalogue entry.
const MergeThreshold = 0.60

// Scope isolates review corpora and topic catalogues per workspace/product.
type Scope struct {
	WorkspaceID string
	ProductID   string
}

// Embedder turns text into a vector. Satisfied by langchaingo embedders.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// EmbeddingStore is the persistent phrase-to-vector cache.
type EmbeddingStore interface {
	Lookup(ctx context.Context, text string) ([]float64, bool, error)
	Insert(ctx context.Context, text string, embedding []float64) error
}

// CatalogueStore persists per-scope topic entries.
type CatalogueStore interface {
	List(ctx context.Context, scope Scope) ([]models.Topic, error)
	Create(ctx context.Context, scope Scope, topic string, embedding []float64, reviewID string) error
	// Absorb atomically increments the entry's count and adds the review ID
	// to its set; adding an already-present ID must be a no-op.
	Absorb(ctx context.Context, topicID uint, reviewID string) error
}

// Ledger records which reviews have already been folded into a catalogue.
type Ledger interface {
	IsProcessed(ctx context.Context, reviewID string) (bool, error)
	MarkProcessed(ctx context.Context, reviewID string, scope Scope) error
}

// Searcher pages over a scope's review documents, most relevant first.
type Searcher interface {
	Search(ctx context.Context, scope Scope, text string, k int) ([]schema.Document, error)
}

// Extractor produces candidate topic phrases for one review. Malformed model
// output yields an empty slice and a nil error; an error means the review
// should be retried later.
type Extractor interface {
	ExtractTopics(ctx context.Context, reviewText string) ([]string, error)
}
