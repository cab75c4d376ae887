package retrieval

import (
	"context"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// ReviewSearcher retrieves review documents for a (workspace, product) scope
// from the vector store.
type ReviewSearcher struct {
	store vectorstores.VectorStore
}

func NewReviewSearcher(store vectorstores.VectorStore) *ReviewSearcher {
	return &ReviewSearcher{store: store}
}

// Search returns up to k review documents matching the scope, most relevant
// to text first.
func (s *ReviewSearcher) Search(ctx context.Context, workspaceID, productID, text string, k int) ([]schema.Document, error) {
	// This is type-sensitive. The ingestion side stores both fields as
	// strings; filtering with any other type returns no results.
	return s.store.SimilaritySearch(ctx, text, k, vectorstores.WithFilters(map[string]any{
		"WSID":       workspaceID,
		"product_id": productID,
	}))
}
