package topics

import (
	"context"

	"reviewly/internal/retrieval"
	"reviewly/models"

	"github.com/tmc/langchaingo/schema"
	"gorm.io/gorm"
)

// GormEmbeddingStore backs the embedding cache with Postgres.
type GormEmbeddingStore struct {
	DB *gorm.DB
}

func (s GormEmbeddingStore) Lookup(ctx context.Context, text string) ([]float64, bool, error) {
	return models.LookupEmbedding(s.DB.WithContext(ctx), text)
}

func (s GormEmbeddingStore) Insert(ctx context.Context, text string, embedding []float64) error {
	return models.InsertEmbedding(s.DB.WithContext(ctx), text, embedding)
}

// GormCatalogueStore backs the topic catalogue with Postgres.
type GormCatalogueStore struct {
	DB *gorm.DB
}

func (s GormCatalogueStore) List(ctx context.Context, scope Scope) ([]models.Topic, error) {
	return models.GetScopeTopics(s.DB.WithContext(ctx), scope.WorkspaceID, scope.ProductID)
}

func (s GormCatalogueStore) Create(ctx context.Context, scope Scope, topic string, embedding []float64, reviewID string) error {
	_, err := models.CreateTopic(s.DB.WithContext(ctx), scope.WorkspaceID, scope.ProductID, topic, embedding, reviewID)
	return err
}

func (s GormCatalogueStore) Absorb(ctx context.Context, topicID uint, reviewID string) error {
	return models.AbsorbReview(s.DB.WithContext(ctx), topicID, reviewID)
}

// GormLedger backs the processed-review ledger with Postgres.
type GormLedger struct {
	DB *gorm.DB
}

func (s GormLedger) IsProcessed(ctx context.Context, reviewID string) (bool, error) {
	return models.IsReviewProcessed(s.DB.WithContext(ctx), reviewID)
}

func (s GormLedger) MarkProcessed(ctx context.Context, reviewID string, scope Scope) error {
	return models.MarkReviewProcessed(s.DB.WithContext(ctx), reviewID, scope.WorkspaceID, scope.ProductID)
}

// VectorSearcher adapts the Pinecone review searcher to the scanner.
type VectorSearcher struct {
	Searcher *retrieval.ReviewSearcher
}

func (s VectorSearcher) Search(ctx context.Context, scope Scope, text string, k int) ([]schema.Document, error) {
	return s.Searcher.Search(ctx, scope.WorkspaceID, scope.ProductID, text, k)
}
