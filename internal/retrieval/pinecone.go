package retrieval

import (
	"context"
	"fmt"
	"os"

	"reviewly/models"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/pinecone"
	"golang.org/x/sync/errgroup"
)

// NewPinecone initializes a new Pinecone vector store over the reviews index.
func NewPinecone(ctx context.Context, embedder embeddings.Embedder) (*pinecone.Store, error) {
	store, err := pinecone.New(
		ctx,
		pinecone.WithProjectName(os.Getenv("PINECONE_PROJECT")),
		pinecone.WithIndexName(os.Getenv("PINECONE_INDEX")),
		pinecone.WithEnvironment(os.Getenv("PINECONE_ENVIRONMENT")),
		pinecone.WithEmbedder(embedder),
		pinecone.WithAPIKey(os.Getenv("PINECONE_API_KEY")),
	)

	if err != nil {
		return nil, err
	}

	return &store, nil
}

// StoreReviews upserts review vectors to Pinecone. Scope fields go into
// metadata so that searches can filter on them; the review ID rides along so
// the topic scanner can identify documents.
//
// Langchain sets document text for us.
func StoreReviews(store vectorstores.VectorStore, reviews []models.Review) error {
	const BATCH_SIZE = 50

	docs := make([]schema.Document, len(reviews))
	for i, review := range reviews {
		docs[i] = schema.Document{
			PageContent: fmt.Sprintf("%v %v", review.ReviewTitle, review.ReviewText),
			Metadata: map[string]interface{}{
				// Filter values are type-sensitive. Everything scoped is kept
				// a string so search filters match.
				"review_id":    review.ReviewID,
				"WSID":         review.WorkspaceID,
				"product_id":   review.ProductID,
				"product_name": review.ProductName,
				"rating":       review.Rating,
			},
		}
	}

	errs, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < len(docs); i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > len(docs) {
			end = len(docs)
		}

		func(i, end int) {
			errs.Go(func() error {
				return store.AddDocuments(ctx, docs[i:end])
			})
		}(i, end)
	}

	return errs.Wait()
}
