// Package worker backfills review vectors into Pinecone.
package worker

import (
	"reviewly/internal/retrieval"
	"reviewly/models"

	"github.com/tmc/langchaingo/vectorstores"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// batchSize bounds how many unembedded reviews are pulled from the database
// per pass.
const batchSize = 500

// Embedder pushes reviews that haven't been vectorized yet into the vector
// store and flips their embedded flag.
type Embedder struct {
	db     *gorm.DB
	store  vectorstores.VectorStore
	logger *zap.SugaredLogger
}

func NewEmbedder(db *gorm.DB, store vectorstores.VectorStore, logger *zap.SugaredLogger) *Embedder {
	return &Embedder{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// Run embeds all pending reviews in batches until none remain. Reviews are
// marked embedded only after their batch upserted, so an interrupted run
// re-embeds at most one batch.
func (e *Embedder) Run() (int, error) {
	total := 0

	for {
		reviews, err := models.GetUnembeddedReviews(e.db, batchSize)
		if err != nil {
			return total, err
		}
		if len(reviews) == 0 {
			break
		}

		if err := retrieval.StoreReviews(e.store, reviews); err != nil {
			return total, err
		}

		for _, review := range reviews {
			if err := models.MarkReviewEmbedded(e.db, review.ReviewID); err != nil {
				return total, err
			}
		}

		total += len(reviews)
		e.logger.Infow("embedded review batch", "batch", len(reviews), "total", total)
	}

	return total, nil
}
