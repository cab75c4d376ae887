package models

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingCacheEntry memoizes one embedding per distinct normalized text.
// The cache is append-only: entries are never updated or deleted.
type EmbeddingCacheEntry struct {
	Generic

	Text      string          `gorm:"uniqueIndex;not null" json:"text"`
	Embedding pq.Float64Array `gorm:"type:float8[];not null" json:"embedding"`
}

func LookupEmbedding(db *gorm.DB, text string) ([]float64, bool, error) {
	var entry EmbeddingCacheEntry
	err := db.Where("text = ?", text).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return entry.Embedding, true, nil
}

// InsertEmbedding stores a freshly computed vector. A concurrent insert of the
// same text is a silent no-op; the existing row wins.
func InsertEmbedding(db *gorm.DB, text string, embedding []float64) error {
	entry := EmbeddingCacheEntry{
		Text:      text,
		Embedding: embedding,
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
}
