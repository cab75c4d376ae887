package models

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Topics are canonical, deduplicated review topics per (workspace, product)
// scope. Near-duplicate phrasings are merged into one row by the similarity
// merge engine; the row keeps an aggregate count and the set of contributing
// review IDs.
type Topic struct {
	Generic

	WorkspaceID string `gorm:"index:idx_topics_scope;not null" json:"workspace_id"`
	ProductID   string `gorm:"index:idx_topics_scope;not null" json:"product_id"`
	// Topic is the canonical display phrase, normalized at creation.
	Topic string `gorm:"not null" json:"topic"`
	// Embedding is the vector of the topic's templated sentence, computed once
	// at creation and never updated.
	Embedding pq.Float64Array `gorm:"type:float8[];not null" json:"-"`
	Count     int             `gorm:"not null;default:1" json:"count"`
	ReviewIDs pq.StringArray  `gorm:"type:text[];not null" json:"review_ids"`
}

func GetScopeTopics(db *gorm.DB, workspaceID, productID string) ([]Topic, error) {
	var topics []Topic
	err := db.Where("workspace_id = ? AND product_id = ?", workspaceID, productID).Find(&topics).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return topics, nil
}

func GetScopeTopicsByCount(db *gorm.DB, workspaceID, productID string) ([]Topic, error) {
	var topics []Topic
	err := db.Where("workspace_id = ? AND product_id = ?", workspaceID, productID).Order("count DESC").Find(&topics).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return topics, nil
}

func CreateTopic(db *gorm.DB, workspaceID, productID, topic string, embedding []float64, reviewID string) (*Topic, error) {
	t := Topic{
		WorkspaceID: workspaceID,
		ProductID:   productID,
		Topic:       topic,
		Embedding:   embedding,
		Count:       1,
		ReviewIDs:   pq.StringArray{reviewID},
	}

	if err := db.Create(&t).Error; err != nil {
		return nil, err
	}

	return &t, nil
}

// AbsorbReview folds one more review into an existing topic: the count is
// incremented and the review ID added to the set in a single guarded UPDATE,
// so concurrent merges cannot lose updates and re-adding an already-present
// review ID is a no-op that leaves the count untouched.
func AbsorbReview(db *gorm.DB, topicID uint, reviewID string) error {
	return db.Model(&Topic{}).
		Where("id = ? AND NOT (? = ANY(review_ids))", topicID, reviewID).
		Updates(map[string]interface{}{
			"count":      gorm.Expr("count + 1"),
			"review_ids": gorm.Expr("array_append(review_ids, ?)", reviewID),
		}).Error
}
