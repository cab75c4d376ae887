package models

import (
	"errors"

	"gorm.io/gorm"
)

// Reviews are raw customer reviews as ingested from CSV uploads. They are the
// source of truth for review text. In search we use their vector
// representations in Pinecone, not these rows.
type Review struct {
	Generic

	// ReviewID is used to ensure consistency with vector storage. The Pinecone
	// vector for a review carries this ID in its metadata, and the topic
	// ledger is keyed by it.
	ReviewID    string `gorm:"uniqueIndex;not null" json:"review_id"`
	WorkspaceID string `gorm:"index:idx_reviews_scope;not null" json:"workspace_id"`
	ProductID   string `gorm:"index:idx_reviews_scope;not null" json:"product_id"`
	ProductName string `json:"product_name"`
	ReviewTitle string `json:"review_title"`
	ReviewText  string `json:"review_text"`
	Rating      int    `json:"rating"`
	// Embedded flips to true once the review's vector has been upserted to
	// Pinecone. The backfill worker scans on this flag.
	Embedded bool `gorm:"index;not null;default:false" json:"embedded"`
}

func CreateReviews(db *gorm.DB, reviews []Review) error {
	if len(reviews) == 0 {
		return nil
	}

	return db.Create(&reviews).Error
}

func GetUnembeddedReviews(db *gorm.DB, limit int) ([]Review, error) {
	var reviews []Review
	err := db.Where("embedded = ?", false).Limit(limit).Find(&reviews).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return reviews, nil
}

func MarkReviewEmbedded(db *gorm.DB, reviewID string) error {
	return db.Model(&Review{}).Where("review_id = ?", reviewID).Update("embedded", true).Error
}

// GetProductName returns the display name of a product within a workspace, or
// an empty string when no review for it has been ingested yet.
func GetProductName(db *gorm.DB, workspaceID, productID string) (string, error) {
	var review Review
	err := db.Where("workspace_id = ? AND product_id = ?", workspaceID, productID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}

		return "", err
	}

	return review.ProductName, nil
}
