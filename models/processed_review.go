package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProcessedReviews is the idempotence ledger for topic cataloguing. A row
// exists once all of a review's candidate topics have been merged; scans skip
// reviews recorded here. A review that fails mid-merge is not recorded and
// will be retried by a later scan (at-least-once).
type ProcessedReview struct {
	Generic

	ReviewID    string `gorm:"uniqueIndex;not null" json:"review_id"`
	WorkspaceID string `gorm:"not null" json:"workspace_id"`
	ProductID   string `gorm:"not null" json:"product_id"`
}

func IsReviewProcessed(db *gorm.DB, reviewID string) (bool, error) {
	var record ProcessedReview
	err := db.Where("review_id = ?", reviewID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// MarkReviewProcessed records a review as fully contributed. Marking an
// already-recorded review is a silent no-op.
func MarkReviewProcessed(db *gorm.DB, reviewID, workspaceID, productID string) error {
	record := ProcessedReview{
		ReviewID:    reviewID,
		WorkspaceID: workspaceID,
		ProductID:   productID,
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}
