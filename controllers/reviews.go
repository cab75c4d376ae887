package controllers

import (
	"reviewly/api"
	"reviewly/internal/ingest"
	"reviewly/internal/worker"
	"reviewly/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReviewsController struct {
	DB       *gorm.DB
	Embedder *worker.Embedder
	Logger   *zap.SugaredLogger
}

// Upload ingests a CSV of reviews sent as the "file" form field.
func (ctrl ReviewsController) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		api.ResultError(c, []string{"file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		api.ResultError(c, []string{err.Error()})
		return
	}
	defer f.Close()

	reviews, err := ingest.ParseReviews(f)
	if err != nil {
		api.ResultError(c, []string{err.Error()})
		return
	}

	if err := models.CreateReviews(ctrl.DB, reviews); err != nil {
		ctrl.Logger.Errorw("review insert failed", "error", err)
		api.ResultError(c, nil)
		return
	}

	api.ResultData(c, gin.H{"ingested": len(reviews)})
}

// Backfill embeds all reviews whose vectors haven't been upserted yet.
func (ctrl ReviewsController) Backfill(c *gin.Context) {
	total, err := ctrl.Embedder.Run()
	if err != nil {
		ctrl.Logger.Errorw("embedding backfill failed", "embedded", total, "error", err)
		api.ResultError(c, nil)
		return
	}

	api.ResultData(c, gin.H{"embedded": total})
}
