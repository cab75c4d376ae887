package controllers

import (
	"reviewly/api"
	"reviewly/internal/retrieval"
	"reviewly/internal/webfallback"
	"reviewly/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// contextK is how many reviews are retrieved as context for one summary.
const contextK = 7

// AskInput describes a summary request for one product scope.
type AskInput struct {
	WorkspaceID string `json:"wsid" binding:"required"`
	ProductID   string `json:"product_id" binding:"required"`
	// Question steers positive and negative summaries; required for those.
	Question    string                `json:"question"`
	SummaryType retrieval.SummaryKind `json:"summary_type"`
	// ProductURL optionally adds the product page as context.
	ProductURL string `json:"product_url"`
}

type AskController struct {
	DB        *gorm.DB
	Searcher  *retrieval.ReviewSearcher
	Generator *retrieval.Generator
	Fetcher   *webfallback.Fetcher
	Logger    *zap.SugaredLogger
}

func (ctrl AskController) Ask(c *gin.Context) {
	var input AskInput
	if err := c.BindJSON(&input); err != nil {
		api.ResultError(c, []string{err.Error()})
		return
	}

	if !retrieval.IsValidSummaryKind(input.SummaryType) {
		input.SummaryType = retrieval.SummaryNeutral
	}
	if input.SummaryType != retrieval.SummaryNeutral && input.Question == "" {
		api.ResultError(c, []string{"question is required for this summary type"})
		return
	}

	ctx := c.Request.Context()

	query := input.Question
	if query == "" {
		query = "reviews"
	}

	docs, err := ctrl.Searcher.Search(ctx, input.WorkspaceID, input.ProductID, query, contextK)
	if err != nil {
		ctrl.Logger.Errorw("review retrieval failed", "error", err)
		api.ResultError(c, nil)
		return
	}

	reviews := make([]string, len(docs))
	for i, doc := range docs {
		reviews[i] = doc.PageContent
	}

	productName, err := models.GetProductName(ctrl.DB, input.WorkspaceID, input.ProductID)
	if err != nil {
		ctrl.Logger.Errorw("product lookup failed", "error", err)
		api.ResultError(c, nil)
		return
	}

	var extraContext string
	if input.ProductURL != "" {
		extraContext, err = ctrl.Fetcher.Content(input.ProductURL)
		if err != nil {
			// The page is supplementary; summarize from reviews alone.
			ctrl.Logger.Warnw("product page fetch failed", "url", input.ProductURL, "error", err)
			extraContext = ""
		}
	}

	summary, err := ctrl.Generator.Summarize(ctx, input.SummaryType, productName, input.Question, reviews, extraContext)
	if err != nil {
		ctrl.Logger.Errorw("summary generation failed", "error", err)
		api.ResultError(c, nil)
		return
	}

	api.ResultData(c, summary)
}
