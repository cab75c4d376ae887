package controllers

import (
	"reviewly/api"
	"reviewly/internal/topics"
	"reviewly/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultScanLimit caps how many reviews one scan request considers.
const defaultScanLimit = 15000

// ScanInput triggers a topic cataloguing pass over one product scope.
type ScanInput struct {
	WorkspaceID string `json:"wsid" binding:"required"`
	ProductID   string `json:"product_id" binding:"required"`
	Limit       int    `json:"limit"`
}

type TopicsController struct {
	DB      *gorm.DB
	Scanner *topics.Scanner
	Logger  *zap.SugaredLogger
}

func (ctrl TopicsController) Scan(c *gin.Context) {
	var input ScanInput
	if err := c.BindJSON(&input); err != nil {
		api.ResultError(c, []string{err.Error()})
		return
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultScanLimit
	}

	scope := topics.Scope{
		WorkspaceID: input.WorkspaceID,
		ProductID:   input.ProductID,
	}

	if err := ctrl.Scanner.ScanScope(c.Request.Context(), scope, limit); err != nil {
		ctrl.Logger.Errorw("topic scan failed",
			"workspace_id", scope.WorkspaceID,
			"product_id", scope.ProductID,
			"error", err,
		)
		api.ResultError(c, nil)
		return
	}

	api.ResultSuccess(c)
}

func (ctrl TopicsController) List(c *gin.Context) {
	workspaceID := c.Query("wsid")
	productID := c.Query("product_id")
	if workspaceID == "" || productID == "" {
		api.ResultError(c, []string{"wsid and product_id are required"})
		return
	}

	entries, err := models.GetScopeTopicsByCount(ctrl.DB, workspaceID, productID)
	if err != nil {
		ctrl.Logger.Errorw("topic listing failed", "error", err)
		api.ResultError(c, nil)
		return
	}

	api.ResultData(c, entries)
}
