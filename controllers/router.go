package controllers

import (
	"github.com/gin-gonic/gin"
)

type Router struct {
	HealthController  *HealthController
	AskController     *AskController
	TopicsController  *TopicsController
	ReviewsController *ReviewsController
}

func (r Router) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", r.HealthController.Status)

	router.POST("/ask", r.AskController.Ask)

	router.GET("/topics", r.TopicsController.List)
	router.POST("/topics/scan", r.TopicsController.Scan)

	router.POST("/reviews", r.ReviewsController.Upload)
	router.POST("/reviews/backfill", r.ReviewsController.Backfill)
}
