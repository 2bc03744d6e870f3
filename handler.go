package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/nutri-go-api/internal/nutrition"
)

// Handler holds shared dependencies (store, AI client, config) for all route handlers.
type Handler struct {
	store Store
	ai    analyzer
	log   *zap.Logger
	cfg   config
	now   func() time.Time // overridable for tests
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// today returns the current calendar date in nutrition.DateLayout.
func (h *Handler) today() string {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	return now().Format(nutrition.DateLayout)
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.GET("/profile/target", h.getTarget)
	api.GET("/profile/assessment", h.getAssessment)
	api.PUT("/profile/assessment", h.putAssessment)

	api.GET("/food-log/daily", h.getDailySummary)
	api.POST("/food-log/entries", h.createEntry)
	api.DELETE("/food-log/entries/:id", h.deleteEntry)
	api.POST("/food-log/analyze", h.analyzeMeal)
	api.POST("/food-log/recipe-suggestion", h.suggestRecipe)
	api.GET("/trends", h.getTrends)

	api.GET("/measurements", h.getMeasurements)
	api.POST("/measurements", h.createMeasurement)
	api.DELETE("/measurements/:id", h.deleteMeasurement)

	api.GET("/plans/current", h.getCurrentPlan)
	api.POST("/plans/generate", h.generatePlan)

	api.GET("/ai/status", h.getAIStatus)
}
