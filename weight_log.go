package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/nutri-go-api/internal/nutrition"
)

const maxWeightKG = 500

// getMeasurements returns every weigh-in for the authenticated user, oldest first.
// GET /api/measurements. Returns an empty array (not null) if there are none.
func (h *Handler) getMeasurements(c *gin.Context) {
	userID := c.GetInt("user_id")

	ms, err := h.store.ListMeasurements(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("[getMeasurements] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch measurements")
		return
	}
	// Ensure empty array (not null) in JSON
	if ms == nil {
		ms = []nutrition.WeightMeasurement{}
	}
	c.JSON(http.StatusOK, ms)
}

// createMeasurement appends a weigh-in.
// POST /api/measurements. Body: { "date"?: "YYYY-MM-DD", "weight": 72.5 }.
// Posting the same date twice keeps both records.
func (h *Handler) createMeasurement(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date   string  `json:"date"`
		Weight float64 `json:"weight"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = h.today()
	}
	if !nutrition.ValidDate(body.Date) {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.Weight <= 0 || body.Weight > maxWeightKG {
		apiError(c, http.StatusBadRequest, "weight must be between 0 and 500 kg")
		return
	}

	m, err := h.store.CreateMeasurement(c.Request.Context(), userID, nutrition.WeightMeasurement{Date: body.Date, Weight: body.Weight})
	if err != nil {
		h.log.Error("[createMeasurement] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to create measurement")
		return
	}
	c.JSON(http.StatusCreated, m)
}

// deleteMeasurement removes a weigh-in by ID.
// DELETE /api/measurements/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteMeasurement(c *gin.Context) {
	userID := c.GetInt("user_id")

	err := h.store.DeleteMeasurement(c.Request.Context(), userID, c.Param("id"))
	switch {
	case errors.Is(err, errNotFound):
		apiError(c, http.StatusNotFound, "measurement not found")
	case err != nil:
		h.log.Error("[deleteMeasurement] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to delete measurement")
	default:
		c.Status(http.StatusNoContent)
	}
}
