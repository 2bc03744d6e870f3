package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/nutri-go-api/internal/nutrition"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
)

// dailyTarget computes the user's target. A stored profile the calculator
// rejects yields the no-profile fallback target plus the validation message,
// so the daily view still renders.
func (h *Handler) dailyTarget(c *gin.Context) (nutrition.DailyTarget, string, error) {
	p, err := h.loadProfile(c)
	if err != nil {
		return nutrition.DailyTarget{}, "", err
	}
	target, err := nutrition.ComputeDailyTarget(p, h.cfg.Target)
	var verr *nutrition.ValidationError
	if errors.As(err, &verr) {
		fallback, _ := nutrition.ComputeDailyTarget(nutrition.Profile{}, h.cfg.Target)
		return fallback, verr.Error(), nil
	}
	return target, "", err
}

// getDailySummary returns the day's entries, totals, target and what is left.
// GET /api/food-log/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", h.today())

	// Validate date format before querying; an invalid value silently returns no rows.
	if !nutrition.ValidDate(date) {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := h.store.ListMealLogs(c.Request.Context(), userID, logQuery{Date: date})
	if err != nil {
		h.log.Error("[getDailySummary] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch entries")
		return
	}
	// Ensure entries is an empty array (not null) in JSON
	if entries == nil {
		entries = []nutrition.MealLogEntry{}
	}

	target, targetErr, err := h.dailyTarget(c)
	if err != nil {
		h.log.Error("[getDailySummary] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	totals := nutrition.DailyTotals(entries, date)
	c.JSON(http.StatusOK, dailySummary{
		Date:        date,
		Entries:     entries,
		Totals:      totals,
		Target:      target,
		Remaining:   nutrition.Remaining(target, totals),
		TargetError: targetErr,
	})
}

// validateEntry checks a reviewed entry and fills the defaults: source manual,
// date today. It returns the client-facing message on failure.
func (h *Handler) validateEntry(req createEntryRequest) (nutrition.MealLogEntry, string) {
	e := nutrition.MealLogEntry{
		Name:     strings.TrimSpace(req.Name),
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Note:     strings.TrimSpace(req.Note),
		Source:   nutrition.Source(req.Source),
		Date:     req.Date,
	}
	if e.Name == "" {
		return e, "name is required"
	}
	if e.Calories < 0 || e.Protein < 0 || e.Carbs < 0 || e.Fat < 0 {
		return e, "calories and macros must not be negative"
	}
	if e.Source == "" {
		e.Source = nutrition.SourceManual
	}
	if !nutrition.ValidSource(e.Source) {
		return e, "source must be one of: photo, text, recipe, manual"
	}
	if e.Date == "" {
		e.Date = h.today()
	}
	if !nutrition.ValidDate(e.Date) {
		return e, "invalid date, expected YYYY-MM-DD"
	}
	return e, ""
}

// createEntry stores a reviewed meal.
// POST /api/food-log/entries. Returns 201 with the stored entry.
func (h *Handler) createEntry(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	e, msg := h.validateEntry(req)
	if msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	stored, err := h.store.CreateMealLog(c.Request.Context(), c.GetInt("user_id"), e)
	if err != nil {
		h.log.Error("[createEntry] failed", zap.Error(err), zap.Int("user_id", c.GetInt("user_id")))
		apiError(c, http.StatusInternalServerError, "failed to create entry")
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// deleteEntry removes a meal log entry by ID.
// DELETE /api/food-log/entries/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by the store scoping the delete to the user.
func (h *Handler) deleteEntry(c *gin.Context) {
	err := h.store.DeleteMealLog(c.Request.Context(), c.GetInt("user_id"), c.Param("id"))
	switch {
	case errors.Is(err, errNotFound):
		apiError(c, http.StatusNotFound, "entry not found")
	case err != nil:
		h.log.Error("[deleteEntry] failed", zap.Error(err), zap.Int("user_id", c.GetInt("user_id")))
		apiError(c, http.StatusInternalServerError, "failed to delete entry")
	default:
		c.Status(http.StatusNoContent)
	}
}

// getTrends returns the per-day calorie series for the last N days and the
// full weight series.
// GET /api/trends?days=30. days must be between 1 and 365.
func (h *Handler) getTrends(c *gin.Context) {
	userID := c.GetInt("user_id")

	days := defaultTrendDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTrendDays {
			apiError(c, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}

	today, _ := time.Parse(nutrition.DateLayout, h.today())
	since := today.AddDate(0, 0, -days).Format(nutrition.DateLayout)

	entries, err := h.store.ListMealLogs(c.Request.Context(), userID, logQuery{Since: since})
	if err != nil {
		h.log.Error("[getTrends] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch entries")
		return
	}
	measurements, err := h.store.ListMeasurements(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("[getTrends] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch measurements")
		return
	}

	c.JSON(http.StatusOK, trendsResponse{
		Since:    since,
		Calories: nutrition.PeriodSeries(entries, since),
		Weight:   nutrition.WeightSeries(measurements),
	})
}
