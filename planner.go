package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/nutri-go-api/internal/nutrition"
)

// generatePlanRequest is the optional body for POST /api/plans/generate.
// A supplied assessment is saved before the plan is requested.
type generatePlanRequest struct {
	Assessment *nutrition.Assessment `json:"assessment"`
}

const planPromptTemplate = `You are a nutritionist. Create a detailed, highly personalized weekly meal plan (7 days).
User profile: %s
Daily target: %d kcal (protein %.0f g, carbs %.0f g, fat %.0f g)
Activity level: %s
Diet: %s
Allergies: %s
Medical conditions: %s
Meals per day: %d

Return a JSON object keyed by weekday (%s). Each day is an object with:
- "breakfast" (string)
- "lunch" (string)
- "dinner" (string)
- "snack" (string, may be empty)
- "total_calories" (number, kcal for the day)
Return only valid JSON, no explanation.`

// planPrompt builds the weekly plan prompt from the profile, assessment and target.
func planPrompt(p nutrition.Profile, a nutrition.Assessment, target nutrition.DailyTarget) string {
	profile, _ := json.Marshal(p)
	orNone := func(s string) string {
		if s == "" {
			return "none"
		}
		return s
	}
	return fmt.Sprintf(planPromptTemplate,
		profile,
		target.TargetCalories, target.ProteinG, target.CarbsG, target.FatG,
		a.ActivityLevel, a.DietType, orNone(a.Allergies), orNone(a.Conditions), a.MealsPerDay,
		strings.Join(nutrition.Weekdays, ", "))
}

// getCurrentPlan returns the latest generated weekly plan.
// GET /api/plans/current. 404 until a plan has been generated.
func (h *Handler) getCurrentPlan(c *gin.Context) {
	userID := c.GetInt("user_id")

	plan, err := h.store.GetWeeklyPlan(c.Request.Context(), userID)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "no plan generated yet")
		return
	}
	if err != nil {
		h.log.Error("[getCurrentPlan] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// generatePlan asks the AI for a weekly plan and stores it, replacing the
// previous one.
// POST /api/plans/generate. Body (optional): { "assessment": {...} }.
func (h *Handler) generatePlan(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req generatePlanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var assessment nutrition.Assessment
	if req.Assessment != nil {
		a, err := req.Assessment.Normalize()
		if err != nil {
			if !validationFailure(c, err) {
				apiError(c, http.StatusBadRequest, err.Error())
			}
			return
		}
		// The questionnaire answers are kept even if generation fails below.
		if err := h.store.SaveAssessment(c.Request.Context(), userID, a); err != nil {
			h.log.Error("[generatePlan] failed", zap.Error(err), zap.Int("user_id", userID))
			apiError(c, http.StatusInternalServerError, "failed to save assessment")
			return
		}
		assessment = a
	} else {
		a, err := h.loadAssessment(c)
		if err != nil {
			h.log.Error("[generatePlan] failed", zap.Error(err), zap.Int("user_id", userID))
			apiError(c, http.StatusInternalServerError, "failed to fetch assessment")
			return
		}
		assessment = a
	}

	profile, err := h.loadProfile(c)
	if err != nil {
		h.log.Error("[generatePlan] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	target, _, err := h.dailyTarget(c)
	if err != nil {
		h.log.Error("[generatePlan] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	content, err := h.callAI(c, planPrompt(profile, assessment, target), nil)
	if err != nil {
		h.aiFailure(c, "generatePlan", err)
		return
	}
	plan, err := nutrition.DecodeWeeklyPlan([]byte(content))
	if err != nil {
		h.aiFailure(c, "generatePlan", err)
		return
	}

	now := time.Now
	if h.now != nil {
		now = h.now
	}
	plan.GeneratedAt = now().UTC()

	if err := h.store.SaveWeeklyPlan(c.Request.Context(), userID, plan); err != nil {
		h.log.Error("[generatePlan] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to save plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}
