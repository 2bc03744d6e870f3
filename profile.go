package main

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/nutri-go-api/internal/nutrition"
)

// loadProfile returns the stored profile, or an empty maintenance profile for
// a user who has never saved one.
func (h *Handler) loadProfile(c *gin.Context) (nutrition.Profile, error) {
	p, err := h.store.GetProfile(c.Request.Context(), c.GetInt("user_id"))
	if errors.Is(err, errNotFound) {
		return nutrition.Profile{Goal: nutrition.Maintenance}, nil
	}
	return p, err
}

// validationFailure writes a 400 for a *nutrition.ValidationError and reports
// whether err was one.
func validationFailure(c *gin.Context, err error) bool {
	var verr *nutrition.ValidationError
	if errors.As(err, &verr) {
		apiError(c, http.StatusBadRequest, verr.Error())
		return true
	}
	return false
}

// getProfile returns the authenticated user's profile.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.loadProfile(c)
	if err != nil {
		h.log.Error("[getProfile] failed", zap.Error(err), zap.Int("user_id", c.GetInt("user_id")))
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// putProfile validates and replaces the profile.
// PUT /api/profile. A profile the target calculator would reject (weight set
// without age, height or gender) is refused here so the daily view never
// has to show a target error for a freshly saved profile.
func (h *Handler) putProfile(c *gin.Context) {
	var body nutrition.Profile
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := body.Normalize()
	if err == nil {
		_, err = nutrition.ComputeDailyTarget(p, h.cfg.Target)
	}
	if err != nil {
		if !validationFailure(c, err) {
			apiError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	if err := h.store.SaveProfile(c.Request.Context(), c.GetInt("user_id"), p); err != nil {
		h.log.Error("[putProfile] failed", zap.Error(err), zap.Int("user_id", c.GetInt("user_id")))
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// getTarget returns the computed daily target, plus the BMR when the profile
// has a weight.
// GET /api/profile/target. 422 when the stored profile can't feed the formula.
func (h *Handler) getTarget(c *gin.Context) {
	p, err := h.loadProfile(c)
	if err != nil {
		h.log.Error("[getTarget] failed", zap.Error(err), zap.Int("user_id", c.GetInt("user_id")))
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	target, err := nutrition.ComputeDailyTarget(p, h.cfg.Target)
	if err != nil {
		apiError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	resp := targetResponse{DailyTarget: target}
	if bmr, ok, _ := nutrition.BMR(p); ok {
		rounded := int(math.Round(bmr))
		resp.BMR = &rounded
	}
	c.JSON(http.StatusOK, resp)
}

// loadAssessment returns the stored assessment or the questionnaire defaults.
func (h *Handler) loadAssessment(c *gin.Context) (nutrition.Assessment, error) {
	a, err := h.store.GetAssessment(c.Request.Context(), c.GetInt("user_id"))
	if errors.Is(err, errNotFound) {
		return nutrition.DefaultAssessment(), nil
	}
	return a, err
}

// getAssessment returns the lifestyle assessment.
// GET /api/profile/assessment.
func (h *Handler) getAssessment(c *gin.Context) {
	a, err := h.loadAssessment(c)
	if err != nil {
		h.log.Error("[getAssessment] failed", zap.Error(err), zap.Int("user_id", c.GetInt("user_id")))
		apiError(c, http.StatusInternalServerError, "failed to fetch assessment")
		return
	}
	c.JSON(http.StatusOK, a)
}

// putAssessment validates and replaces the lifestyle assessment.
// PUT /api/profile/assessment.
func (h *Handler) putAssessment(c *gin.Context) {
	var body nutrition.Assessment
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := body.Normalize()
	if err != nil {
		if !validationFailure(c, err) {
			apiError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	if err := h.store.SaveAssessment(c.Request.Context(), c.GetInt("user_id"), a); err != nil {
		h.log.Error("[putAssessment] failed", zap.Error(err), zap.Int("user_id", c.GetInt("user_id")))
		apiError(c, http.StatusInternalServerError, "failed to save assessment")
		return
	}
	c.JSON(http.StatusOK, a)
}
