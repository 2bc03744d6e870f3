package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/nutri-go-api/internal/nutrition"
)

var (
	errAIDisabled    = errors.New("ai features disabled: missing credential")
	errQuotaExceeded = errors.New("daily ai request limit reached")
	errAIStorage     = errors.New("ai bookkeeping failed")
)

// aiKey resolves the Gemini API key: the shared secrets row first, then config.
func (h *Handler) aiKey(ctx context.Context) (string, error) {
	key, err := h.store.GetSecret(ctx, geminiSecret)
	if err != nil && !errors.Is(err, errNotFound) {
		return "", fmt.Errorf("%w: read secret: %v", errAIStorage, err)
	}
	if key == "" {
		key = h.cfg.GeminiAPIKey
	}
	if key == "" {
		return "", errAIDisabled
	}
	return key, nil
}

// callAI checks the credential and the user's daily quota, then sends one
// request to the model in JSON mode. The request context cancels the call
// when the client goes away.
func (h *Handler) callAI(c *gin.Context, prompt string, img *inlineImage) (string, error) {
	ctx := c.Request.Context()
	key, err := h.aiKey(ctx)
	if err != nil {
		return "", err
	}

	if h.cfg.AIDailyLimit > 0 {
		count, err := h.store.IncrementAIUsage(ctx, c.GetInt("user_id"), h.today())
		if err != nil {
			return "", fmt.Errorf("%w: record usage: %v", errAIStorage, err)
		}
		if count > h.cfg.AIDailyLimit {
			return "", errQuotaExceeded
		}
	}

	return h.ai.generate(ctx, key, prompt, img, true)
}

// aiFailure maps an AI-path error onto the HTTP response.
// Unrecognized input is not a failure: the client gets 200 {"error":"unrecognized"}
// and can ask the user to try again.
func (h *Handler) aiFailure(c *gin.Context, where string, err error) {
	switch {
	case errors.Is(err, errAIDisabled):
		apiError(c, http.StatusServiceUnavailable, errAIDisabled.Error())
	case errors.Is(err, errQuotaExceeded):
		apiError(c, http.StatusTooManyRequests, errQuotaExceeded.Error())
	case errors.Is(err, errAIStorage):
		h.log.Error("["+where+"] ai bookkeeping failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to prepare ai request")
	case errors.Is(err, nutrition.ErrUnrecognized):
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
	default:
		h.log.Error("["+where+"] ai request failed", zap.Error(err))
		apiError(c, http.StatusBadGateway, "ai request failed")
	}
}

// getAIStatus reports whether AI features are usable.
// GET /api/ai/status.
func (h *Handler) getAIStatus(c *gin.Context) {
	_, err := h.aiKey(c.Request.Context())
	if err != nil && !errors.Is(err, errAIDisabled) {
		h.log.Error("[getAIStatus] failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to read ai status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": err == nil})
}
