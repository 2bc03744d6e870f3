package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/nutri-go-api/internal/nutrition"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// analyzeRequest is the request body for POST /api/food-log/analyze.
// Mode "photo" needs ImageBase64 (raw base64 or a data URL); mode "text"
// needs Description.
type analyzeRequest struct {
	Mode        string `json:"mode"`
	Description string `json:"description"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Save        bool   `json:"save"`
}

// analyzeResponse carries the estimate and, when the caller asked to save
// it, the stored entry.
type analyzeResponse struct {
	nutrition.MealAnalysis
	Entry *nutrition.MealLogEntry `json:"entry,omitempty"`
}

/* ─── Prompts ────────────────────────────────────────────────────────── */

const mealFields = `Return a JSON object with:
- "name" (string, short dish name)
- "calories" (number, kcal for the whole portion)
- "protein" (number, grams)
- "carbs" (number, grams)
- "fat" (number, grams)
- "note" (string, one short remark on portion size or assumptions)

Always provide your best estimate. Only return {"error": "unrecognized"} if the input is not food at all.
Return only valid JSON, no explanation.`

// photoPromptTemplate takes the user's profile as JSON so portion estimates
// can account for who is eating.
const photoPromptTemplate = `You are a nutrition assistant. Analyze the attached photo of a meal (or a food package barcode).
User profile: %s

` + mealFields

const textPromptTemplate = `You are a nutrition assistant. Estimate the nutrition of this meal: %q

` + mealFields

const recipePromptTemplate = `You are a nutrition assistant. Suggest one recipe for the user's next meal that fits what is left of today's budget:
- Calories: %.0f kcal
- Protein: %.0f g
- Carbs: %.0f g
- Fat: %.0f g
User profile: %s
Put the short recipe (ingredients and steps) in "note".

` + mealFields

/* ─── Handlers ───────────────────────────────────────────────────────── */

// decodeImage accepts raw base64 or a data URL and returns the payload and
// its MIME type. The payload is checked to be valid base64.
func decodeImage(raw, mimeType string) (*inlineImage, error) {
	data := strings.TrimSpace(raw)
	if strings.HasPrefix(data, "data:") {
		header, payload, ok := strings.Cut(data, ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URL")
		}
		data = payload
		if mimeType == "" {
			mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
	}
	if data == "" {
		return nil, fmt.Errorf("image_base64 is required for photo mode")
	}
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return nil, fmt.Errorf("image_base64 is not valid base64")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("mime_type must be an image type")
	}
	return &inlineImage{MimeType: mimeType, Data: data}, nil
}

// profileJSON renders the profile for a prompt. An unreadable profile is
// sent as an empty object rather than failing the analysis.
func (h *Handler) profileJSON(c *gin.Context) string {
	p, err := h.loadProfile(c)
	if err != nil {
		h.log.Warn("[profileJSON] failed", zap.Error(err), zap.Int("user_id", c.GetInt("user_id")))
		return "{}"
	}
	b, _ := json.Marshal(p)
	return string(b)
}

// analyzeMeal estimates a meal from a photo or a text description.
// POST /api/food-log/analyze. The estimate is returned for review; with
// "save": true it is also logged for today.
func (h *Handler) analyzeMeal(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		prompt string
		img    *inlineImage
		source nutrition.Source
	)
	switch req.Mode {
	case "photo", "camera":
		var err error
		img, err = decodeImage(req.ImageBase64, req.MimeType)
		if err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		prompt = fmt.Sprintf(photoPromptTemplate, h.profileJSON(c))
		source = nutrition.SourcePhoto
	case "text", "":
		desc := strings.TrimSpace(req.Description)
		if desc == "" {
			apiError(c, http.StatusBadRequest, "description is required")
			return
		}
		prompt = fmt.Sprintf(textPromptTemplate, desc)
		source = nutrition.SourceText
	default:
		apiError(c, http.StatusBadRequest, "mode must be one of: photo, text")
		return
	}

	content, err := h.callAI(c, prompt, img)
	if err != nil {
		h.aiFailure(c, "analyzeMeal", err)
		return
	}
	analysis, err := nutrition.DecodeMealAnalysis([]byte(content))
	if err != nil {
		h.aiFailure(c, "analyzeMeal", err)
		return
	}

	resp := analyzeResponse{MealAnalysis: analysis}
	if req.Save {
		stored, err := h.store.CreateMealLog(c.Request.Context(), c.GetInt("user_id"), analysis.Entry(h.today(), source))
		if err != nil {
			h.log.Error("[analyzeMeal] failed", zap.Error(err), zap.Int("user_id", c.GetInt("user_id")))
			apiError(c, http.StatusInternalServerError, "failed to create entry")
			return
		}
		resp.Entry = &stored
	}
	c.JSON(http.StatusOK, resp)
}

// suggestRecipe asks the AI for a recipe that fits what is left of today's
// budget. Accepting it is a normal POST /api/food-log/entries with source "recipe".
// POST /api/food-log/recipe-suggestion.
func (h *Handler) suggestRecipe(c *gin.Context) {
	userID := c.GetInt("user_id")
	today := h.today()

	entries, err := h.store.ListMealLogs(c.Request.Context(), userID, logQuery{Date: today})
	if err != nil {
		h.log.Error("[suggestRecipe] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch entries")
		return
	}
	target, _, err := h.dailyTarget(c)
	if err != nil {
		h.log.Error("[suggestRecipe] failed", zap.Error(err), zap.Int("user_id", userID))
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	left := nutrition.Remaining(target, nutrition.DailyTotals(entries, today))
	prompt := fmt.Sprintf(recipePromptTemplate,
		max(left.Calories, 0), max(left.Protein, 0), max(left.Carbs, 0), max(left.Fat, 0),
		h.profileJSON(c))

	content, err := h.callAI(c, prompt, nil)
	if err != nil {
		h.aiFailure(c, "suggestRecipe", err)
		return
	}
	analysis, err := nutrition.DecodeMealAnalysis([]byte(content))
	if err != nil {
		h.aiFailure(c, "suggestRecipe", err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}
