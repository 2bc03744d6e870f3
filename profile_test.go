package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"lg/nutri-go-api/internal/nutrition"
)

func TestGetProfile_DefaultsWhenMissing(t *testing.T) {
	env := setupTest(t)

	w := env.do("GET", "/api/profile", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var p nutrition.Profile
	decodeBody(t, w, &p)
	if p.Goal != nutrition.Maintenance || p.Weight != 0 {
		t.Errorf("expected empty maintenance profile, got %+v", p)
	}
}

func TestPutProfile_NormalizesLegacyLabels(t *testing.T) {
	env := setupTest(t)

	w := env.do("PUT", "/api/profile", `{"name":"  Marco ","age":40,"weight":85,"height":178,"gender":"Uomo","goal":"Dimagrimento"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	saved := env.store.profiles[1]
	if saved.Name != "Marco" || saved.Gender != nutrition.Male || saved.Goal != nutrition.WeightLoss {
		t.Errorf("unexpected stored profile %+v", saved)
	}
}

func TestPutProfile_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"unknown gender", `{"weight":70,"height":170,"age":30,"gender":"other"}`, "gender"},
		{"unknown goal", `{"goal":"bulk"}`, "goal"},
		{"negative weight", `{"weight":-1}`, "weight"},
		{"weight without age", `{"weight":70,"height":170,"gender":"female"}`, "age"},
		{"weight without height", `{"weight":70,"age":30,"gender":"female"}`, "height"},
		{"weight without gender", `{"weight":70,"age":30,"height":170}`, "gender"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTest(t)
			w := env.do("PUT", "/api/profile", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if msg := errorMessage(t, w); !strings.HasPrefix(msg, tt.field) {
				t.Errorf("expected error about %s, got %q", tt.field, msg)
			}
			if _, ok := env.store.profiles[1]; ok {
				t.Error("invalid profile should not be stored")
			}
		})
	}
}

func TestPutProfile_NameOnlyIsAccepted(t *testing.T) {
	env := setupTest(t)
	w := env.do("PUT", "/api/profile", `{"name":"Giulia"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetTarget(t *testing.T) {
	env := setupTest(t)
	env.store.profiles[1] = nutrition.Profile{Weight: 70, Height: 175, Age: 30, Gender: nutrition.Male, Goal: nutrition.Maintenance}

	w := env.do("GET", "/api/profile/target", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		TargetCalories int     `json:"target_calories"`
		ProteinG       float64 `json:"protein_g"`
		CarbsG         float64 `json:"carbs_g"`
		FatG           float64 `json:"fat_g"`
		BMR            *int    `json:"bmr"`
	}
	decodeBody(t, w, &resp)
	// bmr = 700 + 1093.75 - 150 + 5 = 1648.75
	if resp.TargetCalories != 1979 {
		t.Errorf("target_calories = %d, want 1979", resp.TargetCalories)
	}
	if resp.BMR == nil || *resp.BMR != 1649 {
		t.Errorf("bmr = %v, want 1649", resp.BMR)
	}
	if resp.ProteinG != 150 || resp.CarbsG != 250 || resp.FatG != 70 {
		t.Errorf("unexpected macros %+v", resp)
	}
}

func TestGetTarget_NoWeightFallback(t *testing.T) {
	env := setupTest(t)
	env.store.profiles[1] = nutrition.Profile{Goal: nutrition.MuscleGain}

	w := env.do("GET", "/api/profile/target", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"target_calories":2000`) || strings.Contains(w.Body.String(), "bmr") {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestGetTarget_ConfiguredMacros(t *testing.T) {
	env := setupTest(t)
	env.h.cfg.Target.Macros = nutrition.MacroTargets{ProteinG: 120, CarbsG: 200, FatG: 60}
	env.h.cfg.Target.FallbackAppliesGoal = true
	env.store.profiles[1] = nutrition.Profile{Goal: nutrition.WeightLoss}

	w := env.do("GET", "/api/profile/target", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	for _, want := range []string{`"target_calories":2200`, `"protein_g":120`, `"carbs_g":200`, `"fat_g":60`} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("body %s missing %s", w.Body.String(), want)
		}
	}
}

func TestGetTarget_InvalidStoredProfile(t *testing.T) {
	env := setupTest(t)
	env.store.profiles[1] = nutrition.Profile{Weight: 70, Gender: nutrition.Female}

	w := env.do("GET", "/api/profile/target", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestProfileHandlers_StorageError(t *testing.T) {
	env := setupTest(t)
	env.store.failWith = errors.New("db down")

	tests := []struct {
		name    string
		method  string
		handler gin.HandlerFunc
		body    string
	}{
		{"get profile", "GET", env.h.getProfile, ""},
		{"put profile", "PUT", env.h.putProfile, `{"name":"x"}`},
		{"get target", "GET", env.h.getTarget, ""},
		{"get assessment", "GET", env.h.getAssessment, ""},
		{"put assessment", "PUT", env.h.putAssessment, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveDirect(tt.method, tt.handler, tt.body)
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAssessment_RoundTrip(t *testing.T) {
	env := setupTest(t)

	w := env.do("GET", "/api/profile/assessment", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var a nutrition.Assessment
	decodeBody(t, w, &a)
	if a != nutrition.DefaultAssessment() {
		t.Errorf("expected default assessment, got %+v", a)
	}

	w = env.do("PUT", "/api/profile/assessment", `{"activity_level":"Moderate","diet_type":"vegetarian","allergies":"nuts","meals_per_day":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	saved := env.store.assessments[1]
	if saved.ActivityLevel != nutrition.Moderate || saved.DietType != "vegetarian" || saved.MealsPerDay != 4 {
		t.Errorf("unexpected stored assessment %+v", saved)
	}

	w = env.do("PUT", "/api/profile/assessment", `{"activity_level":"couch"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown activity level, got %d", w.Code)
	}
}

func TestGetProfile_CancelledRequestReachesStore(t *testing.T) {
	env := setupTest(t)
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, env.h.getProfile)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("GET", "/test", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a cancelled request, got %d: %s", w.Code, w.Body.String())
	}
}
