package main

import (
	"context"
	"errors"

	"lg/nutri-go-api/internal/nutrition"
)

// errNotFound is returned by Store lookups and deletes that match no row.
var errNotFound = errors.New("not found")

// geminiSecret is the secrets row holding the Gemini API key.
const geminiSecret = "gemini_key"

// logQuery filters ListMealLogs. Date selects one day; otherwise Since keeps
// entries dated on or after it. Results are ordered by date, then creation.
type logQuery struct {
	Date  string
	Since string
}

// Store is the persistence collaborator. Every per-user method is scoped by
// userID; writes replace in place or append, never merge.
type Store interface {
	UserByUsername(ctx context.Context, username string) (user, error)
	UserIDByToken(ctx context.Context, token string) (int, error)

	GetProfile(ctx context.Context, userID int) (nutrition.Profile, error)
	SaveProfile(ctx context.Context, userID int, p nutrition.Profile) error
	GetAssessment(ctx context.Context, userID int) (nutrition.Assessment, error)
	SaveAssessment(ctx context.Context, userID int, a nutrition.Assessment) error
	GetWeeklyPlan(ctx context.Context, userID int) (nutrition.WeeklyPlan, error)
	SaveWeeklyPlan(ctx context.Context, userID int, plan nutrition.WeeklyPlan) error

	ListMealLogs(ctx context.Context, userID int, q logQuery) ([]nutrition.MealLogEntry, error)
	CreateMealLog(ctx context.Context, userID int, e nutrition.MealLogEntry) (nutrition.MealLogEntry, error)
	DeleteMealLog(ctx context.Context, userID int, id string) error

	ListMeasurements(ctx context.Context, userID int) ([]nutrition.WeightMeasurement, error)
	CreateMeasurement(ctx context.Context, userID int, m nutrition.WeightMeasurement) (nutrition.WeightMeasurement, error)
	DeleteMeasurement(ctx context.Context, userID int, id string) error

	GetSecret(ctx context.Context, name string) (string, error)
	// IncrementAIUsage records one AI call for userID on day and returns the
	// day's count including it.
	IncrementAIUsage(ctx context.Context, userID int, day string) (int, error)
}
