package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lg/nutri-go-api/internal/nutrition"
)

// pgStore implements Store on PostgreSQL.
type pgStore struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func newPGStore(pool *pgxpool.Pool, log *zap.Logger) *pgStore {
	return &pgStore{pool: pool, log: log}
}

/* ─── Query helpers ───────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// A missing row is reported as errNotFound; other query and scan errors are
// logged (e.g. struct/column mismatches).
func queryOne[T any](ctx context.Context, s *pgStore, sql string, args pgx.NamedArgs) (T, error) {
	var zero T
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		s.log.Error("[queryOne] query error", zap.Error(err))
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, errNotFound
	}
	if err != nil {
		s.log.Error("[queryOne] scan error", zap.Error(err))
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, s *pgStore, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		s.log.Error("[queryMany] query error", zap.Error(err))
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		s.log.Error("[queryMany] scan error", zap.Error(err))
	}
	return results, err
}

// execOwned runs a user-scoped DELETE and maps zero affected rows to errNotFound.
func (s *pgStore) execOwned(ctx context.Context, sql string, args pgx.NamedArgs) error {
	result, err := s.pool.Exec(ctx, sql, args)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// nullIfZero stores unset profile numbers as NULL.
func nullIfZero[T int | float64](v T) *T {
	if v == 0 {
		return nil
	}
	return &v
}

/* ─── Users ───────────────────────────────────────────────────────────── */

func (s *pgStore) UserByUsername(ctx context.Context, username string) (user, error) {
	return queryOne[user](ctx, s,
		`SELECT id, username, email, auth_token, password, created_at
		 FROM users WHERE username = @username`,
		pgx.NamedArgs{"username": username})
}

func (s *pgStore) UserIDByToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.pool.QueryRow(ctx, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errNotFound
	}
	return userID, err
}

/* ─── Profile, assessment, plan ───────────────────────────────────────── */

func (s *pgStore) GetProfile(ctx context.Context, userID int) (nutrition.Profile, error) {
	row, err := queryOne[profileRow](ctx, s,
		`SELECT name, age, weight_kg, height_cm, gender, goal
		 FROM profiles WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nutrition.Profile{}, err
	}
	return row.profile(), nil
}

// SaveProfile replaces the user's profile; no history is kept.
func (s *pgStore) SaveProfile(ctx context.Context, userID int, p nutrition.Profile) error {
	var gender *string
	if p.Gender != "" {
		g := string(p.Gender)
		gender = &g
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, name, age, weight_kg, height_cm, gender, goal)
		 VALUES (@userID, @name, @age, @weightKG, @heightCM, @gender, @goal)
		 ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name, age = EXCLUDED.age, weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm, gender = EXCLUDED.gender, goal = EXCLUDED.goal,
			updated_at = now()`,
		pgx.NamedArgs{
			"userID": userID, "name": p.Name, "age": nullIfZero(p.Age),
			"weightKG": nullIfZero(p.Weight), "heightCM": nullIfZero(p.Height),
			"gender": gender, "goal": string(p.Goal),
		})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *pgStore) GetAssessment(ctx context.Context, userID int) (nutrition.Assessment, error) {
	row, err := queryOne[assessmentRow](ctx, s,
		`SELECT activity_level, diet_type, allergies, meals_per_day, conditions
		 FROM assessments WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nutrition.Assessment{}, err
	}
	return row.assessment(), nil
}

func (s *pgStore) SaveAssessment(ctx context.Context, userID int, a nutrition.Assessment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assessments (user_id, activity_level, diet_type, allergies, meals_per_day, conditions)
		 VALUES (@userID, @activityLevel, @dietType, @allergies, @mealsPerDay, @conditions)
		 ON CONFLICT (user_id) DO UPDATE SET
			activity_level = EXCLUDED.activity_level, diet_type = EXCLUDED.diet_type,
			allergies = EXCLUDED.allergies, meals_per_day = EXCLUDED.meals_per_day,
			conditions = EXCLUDED.conditions, updated_at = now()`,
		pgx.NamedArgs{
			"userID": userID, "activityLevel": string(a.ActivityLevel), "dietType": a.DietType,
			"allergies": a.Allergies, "mealsPerDay": a.MealsPerDay, "conditions": a.Conditions,
		})
	if err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}
	return nil
}

func (s *pgStore) GetWeeklyPlan(ctx context.Context, userID int) (nutrition.WeeklyPlan, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		"SELECT plan FROM weekly_plans WHERE user_id = $1", userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nutrition.WeeklyPlan{}, errNotFound
	}
	if err != nil {
		return nutrition.WeeklyPlan{}, err
	}
	var plan nutrition.WeeklyPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nutrition.WeeklyPlan{}, fmt.Errorf("decode stored plan: %w", err)
	}
	return plan, nil
}

// SaveWeeklyPlan stores plan as the user's single current snapshot.
func (s *pgStore) SaveWeeklyPlan(ctx context.Context, userID int, plan nutrition.WeeklyPlan) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO weekly_plans (user_id, plan, generated_at)
		 VALUES (@userID, @plan, @generatedAt)
		 ON CONFLICT (user_id) DO UPDATE SET plan = EXCLUDED.plan, generated_at = EXCLUDED.generated_at`,
		pgx.NamedArgs{"userID": userID, "plan": string(raw), "generatedAt": plan.GeneratedAt})
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

/* ─── Food logs ───────────────────────────────────────────────────────── */

const foodLogColumns = `id::text AS id, name, calories, protein, carbs, fat, note, source, date, created_at`

func (s *pgStore) ListMealLogs(ctx context.Context, userID int, q logQuery) ([]nutrition.MealLogEntry, error) {
	sql := "SELECT " + foodLogColumns + " FROM food_logs WHERE user_id = @userID"
	args := pgx.NamedArgs{"userID": userID}
	switch {
	case q.Date != "":
		sql += " AND date = @date"
		args["date"] = q.Date
	case q.Since != "":
		sql += " AND date >= @since"
		args["since"] = q.Since
	}
	sql += " ORDER BY date ASC, created_at ASC"

	rows, err := queryMany[foodLogRow](ctx, s, sql, args)
	if err != nil {
		return nil, fmt.Errorf("list food logs: %w", err)
	}
	entries := make([]nutrition.MealLogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

func (s *pgStore) CreateMealLog(ctx context.Context, userID int, e nutrition.MealLogEntry) (nutrition.MealLogEntry, error) {
	row, err := queryOne[foodLogRow](ctx, s,
		`INSERT INTO food_logs (id, user_id, name, calories, protein, carbs, fat, note, source, date)
		 VALUES (@id, @userID, @name, @calories, @protein, @carbs, @fat, @note, @source, @date)
		 RETURNING `+foodLogColumns,
		pgx.NamedArgs{
			"id": uuid.NewString(), "userID": userID, "name": e.Name,
			"calories": e.Calories, "protein": e.Protein, "carbs": e.Carbs, "fat": e.Fat,
			"note": e.Note, "source": string(e.Source), "date": e.Date,
		})
	if err != nil {
		return nutrition.MealLogEntry{}, fmt.Errorf("create food log: %w", err)
	}
	return row.entry(), nil
}

// DeleteMealLog removes one entry. Ids that are not UUIDs cannot exist and
// are reported as errNotFound without a round trip.
func (s *pgStore) DeleteMealLog(ctx context.Context, userID int, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errNotFound
	}
	return s.execOwned(ctx,
		"DELETE FROM food_logs WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

/* ─── Measurements ────────────────────────────────────────────────────── */

func (s *pgStore) ListMeasurements(ctx context.Context, userID int) ([]nutrition.WeightMeasurement, error) {
	rows, err := queryMany[measurementRow](ctx, s,
		`SELECT id::text AS id, date, weight_kg FROM measurements
		 WHERE user_id = @userID
		 ORDER BY date ASC, created_at ASC`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	out := make([]nutrition.WeightMeasurement, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.measurement())
	}
	return out, nil
}

// CreateMeasurement appends a weigh-in. Same-day entries are kept side by side.
func (s *pgStore) CreateMeasurement(ctx context.Context, userID int, m nutrition.WeightMeasurement) (nutrition.WeightMeasurement, error) {
	row, err := queryOne[measurementRow](ctx, s,
		`INSERT INTO measurements (id, user_id, date, weight_kg)
		 VALUES (@id, @userID, @date, @weightKG)
		 RETURNING id::text AS id, date, weight_kg`,
		pgx.NamedArgs{"id": uuid.NewString(), "userID": userID, "date": m.Date, "weightKG": m.Weight})
	if err != nil {
		return nutrition.WeightMeasurement{}, fmt.Errorf("create measurement: %w", err)
	}
	return row.measurement(), nil
}

func (s *pgStore) DeleteMeasurement(ctx context.Context, userID int, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errNotFound
	}
	return s.execOwned(ctx,
		"DELETE FROM measurements WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

/* ─── Secrets and AI usage ────────────────────────────────────────────── */

func (s *pgStore) GetSecret(ctx context.Context, name string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx, "SELECT value FROM app_secrets WHERE name = $1", name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", errNotFound
	}
	return value, err
}

func (s *pgStore) IncrementAIUsage(ctx context.Context, userID int, day string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO ai_usage (user_id, date, requests) VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, date) DO UPDATE SET requests = ai_usage.requests + 1
		 RETURNING requests`, userID, day).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment ai usage: %w", err)
	}
	return count, nil
}
