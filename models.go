package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/nutri-go-api/internal/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// String formats the date in nutrition.DateLayout; the zero date is "".
func (d DateOnly) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format(nutrition.DateLayout)
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Row structs ─────────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profileRow maps to profiles. Numeric columns are nullable so a freshly
// created user with no body data still scans.
type profileRow struct {
	Name     string   `db:"name"`
	Age      *int     `db:"age"`
	WeightKG *float64 `db:"weight_kg"`
	HeightCM *float64 `db:"height_cm"`
	Gender   *string  `db:"gender"`
	Goal     string   `db:"goal"`
}

func (r profileRow) profile() nutrition.Profile {
	p := nutrition.Profile{Name: r.Name, Goal: nutrition.Goal(r.Goal)}
	if r.Age != nil {
		p.Age = *r.Age
	}
	if r.WeightKG != nil {
		p.Weight = *r.WeightKG
	}
	if r.HeightCM != nil {
		p.Height = *r.HeightCM
	}
	if r.Gender != nil {
		p.Gender = nutrition.Gender(*r.Gender)
	}
	return p
}

// assessmentRow maps to assessments.
type assessmentRow struct {
	ActivityLevel string `db:"activity_level"`
	DietType      string `db:"diet_type"`
	Allergies     string `db:"allergies"`
	MealsPerDay   int    `db:"meals_per_day"`
	Conditions    string `db:"conditions"`
}

func (r assessmentRow) assessment() nutrition.Assessment {
	return nutrition.Assessment{
		ActivityLevel: nutrition.ActivityLevel(r.ActivityLevel),
		DietType:      r.DietType,
		Allergies:     r.Allergies,
		MealsPerDay:   r.MealsPerDay,
		Conditions:    r.Conditions,
	}
}

// foodLogRow maps to food_logs. The id column is a uuid selected as text.
type foodLogRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Calories  float64   `db:"calories"`
	Protein   float64   `db:"protein"`
	Carbs     float64   `db:"carbs"`
	Fat       float64   `db:"fat"`
	Note      string    `db:"note"`
	Source    string    `db:"source"`
	Date      DateOnly  `db:"date"`
	CreatedAt time.Time `db:"created_at"`
}

func (r foodLogRow) entry() nutrition.MealLogEntry {
	return nutrition.MealLogEntry{
		ID:        r.ID,
		Name:      r.Name,
		Calories:  r.Calories,
		Protein:   r.Protein,
		Carbs:     r.Carbs,
		Fat:       r.Fat,
		Note:      r.Note,
		Source:    nutrition.Source(r.Source),
		Date:      r.Date.String(),
		CreatedAt: r.CreatedAt,
	}
}

// measurementRow maps to measurements.
type measurementRow struct {
	ID       string   `db:"id"`
	Date     DateOnly `db:"date"`
	WeightKG float64  `db:"weight_kg"`
}

func (r measurementRow) measurement() nutrition.WeightMeasurement {
	return nutrition.WeightMeasurement{ID: r.ID, Date: r.Date.String(), Weight: r.WeightKG}
}

/* ─── Request / response shapes ──────────────────────────────────────── */

// dailySummary is the response shape for GET /api/food-log/daily.
type dailySummary struct {
	Date        string                   `json:"date"`
	Entries     []nutrition.MealLogEntry `json:"entries"`
	Totals      nutrition.Totals         `json:"totals"`
	Target      nutrition.DailyTarget    `json:"target"`
	Remaining   nutrition.Totals         `json:"remaining"`
	TargetError string                   `json:"target_error,omitempty"`
}

// createEntryRequest is the request body for POST /api/food-log/entries.
// It carries the reviewed values, whichever flow produced them.
type createEntryRequest struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Note     string  `json:"note"`
	Source   string  `json:"source"`
	Date     string  `json:"date"`
}

// trendsResponse is the response shape for GET /api/trends.
type trendsResponse struct {
	Since    string                  `json:"since"`
	Calories []nutrition.DayCalories `json:"calories"`
	Weight   []nutrition.WeightPoint `json:"weight"`
}

// targetResponse is the response shape for GET /api/profile/target. BMR is
// omitted when the profile has no weight.
type targetResponse struct {
	nutrition.DailyTarget
	BMR *int `json:"bmr,omitempty"`
}
