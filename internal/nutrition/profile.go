package nutrition

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for every stored date. String
// comparison of two valid dates in this layout matches chronological order.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a calendar date in DateLayout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Gender selects the Mifflin-St Jeor sex constant.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Goal selects the target multiplier applied to BMR.
type Goal string

const (
	Maintenance Goal = "maintenance"
	WeightLoss  Goal = "weight-loss"
	MuscleGain  Goal = "muscle-gain"
)

// genderAliases maps accepted spellings (including the labels older clients
// stored) to the canonical value.
var genderAliases = map[string]Gender{
	"male":   Male,
	"m":      Male,
	"uomo":   Male,
	"female": Female,
	"f":      Female,
	"donna":  Female,
}

var goalAliases = map[string]Goal{
	"maintenance":   Maintenance,
	"mantenimento":  Maintenance,
	"weight-loss":   WeightLoss,
	"weight_loss":   WeightLoss,
	"dimagrimento":  WeightLoss,
	"muscle-gain":   MuscleGain,
	"muscle_gain":   MuscleGain,
	"aumento massa": MuscleGain,
}

// ParseGender normalizes s into a Gender. Unknown values are a ValidationError.
func ParseGender(s string) (Gender, error) {
	if g, ok := genderAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return g, nil
	}
	return "", &ValidationError{Field: "gender", Reason: fmt.Sprintf("must be one of: male, female (got %q)", s)}
}

// ParseGoal normalizes s into a Goal. An empty string is maintenance.
func ParseGoal(s string) (Goal, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return Maintenance, nil
	}
	if g, ok := goalAliases[key]; ok {
		return g, nil
	}
	return "", &ValidationError{Field: "goal", Reason: fmt.Sprintf("must be one of: maintenance, weight-loss, muscle-gain (got %q)", s)}
}

// multiplier returns the goal's target multiplier. Callers validate the goal
// first; anything that is not loss or gain gets the maintenance factor.
func (g Goal) multiplier() float64 {
	switch g {
	case WeightLoss:
		return 1.1
	case MuscleGain:
		return 1.4
	default:
		return 1.2
	}
}

// Profile is a user's body profile. Zero numeric fields mean "not set".
type Profile struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Weight float64 `json:"weight"` // kg
	Height float64 `json:"height"` // cm
	Gender Gender  `json:"gender"`
	Goal   Goal    `json:"goal"`
}

// Normalize canonicalizes Gender and Goal and checks that numeric fields are
// not negative. It returns the normalized copy; p is not modified. An empty
// gender is left empty so an unprofiled user can still be saved.
func (p Profile) Normalize() (Profile, error) {
	out := p
	out.Name = strings.TrimSpace(p.Name)
	if p.Gender != "" {
		g, err := ParseGender(string(p.Gender))
		if err != nil {
			return Profile{}, err
		}
		out.Gender = g
	}
	goal, err := ParseGoal(string(p.Goal))
	if err != nil {
		return Profile{}, err
	}
	out.Goal = goal

	switch {
	case p.Age < 0:
		return Profile{}, &ValidationError{Field: "age", Reason: "must be positive"}
	case p.Weight < 0:
		return Profile{}, &ValidationError{Field: "weight", Reason: "must be positive"}
	case p.Height < 0:
		return Profile{}, &ValidationError{Field: "height", Reason: "must be positive"}
	}
	return out, nil
}

// ActivityLevel is the self-reported activity level from the assessment.
type ActivityLevel string

const (
	Sedentary ActivityLevel = "sedentary"
	Light     ActivityLevel = "light"
	Moderate  ActivityLevel = "moderate"
	Intense   ActivityLevel = "intense"
)

var activityLevels = map[ActivityLevel]bool{
	Sedentary: true,
	Light:     true,
	Moderate:  true,
	Intense:   true,
}

// Assessment is the lifestyle questionnaire that feeds weekly plan generation.
type Assessment struct {
	ActivityLevel ActivityLevel `json:"activity_level"`
	DietType      string        `json:"diet_type"`
	Allergies     string        `json:"allergies"`
	MealsPerDay   int           `json:"meals_per_day"`
	Conditions    string        `json:"conditions"`
}

// DefaultAssessment mirrors the questionnaire's initial state.
func DefaultAssessment() Assessment {
	return Assessment{ActivityLevel: Sedentary, DietType: "omnivore", MealsPerDay: 3}
}

// Normalize fills empty fields with defaults and rejects unknown activity levels.
func (a Assessment) Normalize() (Assessment, error) {
	def := DefaultAssessment()
	out := a
	out.ActivityLevel = ActivityLevel(strings.ToLower(strings.TrimSpace(string(a.ActivityLevel))))
	if out.ActivityLevel == "" {
		out.ActivityLevel = def.ActivityLevel
	}
	if !activityLevels[out.ActivityLevel] {
		return Assessment{}, &ValidationError{Field: "activity_level", Reason: "must be one of: sedentary, light, moderate, intense"}
	}
	out.DietType = strings.TrimSpace(a.DietType)
	if out.DietType == "" {
		out.DietType = def.DietType
	}
	if a.MealsPerDay < 0 || a.MealsPerDay > 10 {
		return Assessment{}, &ValidationError{Field: "meals_per_day", Reason: "must be between 1 and 10"}
	}
	if a.MealsPerDay == 0 {
		out.MealsPerDay = def.MealsPerDay
	}
	out.Allergies = strings.TrimSpace(a.Allergies)
	out.Conditions = strings.TrimSpace(a.Conditions)
	return out, nil
}
