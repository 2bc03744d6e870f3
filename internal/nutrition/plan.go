package nutrition

import (
	"encoding/json"
	"fmt"
	"time"
)

// Weekdays lists plan days in display order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// weekdayAliases maps accepted day keys to Weekdays entries. Plans generated
// by the first version of the app used Italian day names.
var weekdayAliases = map[string]string{
	"lunedì": "monday", "lunedi": "monday",
	"martedì": "tuesday", "martedi": "tuesday",
	"mercoledì": "wednesday", "mercoledi": "wednesday",
	"giovedì": "thursday", "giovedi": "thursday",
	"venerdì": "friday", "venerdi": "friday",
	"sabato":   "saturday",
	"domenica": "sunday",
}

func init() {
	for _, d := range Weekdays {
		weekdayAliases[d] = d
	}
}

// DayPlan is one day of a weekly meal plan.
type DayPlan struct {
	Breakfast     string  `json:"breakfast"`
	Lunch         string  `json:"lunch"`
	Dinner        string  `json:"dinner"`
	Snack         string  `json:"snack,omitempty"`
	TotalCalories float64 `json:"total_calories"`
}

// WeeklyPlan is the latest generated plan for a user. Days holds only the
// days the generator returned.
type WeeklyPlan struct {
	Days        map[string]DayPlan `json:"days"`
	GeneratedAt time.Time          `json:"generated_at"`
}

var (
	breakfastKeys = []string{"breakfast", "colazione"}
	lunchKeys     = []string{"lunch", "pranzo"}
	dinnerKeys    = []string{"dinner", "cena"}
	snackKeys     = []string{"snack", "snacks", "spuntino"}
	dayTotalKeys  = []string{"total_calories", "totalcalories", "totale_cal", "calories"}
	mealTextKeys  = []string{"description", "name", "dish", "meal"}
)

// DecodeWeeklyPlan reads a generated weekly plan. Day keys are matched case
// insensitively; unknown keys are ignored. Days that are not objects are
// dropped. A payload with no recognizable day is ErrMalformedResponse.
func DecodeWeeklyPlan(raw []byte) (WeeklyPlan, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return WeeklyPlan{}, err
	}
	// Some generations nest the days one level down.
	for _, wrapper := range []string{"days", "plan", "week"} {
		if inner, ok := fields[wrapper]; ok {
			if nested, err := decodeObject(inner); err == nil {
				fields = nested
				break
			}
		}
	}

	plan := WeeklyPlan{Days: make(map[string]DayPlan)}
	for key, v := range fields {
		day, ok := weekdayAliases[key]
		if !ok {
			continue
		}
		dayFields, err := decodeObject(v)
		if err != nil {
			continue
		}
		plan.Days[day] = DayPlan{
			Breakfast:     mealField(dayFields, breakfastKeys...),
			Lunch:         mealField(dayFields, lunchKeys...),
			Dinner:        mealField(dayFields, dinnerKeys...),
			Snack:         mealField(dayFields, snackKeys...),
			TotalCalories: numberField(dayFields, dayTotalKeys...),
		}
	}
	if len(plan.Days) == 0 {
		return WeeklyPlan{}, fmt.Errorf("%w: no weekdays in plan", ErrMalformedResponse)
	}
	return plan, nil
}

// mealField reads a meal given either as text or as an object with a
// description-like key.
func mealField(fields map[string]json.RawMessage, keys ...string) string {
	if s := stringField(fields, keys...); s != "" {
		return s
	}
	v, ok := lookup(fields, keys...)
	if !ok {
		return ""
	}
	inner, err := decodeObject(v)
	if err != nil {
		return ""
	}
	return stringField(inner, mealTextKeys...)
}
