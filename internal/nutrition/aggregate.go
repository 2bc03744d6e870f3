package nutrition

import (
	"sort"
	"time"
)

// Source records which flow produced a meal log entry.
type Source string

const (
	SourcePhoto  Source = "photo"
	SourceText   Source = "text"
	SourceRecipe Source = "recipe"
	SourceManual Source = "manual"
)

// ValidSource reports whether s is a known entry source.
func ValidSource(s Source) bool {
	switch s {
	case SourcePhoto, SourceText, SourceRecipe, SourceManual:
		return true
	}
	return false
}

// MealLogEntry is one logged meal. Nutrition values are producer estimates.
type MealLogEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	Note      string    `json:"note"`
	Source    Source    `json:"source"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// WeightMeasurement is one weigh-in. Duplicate dates are separate records.
type WeightMeasurement struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Weight float64 `json:"weight"` // kg
}

// Totals is the element-wise sum of a set of entries.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DayCalories is one point of a calorie trend series.
type DayCalories struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"total_calories"`
}

// WeightPoint is one point of a weight trend series.
type WeightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// nonNegative maps negative and NaN values to 0 so a bad estimate never
// subtracts from a total.
func nonNegative(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

// DailyTotals sums the entries logged on day. Empty input gives zero totals.
func DailyTotals(entries []MealLogEntry, day string) Totals {
	var t Totals
	for _, e := range entries {
		if e.Date != day {
			continue
		}
		t.Calories += nonNegative(e.Calories)
		t.Protein += nonNegative(e.Protein)
		t.Carbs += nonNegative(e.Carbs)
		t.Fat += nonNegative(e.Fat)
	}
	return t
}

// Remaining returns target minus consumed per field. Values go negative once
// the user is over target.
func Remaining(target DailyTarget, consumed Totals) Totals {
	return Totals{
		Calories: float64(target.TargetCalories) - consumed.Calories,
		Protein:  target.ProteinG - consumed.Protein,
		Carbs:    target.CarbsG - consumed.Carbs,
		Fat:      target.FatG - consumed.Fat,
	}
}

// PeriodSeries groups entries dated on or after since by date and sums their
// calories. Only dates present in the input appear; gaps are not filled.
// Entries with a malformed date are skipped.
func PeriodSeries(entries []MealLogEntry, since string) []DayCalories {
	byDate := make(map[string]float64)
	for _, e := range entries {
		if e.Date < since || !ValidDate(e.Date) {
			continue
		}
		byDate[e.Date] += nonNegative(e.Calories)
	}

	series := make([]DayCalories, 0, len(byDate))
	for date, kcal := range byDate {
		series = append(series, DayCalories{Date: date, TotalCalories: kcal})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// WeightSeries returns measurements in ascending date order, dropping records
// without a valid date or a positive weight. Records sharing a date keep
// their input order.
func WeightSeries(measurements []WeightMeasurement) []WeightPoint {
	points := make([]WeightPoint, 0, len(measurements))
	for _, m := range measurements {
		if !ValidDate(m.Date) || !(m.Weight > 0) {
			continue
		}
		points = append(points, WeightPoint{Date: m.Date, Weight: m.Weight})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
