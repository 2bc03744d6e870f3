package nutrition

import (
	"errors"
	"testing"
)

/* ─── DecodeMealAnalysis ─────────────────────────────────────────────── */

func TestDecodeMealAnalysis_WellFormed(t *testing.T) {
	raw := `{"name":"Pasta al pomodoro","calories":520,"protein":18,"carbs":90,"fat":9,"note":"80g dry pasta"}`
	got, err := DecodeMealAnalysis([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := MealAnalysis{Name: "Pasta al pomodoro", Calories: 520, Protein: 18, Carbs: 90, Fat: 9, Note: "80g dry pasta"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// TestDecodeMealAnalysis_Tolerant covers the default-substitution policy:
// missing, null, negative and unparsable numbers become 0, numeric strings
// are read, and alias keys are accepted.
func TestDecodeMealAnalysis_Tolerant(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want MealAnalysis
	}{
		{
			"missing macros",
			`{"name":"Apple","calories":95}`,
			MealAnalysis{Name: "Apple", Calories: 95},
		},
		{
			"null and negative",
			`{"name":"Salad","calories":null,"protein":-3,"carbs":12,"fat":"n/a"}`,
			MealAnalysis{Name: "Salad", Carbs: 12},
		},
		{
			"numeric strings",
			`{"name":"Pizza","calories":"850 kcal","protein":"32g","carbs":"98,5","fat":"30"}`,
			MealAnalysis{Name: "Pizza", Calories: 850, Protein: 32, Carbs: 98.5, Fat: 30},
		},
		{
			"thousands separator",
			`{"name":"Feast","calories":"1,250 kcal","protein":"12,000.5","carbs":"1,2345"}`,
			MealAnalysis{Name: "Feast", Calories: 1250, Protein: 12000.5, Carbs: 1.2345},
		},
		{
			"alias keys and case",
			`{"Item_Name":" Eggs ","Calories":180,"protein_g":14,"carbs_g":2,"fat_g":12}`,
			MealAnalysis{Name: "Eggs", Calories: 180, Protein: 14, Carbs: 2, Fat: 12},
		},
		{
			"code fence",
			"```json\n{\"name\":\"Toast\",\"calories\":120}\n```",
			MealAnalysis{Name: "Toast", Calories: 120},
		},
		{
			"no name but calories",
			`{"calories":300}`,
			MealAnalysis{Name: "Unnamed meal", Calories: 300},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeMealAnalysis([]byte(tc.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecodeMealAnalysis_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `not valid json at all`, ErrMalformedResponse},
		{"array", `[1,2,3]`, ErrMalformedResponse},
		{"null", `null`, ErrMalformedResponse},
		{"unrecognized", `{"error":"unrecognized"}`, ErrUnrecognized},
		{"empty object", `{}`, ErrUnrecognized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeMealAnalysis([]byte(tc.raw))
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMealAnalysisEntry(t *testing.T) {
	a := MealAnalysis{Name: "Soup", Calories: 200, Protein: 8}
	e := a.Entry("2024-04-01", SourceText)
	if e.Date != "2024-04-01" || e.Source != SourceText || e.Name != "Soup" || e.Calories != 200 {
		t.Errorf("entry = %+v", e)
	}
}

/* ─── DecodeWeeklyPlan ───────────────────────────────────────────────── */

func TestDecodeWeeklyPlan_English(t *testing.T) {
	raw := `{
		"Monday": {"breakfast":"Oats","lunch":"Chicken salad","dinner":"Salmon","snack":"Yogurt","total_calories":1900},
		"tuesday": {"breakfast":"Eggs","lunch":"Rice bowl","dinner":"Soup","total_calories":"1850"},
		"notes": "drink water"
	}`
	plan, err := DecodeWeeklyPlan([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(plan.Days))
	}
	mon := plan.Days["monday"]
	if mon.Breakfast != "Oats" || mon.Snack != "Yogurt" || mon.TotalCalories != 1900 {
		t.Errorf("monday = %+v", mon)
	}
	if plan.Days["tuesday"].TotalCalories != 1850 {
		t.Errorf("tuesday total = %.0f, want 1850", plan.Days["tuesday"].TotalCalories)
	}
}

// TestDecodeWeeklyPlan_LegacyItalian reads a plan in the shape the first app
// version stored.
func TestDecodeWeeklyPlan_LegacyItalian(t *testing.T) {
	raw := `{"lunedì":{"colazione":"Caffè e cornetto","pranzo":"Pasta","cena":"Pesce","snack":"Frutta","totale_cal":1800}}`
	plan, err := DecodeWeeklyPlan([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mon, ok := plan.Days["monday"]
	if !ok {
		t.Fatalf("monday missing: %+v", plan.Days)
	}
	if mon.Lunch != "Pasta" || mon.TotalCalories != 1800 {
		t.Errorf("monday = %+v", mon)
	}
}

func TestDecodeWeeklyPlan_NestedAndObjectMeals(t *testing.T) {
	raw := `{"days":{"friday":{"breakfast":{"name":"Pancakes","calories":400},"lunch":"Wrap","dinner":"Tacos"}}}`
	plan, err := DecodeWeeklyPlan([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := plan.Days["friday"].Breakfast; got != "Pancakes" {
		t.Errorf("breakfast = %q, want Pancakes", got)
	}
}

func TestDecodeWeeklyPlan_NoDays(t *testing.T) {
	for _, raw := range []string{`{"plan":"none"}`, `garbage`, `{"monday":"rest"}`} {
		if _, err := DecodeWeeklyPlan([]byte(raw)); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("%s: err = %v, want ErrMalformedResponse", raw, err)
		}
	}
}
