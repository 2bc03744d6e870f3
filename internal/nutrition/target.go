package nutrition

import "math"

// MacroTargets are the daily macronutrient targets in grams.
type MacroTargets struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// TargetConfig tunes ComputeDailyTarget.
type TargetConfig struct {
	// FallbackCalories is the target for a profile without a weight.
	FallbackCalories float64
	// FallbackAppliesGoal treats FallbackCalories as a BMR and applies the
	// goal multiplier to it. When false an unprofiled user gets exactly
	// FallbackCalories whatever their goal.
	FallbackAppliesGoal bool
	Macros              MacroTargets
}

// DefaultTargetConfig returns the targets users have always seen: a flat 2000
// kcal without a profile and 150/250/70 g macros.
func DefaultTargetConfig() TargetConfig {
	return TargetConfig{
		FallbackCalories: 2000,
		Macros:           MacroTargets{ProteinG: 150, CarbsG: 250, FatG: 70},
	}
}

// DailyTarget is the computed daily energy and macro target.
type DailyTarget struct {
	TargetCalories int `json:"target_calories"`
	MacroTargets
}

// BMR computes the Mifflin-St Jeor basal metabolic rate. It returns a
// ValidationError when weight is set but age, height or gender is missing.
// ok is false when weight is unset, in which case there is no BMR.
func BMR(p Profile) (bmr float64, ok bool, err error) {
	if p.Weight <= 0 {
		return 0, false, nil
	}
	if p.Age <= 0 {
		return 0, false, &ValidationError{Field: "age", Reason: "is required when weight is set"}
	}
	if p.Height <= 0 {
		return 0, false, &ValidationError{Field: "height", Reason: "is required when weight is set"}
	}
	gender, err := ParseGender(string(p.Gender))
	if err != nil {
		return 0, false, err
	}

	bmr = 10*p.Weight + 6.25*p.Height - 5*float64(p.Age)
	if gender == Male {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr, true, nil
}

// ComputeDailyTarget derives the daily calorie target from p:
// round(BMR * goal multiplier), or cfg.FallbackCalories when p has no weight.
func ComputeDailyTarget(p Profile, cfg TargetConfig) (DailyTarget, error) {
	goal, err := ParseGoal(string(p.Goal))
	if err != nil {
		return DailyTarget{}, err
	}
	bmr, ok, err := BMR(p)
	if err != nil {
		return DailyTarget{}, err
	}

	var kcal float64
	switch {
	case ok:
		kcal = bmr * goal.multiplier()
	case cfg.FallbackAppliesGoal:
		kcal = cfg.FallbackCalories * goal.multiplier()
	default:
		kcal = cfg.FallbackCalories
	}

	return DailyTarget{
		TargetCalories: int(math.Round(kcal)),
		MacroTargets:   cfg.Macros,
	}, nil
}
