package main

import (
	"encoding/json"
	"math"

	"github.com/spf13/cobra"

	"lg/nutri-go-api/internal/nutrition"
)

var (
	targetProfile      nutrition.Profile
	targetGender       string
	targetGoal         string
	targetFallbackGoal bool
	targetFallbackCal  float64
)

// targetCmd computes a daily target from flags, without a database.
var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Compute the daily calorie and macro target for a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := targetProfile
		p.Gender = nutrition.Gender(targetGender)
		p.Goal = nutrition.Goal(targetGoal)
		p, err := p.Normalize()
		if err != nil {
			return err
		}

		cfg := nutrition.DefaultTargetConfig()
		cfg.FallbackAppliesGoal = targetFallbackGoal
		if targetFallbackCal > 0 {
			cfg.FallbackCalories = targetFallbackCal
		}
		target, err := nutrition.ComputeDailyTarget(p, cfg)
		if err != nil {
			return err
		}

		out := struct {
			nutrition.DailyTarget
			BMR *int `json:"bmr,omitempty"`
		}{DailyTarget: target}
		if bmr, ok, _ := nutrition.BMR(p); ok {
			rounded := int(math.Round(bmr))
			out.BMR = &rounded
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	f := targetCmd.Flags()
	f.Float64Var(&targetProfile.Weight, "weight", 0, "Weight in kg (0 = unknown)")
	f.Float64Var(&targetProfile.Height, "height", 0, "Height in cm")
	f.IntVar(&targetProfile.Age, "age", 0, "Age in years")
	f.StringVar(&targetGender, "gender", "", "male or female")
	f.StringVar(&targetGoal, "goal", "", "maintenance, weight-loss or muscle-gain")
	f.BoolVar(&targetFallbackGoal, "fallback-applies-goal", false, "Apply the goal multiplier to the no-weight fallback")
	f.Float64Var(&targetFallbackCal, "fallback-calories", 0, "Override the no-weight fallback target")
	rootCmd.AddCommand(targetCmd)
}
