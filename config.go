package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"lg/nutri-go-api/internal/nutrition"
)

// config is the server configuration. Values come from the environment
// (after .env is loaded), an optional nutri.yaml, then defaults.
type config struct {
	Port string
	// DBURL is the Postgres connection string.
	DBURL string
	Env   string

	GeminiBaseURL string
	GeminiModel   string
	// GeminiAPIKey is used only when the app_secrets row is missing.
	GeminiAPIKey string
	AITimeout    time.Duration
	// AIDailyLimit caps AI calls per user per day; 0 disables the cap.
	AIDailyLimit int

	Target nutrition.TargetConfig
}

func setConfigDefaults(v *viper.Viper) {
	def := nutrition.DefaultTargetConfig()
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("ai_timeout", 30*time.Second)
	v.SetDefault("ai_daily_limit", 50)
	v.SetDefault("target_fallback_calories", def.FallbackCalories)
	v.SetDefault("target_fallback_applies_goal", def.FallbackAppliesGoal)
	v.SetDefault("macro_protein_g", def.Macros.ProteinG)
	v.SetDefault("macro_carbs_g", def.Macros.CarbsG)
	v.SetDefault("macro_fat_g", def.Macros.FatG)
}

// loadConfig reads nutri.yaml from the working directory or /etc/nutri if
// present, with environment variables (DB_URL, GEMINI_MODEL, ...) taking
// precedence.
func loadConfig() (config, error) {
	v := viper.New()
	v.SetConfigName("nutri")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/nutri")
	v.AutomaticEnv()
	setConfigDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return configFrom(v)
}

// configFrom builds a config from v and validates it.
func configFrom(v *viper.Viper) (config, error) {
	cfg := config{
		Port:          v.GetString("port"),
		DBURL:         v.GetString("db_url"),
		Env:           v.GetString("env"),
		GeminiBaseURL: v.GetString("gemini_base_url"),
		GeminiModel:   v.GetString("gemini_model"),
		GeminiAPIKey:  v.GetString("gemini_api_key"),
		AITimeout:     v.GetDuration("ai_timeout"),
		AIDailyLimit:  v.GetInt("ai_daily_limit"),
		Target: nutrition.TargetConfig{
			FallbackCalories:    v.GetFloat64("target_fallback_calories"),
			FallbackAppliesGoal: v.GetBool("target_fallback_applies_goal"),
			Macros: nutrition.MacroTargets{
				ProteinG: v.GetFloat64("macro_protein_g"),
				CarbsG:   v.GetFloat64("macro_carbs_g"),
				FatG:     v.GetFloat64("macro_fat_g"),
			},
		},
	}

	switch {
	case cfg.AIDailyLimit < 0:
		return config{}, fmt.Errorf("ai_daily_limit must be >= 0")
	case cfg.Target.FallbackCalories <= 0:
		return config{}, fmt.Errorf("target_fallback_calories must be > 0")
	case cfg.Target.Macros.ProteinG < 0 || cfg.Target.Macros.CarbsG < 0 || cfg.Target.Macros.FatG < 0:
		return config{}, fmt.Errorf("macro targets must be >= 0")
	case cfg.AITimeout <= 0:
		return config{}, fmt.Errorf("ai_timeout must be positive")
	}
	return cfg, nil
}
