package simulation

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the simulation parameters
type Config struct {
	Rounds          int
	Mechanism       string
	StaticBidders   int
	AdaptiveBidders int
	MinValuation    float64
	MaxValuation    float64
	// RoundsPerSecond paces rounds; zero runs unthrottled
	RoundsPerSecond float64
	Seed            int64
	RoundTimeout    time.Duration
}

// LoadConfig loads the simulation configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SIM_ROUNDS", 100)
	v.SetDefault("SIM_MECHANISM", "second_price")
	v.SetDefault("SIM_STATIC_BIDDERS", 2)
	v.SetDefault("SIM_ADAPTIVE_BIDDERS", 3)
	v.SetDefault("SIM_MIN_VALUATION", 50.0)
	v.SetDefault("SIM_MAX_VALUATION", 150.0)
	v.SetDefault("SIM_ROUNDS_PER_SECOND", 0.0)
	v.SetDefault("SIM_SEED", 1)
	v.SetDefault("SIM_ROUND_TIMEOUT_SECONDS", 5)

	v.AutomaticEnv()

	cfg := &Config{
		Rounds:          v.GetInt("SIM_ROUNDS"),
		Mechanism:       v.GetString("SIM_MECHANISM"),
		StaticBidders:   v.GetInt("SIM_STATIC_BIDDERS"),
		AdaptiveBidders: v.GetInt("SIM_ADAPTIVE_BIDDERS"),
		MinValuation:    v.GetFloat64("SIM_MIN_VALUATION"),
		MaxValuation:    v.GetFloat64("SIM_MAX_VALUATION"),
		RoundsPerSecond: v.GetFloat64("SIM_ROUNDS_PER_SECOND"),
		Seed:            v.GetInt64("SIM_SEED"),
		RoundTimeout:    time.Duration(v.GetInt("SIM_ROUND_TIMEOUT_SECONDS")) * time.Second,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Rounds <= 0 {
		return fmt.Errorf("SIM_ROUNDS must be positive")
	}
	if cfg.Mechanism == "" {
		return fmt.Errorf("SIM_MECHANISM must not be empty")
	}
	if cfg.StaticBidders < 0 || cfg.AdaptiveBidders < 0 {
		return fmt.Errorf("bidder counts must not be negative")
	}
	if cfg.StaticBidders+cfg.AdaptiveBidders == 0 {
		return fmt.Errorf("at least one bidder is required")
	}
	if cfg.MinValuation <= 0 {
		return fmt.Errorf("SIM_MIN_VALUATION must be positive")
	}
	if cfg.MaxValuation < cfg.MinValuation {
		return fmt.Errorf("SIM_MAX_VALUATION must not be below SIM_MIN_VALUATION")
	}
	if cfg.RoundsPerSecond < 0 {
		return fmt.Errorf("SIM_ROUNDS_PER_SECOND must not be negative")
	}
	if cfg.RoundTimeout <= 0 {
		return fmt.Errorf("SIM_ROUND_TIMEOUT_SECONDS must be positive")
	}
	return nil
}
