package application

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// TierConfig is one selectable duration/price pair.
type TierConfig struct {
	Minutes int     `yaml:"minutes"`
	Amount  float64 `yaml:"amount"`
}

// AlarmConfig configures the completion alarm delivery.
type AlarmConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Config defines engine configuration. The fallback tiers keep the desk
// operable when the rate table is unreachable.
type Config struct {
	DefaultMinutes int          `yaml:"default_minutes"`
	TickInterval   time.Duration `yaml:"tick_interval"`
	FallbackTiers  []TierConfig `yaml:"fallback_tiers"`
	Alarm          AlarmConfig  `yaml:"alarm"`
}

// LoadConfig loads engine config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		DefaultMinutes: getenvIntDefault("RENTAL_DEFAULT_MINUTES", 30),
		TickInterval:   time.Second,
		FallbackTiers: []TierConfig{
			{Minutes: 15},
			{Minutes: 30},
			{Minutes: 45},
			{Minutes: 60},
		},
		Alarm: AlarmConfig{
			WebhookURL: os.Getenv("RENTAL_ALARM_WEBHOOK_URL"),
			Timeout:    5 * time.Second,
		},
	}

	if path := os.Getenv("RENTAL_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DefaultMinutes <= 0 {
		cfg.DefaultMinutes = 30
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Alarm.Timeout <= 0 {
		cfg.Alarm.Timeout = 5 * time.Second
	}
	for _, tier := range cfg.FallbackTiers {
		if tier.Minutes <= 0 {
			return cfg, errors.New("rental: fallback tier minutes must be positive")
		}
	}
	return cfg, nil
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
