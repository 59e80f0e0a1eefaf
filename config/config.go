// Package config loads the wellets configuration.
//
// Values come, by increasing priority, from the defaults, the YAML file, and
// the environment (a .env file in the working directory is loaded first if
// present):
//
//	WELLETS_DATA_DIR       data_dir
//	WELLETS_BASE_CURRENCY  base_currency
//	WELLETS_LOG_LEVEL      log_level
//	WELLETS_RATES_URL      rates.url
//	GEMINI_API_KEY         advisor.api_key
package config

import (
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	DataDir         string  `yaml:"data_dir"`         // folder holding the JSONL dataset
	BaseCurrency    string  `yaml:"base_currency"`    // id or acronym, empty means the dataset settings
	WeightTolerance float64 `yaml:"weight_tolerance"` // accepted error on sibling weight sums
	LogLevel        string  `yaml:"log_level"`
	Rates           Rates   `yaml:"rates"`
	Advisor         Advisor `yaml:"advisor"`
}

// Rates configures the exchange rates source.
type Rates struct {
	URL   string `yaml:"url"`
	Path  string `yaml:"path"` // jsonpath of the rates object
	Cache bool   `yaml:"cache"`
}

// Advisor configures the AI assistant.
type Advisor struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		DataDir:         ".",
		WeightTolerance: 0.0001,
		LogLevel:        "info",
		Rates: Rates{
			URL:   "https://api.exchangerate-api.com/v4/latest/USD",
			Path:  "$.rates",
			Cache: true,
		},
		Advisor: Advisor{Model: "gemini-2.5-flash"},
	}
}

// Load reads the configuration. A missing file at 'path' is not an error.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, errors.Wrapf(err, "cannot read config %q", path)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "invalid config %q", path)
			}
		}
	}

	cfg.DataDir = getEnv("WELLETS_DATA_DIR", cfg.DataDir)
	cfg.BaseCurrency = getEnv("WELLETS_BASE_CURRENCY", cfg.BaseCurrency)
	cfg.LogLevel = getEnv("WELLETS_LOG_LEVEL", cfg.LogLevel)
	cfg.Rates.URL = getEnv("WELLETS_RATES_URL", cfg.Rates.URL)
	cfg.Advisor.APIKey = getEnv("GEMINI_API_KEY", cfg.Advisor.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.WeightTolerance < 0 {
		return errors.Errorf("weight_tolerance %v must not be negative", c.WeightTolerance)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid log_level %q", c.LogLevel)
	}
	if c.Rates.URL == "" || c.Rates.Path == "" {
		return errors.New("rates.url and rates.path must be set")
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
