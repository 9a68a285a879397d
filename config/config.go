package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultTimeoutSeconds bounds the outbound request when no timeout is
// configured
const DefaultTimeoutSeconds = 10

// AppConfig holds the settings an application needs to query the
// Transport NSW departure monitor API. ExcludedModes lists transport
// mode class codes excluded by default when a query does not carry its
// own exclusions.
type AppConfig struct {
	APIKey         string   `yaml:"api_key" validate:"required"`
	APIURL         string   `yaml:"api_url" validate:"omitempty,url"`
	TimeoutSeconds int      `yaml:"timeout_seconds" validate:"gte=0"`
	ExcludedModes  []string `yaml:"excluded_modes"`
}

// Load reads the application configuration from a YAML file, validates
// it and applies defaults
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read configuration file")
	}

	cfg := AppConfig{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal configuration file")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}

	return &cfg, nil
}
