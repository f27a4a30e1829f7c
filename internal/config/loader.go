package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "rentdesk.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// A missing file is not an error.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Database.Driver, "RENTDESK_DB_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setInt(&cfg.Billing.DueDayOffset, "RENTDESK_DUE_DAY_OFFSET")
	setInt(&cfg.Billing.DueSoonDays, "RENTDESK_DUE_SOON_DAYS")
	setInt(&cfg.Billing.RecentInvoices, "RENTDESK_RECENT_INVOICES")
	setString(&cfg.Org.Name, "RENTDESK_ORG_NAME")
	setString(&cfg.Org.CurrencySymbol, "RENTDESK_CURRENCY_SYMBOL")
	setString(&cfg.Logging.Level, "RENTDESK_LOG_LEVEL")
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return fmt.Errorf("database.driver %q must be sqlite or postgres", cfg.Database.Driver)
	}
	if cfg.Billing.DueDayOffset < 0 {
		return errors.New("billing.due_day_offset must not be negative")
	}
	if cfg.Billing.DueSoonDays < 0 {
		return errors.New("billing.due_soon_days must not be negative")
	}
	if cfg.Billing.RecentInvoices < 1 {
		return errors.New("billing.recent_invoices must be at least 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
