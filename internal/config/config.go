// Package config holds process configuration, loaded from defaults,
// an optional YAML file, and environment variable overrides.
package config

// Config is the full process configuration. Billing policy values live
// here rather than as constants so tests and deployments can vary them.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Billing  BillingConfig  `yaml:"billing"`
	Org      OrgConfig      `yaml:"org"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects the storage backend. Driver is "sqlite" or
// "postgres"; DSN is driver-specific.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// BillingConfig carries the due-date and snapshot policies.
type BillingConfig struct {
	// DueDayOffset is the number of days after the first of the invoice
	// month before an invoice is due.
	DueDayOffset int `yaml:"due_day_offset"`
	// DueSoonDays is the window before the due date that shows "Due Soon".
	DueSoonDays int `yaml:"due_soon_days"`
	// RecentInvoices is how many invoices a room snapshot considers.
	RecentInvoices int `yaml:"recent_invoices"`
}

// OrgConfig provides fallbacks for organization settings not yet stored
// in the settings table.
type OrgConfig struct {
	Name           string `yaml:"name"`
	CurrencySymbol string `yaml:"currency_symbol"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "rentdesk.db",
		},
		Billing: BillingConfig{
			DueDayOffset:   5,
			DueSoonDays:    3,
			RecentInvoices: 6,
		},
		Org: OrgConfig{
			Name:           "Rental Management System",
			CurrencySymbol: "₹",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
