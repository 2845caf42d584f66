package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const appName = "facturas"

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Letterhead printed on every invoice
	Company CompanyConfig `yaml:"company"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Outgoing mail
	Mail MailConfig `yaml:"mail"`

	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Driver    string `yaml:"driver"`    // sqlite, mysql or postgres
	Path      string `yaml:"path"`      // Path to SQLite database
	DSN       string `yaml:"dsn"`       // Connection string for mysql and postgres
	Encrypted bool   `yaml:"encrypted"` // SQLite file is encrypted with sqlcipher
}

type CompanyConfig struct {
	Name    string   `yaml:"name"`
	Owner   string   `yaml:"owner"`
	Address []string `yaml:"address"`
	TaxID   string   `yaml:"tax_id"`
}

type InvoiceConfig struct {
	TaxRate   float64 `yaml:"tax_rate"`   // VAT as decimal (0.21 = 21%)
	OutputDir string  `yaml:"output_dir"` // Directory for generated PDFs
	LogoPath  string  `yaml:"logo_path"`  // Empty looks for logo.jpg next to the binary
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// Dir returns ~/.config/facturas
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(homeDir, ".config", appName)
}

// DefaultConfigPath returns ~/.config/facturas/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()

	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(dir, "facturas.db"),
		},
		Invoice: InvoiceConfig{
			TaxRate:   0.21,
			OutputDir: filepath.Join(dir, "facturas"),
		},
		Mail: MailConfig{
			Port: 587,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "facturas.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Keys missing from the file keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverMySQL, DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Invoice.TaxRate < 0 || c.Invoice.TaxRate >= 1 {
		return fmt.Errorf("invoice.tax_rate must be between 0 and 1, got %v", c.Invoice.TaxRate)
	}

	return nil
}

// TaxRate returns the configured VAT rate as a decimal
func (c *Config) TaxRate() decimal.Decimal {
	return decimal.NewFromFloat(c.Invoice.TaxRate)
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// EnsureDirectories creates the directories for the database, the invoices
// and the log file
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Invoice.OutputDir}
	if c.Database.Driver == DriverSQLite {
		dirs = append(dirs, filepath.Dir(c.Database.Path))
	}
	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// ResolveLogoPath returns the logo to print. A configured path is used as
// is; otherwise logo.jpg is looked up next to the executable and then in the
// config directory. It returns "" when no logo exists.
func (c *Config) ResolveLogoPath() string {
	if c.Invoice.LogoPath != "" {
		return c.Invoice.LogoPath
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "logo.jpg"))
	}
	candidates = append(candidates, filepath.Join(Dir(), "logo.jpg"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
