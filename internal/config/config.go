package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/billsplit-dev/billsplit/internal/id"
	"github.com/billsplit-dev/billsplit/internal/logging"
	"github.com/billsplit-dev/billsplit/internal/model"
)

// FileName is the default configuration file name.
const FileName = "billsplit.yaml"

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "BILLSPLIT_CONFIG"

// Config represents the top-level billsplit.yaml configuration.
type Config struct {
	Currency   CurrencyConfig   `yaml:"currency"`
	Bill       BillConfig       `yaml:"bill"`
	Settlement SettlementConfig `yaml:"settlement"`
	Log        LogConfig        `yaml:"log"`
}

// CurrencyConfig controls how amounts are displayed.
type CurrencyConfig struct {
	Symbol string `yaml:"symbol"`
}

// BillConfig holds defaults for new bills.
type BillConfig struct {
	DefaultName string `yaml:"default_name"`
	IDs         string `yaml:"ids"` // "sequential" or "uuid"
}

// SettlementConfig controls settlement behavior.
type SettlementConfig struct {
	// Strict refuses balances that do not sum to zero.
	Strict      bool   `yaml:"strict"`
	DefaultName string `yaml:"default_name"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a billsplit.yaml file from disk. Fields missing from the file
// keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Currency: CurrencyConfig{
			Symbol: "$",
		},
		Bill: BillConfig{
			DefaultName: model.DefaultBillName,
			IDs:         "sequential",
		},
		Settlement: SettlementConfig{
			Strict:      true,
			DefaultName: model.DefaultSettlementName,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := id.FromName(c.Bill.IDs); err != nil {
		return fmt.Errorf("bill.ids: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Path resolves the config file location: an explicit path wins, then
// $BILLSPLIT_CONFIG, then FileName in the working directory.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return FileName
}
