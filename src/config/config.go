package config

import (
	"fmt"
	"os"
	"strings"

	"imbalance-screener/src/helpers"
	"imbalance-screener/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Screener.Multiplier == 0 {
		c.Screener.Multiplier = models.MultiplierDefault
	}
	if c.Screener.RefreshIntervalSeconds == 0 {
		c.Screener.RefreshIntervalSeconds = models.RefreshDefaultSecs
	}
	if c.Screener.LookbackDays == 0 {
		c.Screener.LookbackDays = 2
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = 7
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Credentials: missing client_id/secret_key is fatal, a missing token is
	// not (the app starts degraded and issues no queries).
	if c.Fyers.ClientID == "" || c.Fyers.SecretKey == "" {
		return fmt.Errorf("fyers.client_id and fyers.secret_key must be configured")
	}

	// Screener parameters
	if err := ValidateScanSettings(models.MScanSettings{
		Symbols:                c.Screener.Symbols,
		Multiplier:             c.Screener.Multiplier,
		RefreshIntervalSeconds: c.Screener.RefreshIntervalSeconds,
	}); err != nil {
		return err
	}
	if c.Screener.LookbackDays < 1 {
		return fmt.Errorf("lookback days must be at least 1")
	}

	// Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	case "none":
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.DBType)
	}

	return nil
}

// -----------------------------------------------------------------------------

// ValidateScanSettings checks the runtime-adjustable knobs. Shared between
// startup validation and the settings endpoint.
func ValidateScanSettings(s models.MScanSettings) error {
	if len(s.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be configured")
	}
	for i, sym := range s.Symbols {
		if strings.TrimSpace(sym) == "" {
			return fmt.Errorf("symbol %d is empty", i)
		}
	}
	if s.Multiplier < models.MultiplierMin || s.Multiplier > models.MultiplierMax {
		return fmt.Errorf("multiplier %.1f out of range [%.0f, %.0f]",
			s.Multiplier, models.MultiplierMin, models.MultiplierMax)
	}
	if s.RefreshIntervalSeconds < models.RefreshMinSeconds {
		return fmt.Errorf("refresh interval must be at least %d seconds", models.RefreshMinSeconds)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
