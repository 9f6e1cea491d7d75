package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Fyers    MFyersConfig    `yaml:"fyers"`
	Screener MScreenerConfig `yaml:"screener"`
	Network  MNetworkConfig  `yaml:"network"`
	Storage  MStorageConfig  `yaml:"storage"`
}

// MFyersConfig holds the broker credentials. ClientID and SecretKey are
// mandatory; either AccessToken or RefreshToken (plus optional Pin) must be
// present for the screener to issue queries.
type MFyersConfig struct {
	ClientID     string `yaml:"client_id"`
	SecretKey    string `yaml:"secret_key"`
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
	Pin          string `yaml:"pin"`
}

type MScreenerConfig struct {
	Symbols                []string `yaml:"symbols"`
	Multiplier             float64  `yaml:"multiplier"`
	RefreshIntervalSeconds int      `yaml:"refresh_interval_seconds"`
	LookbackDays           int      `yaml:"lookback_days"`
	MarketHoursOnly        bool     `yaml:"market_hours_only"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}
