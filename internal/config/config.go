package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Market   MarketConfig   `mapstructure:"market"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// MarketConfig controls which coins are watched and how the book is
// aggregated for display.
type MarketConfig struct {
	Coins          []string `mapstructure:"coins"`
	BucketSize     string   `mapstructure:"bucket_size"`     // decimal string, e.g. "0.5"
	ImbalanceDepth int      `mapstructure:"imbalance_depth"` // topN levels per side
	DisplayDepth   int      `mapstructure:"display_depth"`   // rows per side in the ladder
}

// FeedConfig configures the WebSocket market-data feed.
type FeedConfig struct {
	URL              string `mapstructure:"url"`
	ConnectTimeout   int    `mapstructure:"connect_timeout"`   // seconds
	ReadTimeout      int    `mapstructure:"read_timeout"`      // seconds
	ReconnectInitial int    `mapstructure:"reconnect_initial"` // milliseconds
	ReconnectMax     int    `mapstructure:"reconnect_max"`     // milliseconds
	MaxReconnects    int    `mapstructure:"max_reconnects"`
}

// DatabaseConfig represents the audit store configuration
type DatabaseConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	MaxOpenConns     int    `mapstructure:"max_open_conns"`
	MaxIdleConns     int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  int    `mapstructure:"conn_max_lifetime"` // in minutes
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, console
	OutputPath string `mapstructure:"output_path"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("MARKET_CORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Market defaults
	v.SetDefault("market.coins", []string{"BTC", "ETH"})
	v.SetDefault("market.bucket_size", "1")
	v.SetDefault("market.imbalance_depth", 10)
	v.SetDefault("market.display_depth", 20)

	// Feed defaults
	v.SetDefault("feed.url", "wss://api.hyperliquid.xyz/ws")
	v.SetDefault("feed.connect_timeout", 10)
	v.SetDefault("feed.read_timeout", 60)
	v.SetDefault("feed.reconnect_initial", 500)
	v.SetDefault("feed.reconnect_max", 30000)
	v.SetDefault("feed.max_reconnects", 10)

	// Database defaults
	v.SetDefault("database.connection_string", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if len(config.Market.Coins) == 0 {
		return fmt.Errorf("at least one coin must be configured")
	}

	if config.Market.ImbalanceDepth < 1 {
		return fmt.Errorf("imbalance_depth must be positive: %d", config.Market.ImbalanceDepth)
	}

	if config.Market.DisplayDepth < 1 {
		return fmt.Errorf("display_depth must be positive: %d", config.Market.DisplayDepth)
	}

	if config.Feed.URL == "" {
		return fmt.Errorf("feed url is required")
	}

	if config.Feed.MaxReconnects < 1 {
		return fmt.Errorf("max_reconnects must be positive: %d", config.Feed.MaxReconnects)
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", config.Logging.Level)
	}

	switch config.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s", config.Logging.Format)
	}

	return nil
}
