package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/exchange/adapters"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/form"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/logger"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/risk"
)

// EnvPrefix is prepended to every environment variable, e.g. RISK_SERVER_PORT
const EnvPrefix = "RISK"

type Config struct {
	Environment string `split_words:"true" default:"development"`

	// Initial values of the calculator fields
	Defaults struct {
		AccountSize      string `split_words:"true" default:"1000"`
		RiskPercent      string `split_words:"true" default:"2"`
		MaxMarginPercent string `split_words:"true" default:"75"`
		MaxLeverage      string `split_words:"true" default:"125"`
		EntryPrice       string `split_words:"true" default:"100"`
		SLPrice          string `split_words:"true" default:"97"`
	}

	Server struct {
		Host            string        `split_words:"true" default:""`
		Port            int           `split_words:"true" default:"8080"`
		ReadTimeout     time.Duration `split_words:"true" default:"10s"`
		WriteTimeout    time.Duration `split_words:"true" default:"10s"`
		ShutdownTimeout time.Duration `split_words:"true" default:"15s"`
		CORSOrigins     []string      `split_words:"true" default:"*"`
	}

	// Optional Bybit lookup of per-symbol leverage ceilings
	Exchange struct {
		Enabled   bool          `split_words:"true" default:"false"`
		Name      string        `split_words:"true" default:"bybit"`
		Category  string        `split_words:"true" default:"linear"`
		Testnet   bool          `split_words:"true" default:"false"`
		Demo      bool          `split_words:"true" default:"false"`
		APIKey    string        `split_words:"true"`
		APISecret string        `split_words:"true"`
		CacheTTL  time.Duration `split_words:"true" default:"1h"`
		Timeout   time.Duration `split_words:"true" default:"5s"`
	}

	Logging struct {
		Level string `split_words:"true" default:"info"`
		File  string `split_words:"true"`
	}

	Metrics struct {
		Enabled bool   `split_words:"true" default:"true"`
		Path    string `split_words:"true" default:"/metrics"`
	}
}

// IsProduction reports whether the production logging setup should be used
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Addr returns the listen address of the API server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ExchangeAdapterConfig returns the settings for the leverage limits provider
func (c *Config) ExchangeAdapterConfig() adapters.Config {
	return adapters.Config{
		Name:      c.Exchange.Name,
		APIKey:    c.Exchange.APIKey,
		APISecret: c.Exchange.APISecret,
		Testnet:   c.Exchange.Testnet,
		Demo:      c.Exchange.Demo,
		Category:  c.Exchange.Category,
		CacheTTL:  c.Exchange.CacheTTL,
		Timeout:   c.Exchange.Timeout,
	}
}

// DefaultFields returns the configured initial calculator values
func (c *Config) DefaultFields() form.Fields {
	return form.Fields{
		AccountSize:      c.Defaults.AccountSize,
		RiskPercent:      c.Defaults.RiskPercent,
		MaxMarginPercent: c.Defaults.MaxMarginPercent,
		MaxLeverage:      c.Defaults.MaxLeverage,
		EntryPrice:       c.Defaults.EntryPrice,
		SLPrice:          c.Defaults.SLPrice,
	}
}

// ValidateConfig checks that the configuration is usable
func ValidateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("RISK_SERVER_PORT must be between 1 and 65535, got: %d", cfg.Server.Port)
	}

	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("RISK_SERVER_SHUTDOWN_TIMEOUT must be positive, got: %s", cfg.Server.ShutdownTimeout)
	}

	if _, err := logger.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("RISK_LOGGING_LEVEL must be one of debug, info, warn, error, got: %s", cfg.Logging.Level)
	}

	if cfg.Exchange.Enabled {
		supported := adapters.NewFactory().GetSupportedExchanges()
		if !slices.Contains(supported, strings.ToLower(cfg.Exchange.Name)) {
			return fmt.Errorf("RISK_EXCHANGE_NAME must be one of [%s], got: %s", strings.Join(supported, ", "), cfg.Exchange.Name)
		}
		switch cfg.Exchange.Category {
		case "linear", "inverse":
		default:
			return fmt.Errorf("RISK_EXCHANGE_CATEGORY must be linear or inverse, got: %s", cfg.Exchange.Category)
		}
		if cfg.Exchange.CacheTTL <= 0 {
			return fmt.Errorf("RISK_EXCHANGE_CACHE_TTL must be positive, got: %s", cfg.Exchange.CacheTTL)
		}
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("RISK_METRICS_PATH must start with /, got: %s", cfg.Metrics.Path)
	}

	// Defaults must describe a computable trade
	in, err := form.Parse(cfg.DefaultFields())
	if err != nil {
		return fmt.Errorf("invalid RISK_DEFAULTS_*: %w", err)
	}
	if _, err := risk.Compute(in); err != nil {
		return fmt.Errorf("invalid RISK_DEFAULTS_*: %w", err)
	}

	return nil
}

// LoadConfig loads envFile (if it exists) and then parses the environment
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
