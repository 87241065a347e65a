package adapters

import (
	"fmt"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/exchange"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/exchange/bybit"
)

// Config selects and configures a leverage limits provider
type Config struct {
	Name      string // Exchange name (bybit)
	APIKey    string
	APISecret string
	Testnet   bool // Use testnet infrastructure
	Demo      bool // Use demo trading endpoints
	Category  string
	CacheTTL  time.Duration
	Timeout   time.Duration
}

// Factory creates limits providers based on configuration
type Factory struct{}

// NewFactory creates a new exchange factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// CreateLimitsProvider creates a provider for the configured exchange
func (f *Factory) CreateLimitsProvider(config Config) (exchange.LimitsProvider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Name)) {
	case "bybit":
		return f.createBybitProvider(config), nil
	default:
		return nil, fmt.Errorf("exchange %q is not supported (supported: %s)",
			config.Name, strings.Join(f.GetSupportedExchanges(), ", "))
	}
}

// GetSupportedExchanges returns a list of supported exchange names
func (f *Factory) GetSupportedExchanges() []string {
	return []string{"bybit"}
}

// Environment describes the endpoint set a config points at
func (f *Factory) Environment(config Config) string {
	return string(bybit.EnvironmentFor(config.Testnet, config.Demo))
}

func (f *Factory) createBybitProvider(config Config) *bybit.InstrumentManager {
	client := bybit.NewClient(bybit.Config{
		APIKey:    config.APIKey,
		APISecret: config.APISecret,
		Testnet:   config.Testnet,
		Demo:      config.Demo,
	})

	var opts []bybit.ManagerOption
	if config.Category != "" {
		opts = append(opts, bybit.WithCategory(config.Category))
	}
	if config.CacheTTL > 0 {
		opts = append(opts, bybit.WithCacheTTL(config.CacheTTL))
	}
	if config.Timeout > 0 {
		opts = append(opts, bybit.WithTimeout(config.Timeout))
	}
	return bybit.NewInstrumentManager(client, opts...)
}
