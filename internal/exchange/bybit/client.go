package bybit

import (
	"context"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// Environment names a Bybit endpoint set
type Environment string

const (
	Mainnet Environment = "mainnet"
	Testnet Environment = "testnet"
	Demo    Environment = "demo"
)

const demoBaseURL = "https://api-demo.bybit.com"

// EnvironmentFor picks the endpoint set; demo takes precedence over testnet
func EnvironmentFor(testnet, demo bool) Environment {
	switch {
	case demo:
		return Demo
	case testnet:
		return Testnet
	default:
		return Mainnet
	}
}

// BaseURL returns the REST root for the environment
func (e Environment) BaseURL() string {
	switch e {
	case Demo:
		return demoBaseURL
	case Testnet:
		return bybit_api.TESTNET
	default:
		return bybit_api.MAINNET
	}
}

// Config holds the configuration for the Bybit client.
// Instrument info is public, so the keys may be empty.
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool
}

// Client is a read-only view of the Bybit v5 market API
type Client struct {
	api *bybit_api.Client
	env Environment
}

func NewClient(config Config) *Client {
	env := EnvironmentFor(config.Testnet, config.Demo)
	return &Client{
		api: bybit_api.NewBybitHttpClient(config.APIKey, config.APISecret, bybit_api.WithBaseURL(env.BaseURL())),
		env: env,
	}
}

// Environment reports which endpoint set the client talks to
func (c *Client) Environment() Environment {
	return c.env
}

// instrumentsInfo calls GET /v5/market/instruments-info
func (c *Client) instrumentsInfo(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return c.api.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
}
