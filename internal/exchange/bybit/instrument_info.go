package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/exchange"
)

const exchangeName = "bybit"

// InstrumentInfo holds the instrument fields used for sizing
type InstrumentInfo struct {
	Symbol         string `json:"symbol"`
	Status         string `json:"status"`
	BaseCoin       string `json:"baseCoin"`
	QuoteCoin      string `json:"quoteCoin"`
	ContractType   string `json:"contractType"`
	LeverageFilter struct {
		MinLeverage  string `json:"minLeverage"`
		MaxLeverage  string `json:"maxLeverage"`
		LeverageStep string `json:"leverageStep"`
	} `json:"leverageFilter"`
	PriceFilter struct {
		MinPrice string `json:"minPrice"`
		MaxPrice string `json:"maxPrice"`
		TickSize string `json:"tickSize"`
	} `json:"priceFilter"`
}

type cachedInstrument struct {
	info      *InstrumentInfo
	fetchedAt time.Time
}

// fetchFunc performs the raw instruments-info request
type fetchFunc func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// InstrumentManager fetches and caches instrument information and implements
// exchange.LimitsProvider
type InstrumentManager struct {
	fetch          fetchFunc
	category       string
	instruments    map[string]cachedInstrument
	mutex          sync.RWMutex
	updateInterval time.Duration
	timeout        time.Duration
	retry          RetryConfig
}

// ManagerOption configures an InstrumentManager
type ManagerOption func(*InstrumentManager)

// WithCategory sets the product category (linear or inverse)
func WithCategory(category string) ManagerOption {
	return func(im *InstrumentManager) {
		im.category = category
	}
}

// WithCacheTTL sets how long an instrument stays cached
func WithCacheTTL(ttl time.Duration) ManagerOption {
	return func(im *InstrumentManager) {
		im.updateInterval = ttl
	}
}

// WithTimeout bounds each API request
func WithTimeout(timeout time.Duration) ManagerOption {
	return func(im *InstrumentManager) {
		im.timeout = timeout
	}
}

// WithRetry sets the backoff used for rate-limited or 5xx responses
func WithRetry(config RetryConfig) ManagerOption {
	return func(im *InstrumentManager) {
		im.retry = config
	}
}

// NewInstrumentManager creates a new instrument manager
func NewInstrumentManager(client *Client, opts ...ManagerOption) *InstrumentManager {
	im := newInstrumentManager(client.instrumentsInfo)
	im.retry = DefaultRetryConfig()
	for _, opt := range opts {
		opt(im)
	}
	return im
}

func newInstrumentManager(fetch fetchFunc) *InstrumentManager {
	return &InstrumentManager{
		fetch:          fetch,
		category:       "linear",
		instruments:    make(map[string]cachedInstrument),
		updateInterval: 1 * time.Hour,
		timeout:        5 * time.Second,
	}
}

// GetLeverageLimits implements exchange.LimitsProvider
func (im *InstrumentManager) GetLeverageLimits(ctx context.Context, symbol string) (*exchange.LeverageLimits, error) {
	symbol = exchange.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	instrument, err := im.GetInstrumentInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}

	limits := &exchange.LeverageLimits{
		Exchange:     exchangeName,
		Symbol:       instrument.Symbol,
		MinLeverage:  parseFloat64(instrument.LeverageFilter.MinLeverage),
		MaxLeverage:  parseFloat64(instrument.LeverageFilter.MaxLeverage),
		LeverageStep: parseFloat64(instrument.LeverageFilter.LeverageStep),
	}
	if limits.MaxLeverage < 1 {
		return nil, fmt.Errorf("instrument %s reports no usable max leverage %q", symbol, instrument.LeverageFilter.MaxLeverage)
	}

	return limits, nil
}

// GetInstrumentInfo retrieves and caches instrument information
func (im *InstrumentManager) GetInstrumentInfo(ctx context.Context, symbol string) (*InstrumentInfo, error) {
	// Check cache first
	im.mutex.RLock()
	if cached, exists := im.instruments[symbol]; exists && time.Since(cached.fetchedAt) < im.updateInterval {
		im.mutex.RUnlock()
		return cached.info, nil
	}
	im.mutex.RUnlock()

	instrument, err := im.fetchInstrumentInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}

	im.mutex.Lock()
	im.instruments[symbol] = cachedInstrument{info: instrument, fetchedAt: time.Now()}
	im.mutex.Unlock()

	return instrument, nil
}

// RefreshInstruments clears the instrument cache
func (im *InstrumentManager) RefreshInstruments() {
	im.mutex.Lock()
	defer im.mutex.Unlock()
	im.instruments = make(map[string]cachedInstrument)
}

// fetchInstrumentInfo fetches instrument information from Bybit API
func (im *InstrumentManager) fetchInstrumentInfo(ctx context.Context, symbol string) (*InstrumentInfo, error) {
	if im.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, im.timeout)
		defer cancel()
	}

	params := map[string]interface{}{
		"category": im.category,
		"symbol":   symbol,
	}

	var instrument *InstrumentInfo
	err := retry(ctx, im.retry, func() error {
		result, err := im.fetch(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to fetch instrument info: %w", err)
		}

		instrument, err = parseInstrumentInfoResponse(result, symbol)
		if err != nil {
			return fmt.Errorf("failed to parse instrument info: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return instrument, nil
}

// parseInstrumentInfoResponse parses the instrument info API response
func parseInstrumentInfoResponse(response interface{}, targetSymbol string) (*InstrumentInfo, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type %T", response)
	}

	if err := ParseAPIError(serverResp.RetCode, serverResp.RetMsg, targetSymbol); err != nil {
		return nil, err
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var instrumentResult struct {
		Category string           `json:"category"`
		List     []InstrumentInfo `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &instrumentResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instrument result: %w", err)
	}

	for i := range instrumentResult.List {
		if instrumentResult.List[i].Symbol == targetSymbol {
			return &instrumentResult.List[i], nil
		}
	}

	return nil, ParseAPIError(ErrCodeSymbolNotFound, "", targetSymbol)
}

// parseFloat64 parses a numeric string, returning 0 for empty or malformed values
func parseFloat64(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
