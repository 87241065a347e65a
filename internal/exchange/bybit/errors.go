package bybit

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bybit-exchange/bybit.go.api/handlers"
)

// Bybit return codes seen on instruments-info lookups
const (
	ErrCodeParams            = 10001
	ErrCodeRateLimitExceeded = 10006
	ErrCodeSymbolNotFound    = 110009
)

var errorDescriptions = map[int]string{
	ErrCodeParams:            "Invalid request parameters",
	ErrCodeRateLimitExceeded: "Rate limit exceeded",
	ErrCodeSymbolNotFound:    "Symbol not found",
}

// BybitError is a non-zero retCode from a lookup for Symbol
type BybitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Symbol  string `json:"symbol,omitempty"`
}

func (e *BybitError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("Bybit API error %d: %s (%s)", e.Code, e.Message, e.Symbol)
	}
	return fmt.Sprintf("Bybit API error %d: %s", e.Code, e.Message)
}

// IsRetryableError reports whether a lookup failure is worth another attempt:
// rate limiting and 5xx-class gateway failures.
//
// The SDK returns *handlers.APIError for any HTTP status >= 400 and only fills
// Code when the body is Bybit JSON, so an APIError with no code is a gateway
// failure and is retried.
func IsRetryableError(err error) bool {
	var bybitErr *BybitError
	if errors.As(err, &bybitErr) {
		return retryableCode(bybitErr.Code)
	}
	var apiErr *handlers.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 0 || retryableCode(int(apiErr.Code))
	}
	return false
}

func retryableCode(code int) bool {
	switch code {
	case ErrCodeRateLimitExceeded,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsRateLimitError checks if the error is due to rate limiting
func IsRateLimitError(err error) bool {
	return hasCode(err, ErrCodeRateLimitExceeded)
}

// IsSymbolNotFound reports whether the exchange does not list the symbol
func IsSymbolNotFound(err error) bool {
	return hasCode(err, ErrCodeSymbolNotFound)
}

func hasCode(err error, code int) bool {
	var bybitErr *BybitError
	if errors.As(err, &bybitErr) {
		return bybitErr.Code == code
	}
	var apiErr *handlers.APIError
	return errors.As(err, &apiErr) && int(apiErr.Code) == code
}

// ParseAPIError turns a retCode/retMsg pair into a *BybitError, nil on success
func ParseAPIError(retCode int, retMsg, symbol string) error {
	if retCode == 0 {
		return nil
	}
	if retMsg == "" {
		retMsg = GetErrorDescription(retCode)
	}
	return &BybitError{Code: retCode, Message: retMsg, Symbol: symbol}
}

// GetErrorDescription returns a human-readable description for an error code
func GetErrorDescription(code int) string {
	if desc, ok := errorDescriptions[code]; ok {
		return desc
	}
	return fmt.Sprintf("Unknown error code: %d", code)
}
