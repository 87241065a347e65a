package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/risk"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Caller mistakes, never retried
	ErrorCategoryValidation    ErrorCategory = "VALIDATION"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Collaborator failures
	ErrorCategoryExchange ErrorCategory = "EXCHANGE"
	ErrorCategoryNetwork  ErrorCategory = "NETWORK"
	ErrorCategoryTimeout  ErrorCategory = "TIMEOUT"
	ErrorCategoryExport   ErrorCategory = "EXPORT"

	ErrorCategoryInternal ErrorCategory = "INTERNAL"
)

// CalcError represents a categorized error with context
type CalcError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
	Retryable  bool
}

// Error implements the error interface
func (e *CalcError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *CalcError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether this error can be retried by the caller
func (e *CalcError) IsRetryable() bool {
	return e.Retryable
}

// NewCalcError creates a new categorized error
func NewCalcError(category ErrorCategory, component, operation, message string) *CalcError {
	return &CalcError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Retryable: isRetryableCategory(category),
	}
}

// WrapError wraps an existing error with category and component context
func WrapError(err error, category ErrorCategory, component, operation string) *CalcError {
	if err == nil {
		return nil
	}

	return &CalcError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
		Retryable:  isRetryableCategory(category),
	}
}

// WithContext adds context information to the error
func (e *CalcError) WithContext(key string, value interface{}) *CalcError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithMessage replaces the generic message
func (e *CalcError) WithMessage(message string) *CalcError {
	e.Message = message
	return e
}

// HTTPStatus maps the category to a response status code
func (e *CalcError) HTTPStatus() int {
	switch e.Category {
	case ErrorCategoryValidation:
		return http.StatusBadRequest
	case ErrorCategoryExchange, ErrorCategoryNetwork:
		return http.StatusBadGateway
	case ErrorCategoryTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode maps the category to a process exit code
func (e *CalcError) ExitCode() int {
	switch e.Category {
	case ErrorCategoryValidation:
		return 1
	case ErrorCategoryConfiguration:
		return 2
	case ErrorCategoryExport:
		return 3
	default:
		return 4
	}
}

func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryExchange:
		return true
	default:
		return false
	}
}

// Categorize attempts to categorize a generic error
func Categorize(err error, component, operation string) *CalcError {
	if err == nil {
		return nil
	}

	var calcErr *CalcError
	if stderrors.As(err, &calcErr) {
		return calcErr
	}

	if stderrors.Is(err, risk.ErrInvalidInput) {
		return WrapError(err, ErrorCategoryValidation, component, operation).
			WithMessage("invalid input").
			WithContext("field", risk.FieldOf(err))
	}

	var bybitErr *bybit.BybitError
	if stderrors.As(err, &bybitErr) {
		return NewExchangeError(component, operation, err).WithContext("code", bybitErr.Code)
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "context deadline exceeded") {
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "dial") {
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	}

	if strings.Contains(errMsg, "api error") || strings.Contains(errMsg, "instrument") {
		return NewExchangeError(component, operation, err)
	}

	return WrapError(err, ErrorCategoryInternal, component, operation)
}

// Common error constructors
func NewValidationError(component, operation, message string) *CalcError {
	return NewCalcError(ErrorCategoryValidation, component, operation, message)
}

func NewConfigurationError(component, operation string, err error) *CalcError {
	return WrapError(err, ErrorCategoryConfiguration, component, operation).WithMessage("invalid configuration")
}

func NewExchangeError(component, operation string, err error) *CalcError {
	return WrapError(err, ErrorCategoryExchange, component, operation)
}

func NewExportError(component, operation string, err error) *CalcError {
	return WrapError(err, ErrorCategoryExport, component, operation).WithMessage("export failed")
}
