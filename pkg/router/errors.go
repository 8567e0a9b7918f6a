package router

import (
	"github.com/vango-dev/vroute/internal/errors"
)

// Sentinels for errors.Is checks against registry and parameter failures.
var (
	// ErrConfiguration matches any route declaration error.
	ErrConfiguration error = &errors.RouteError{Category: errors.CategoryConfig}

	ErrDuplicateName    error = errors.Code("R001")
	ErrDanglingRedirect error = errors.Code("R002")
	ErrTarget           error = errors.Code("R003")
	ErrInvalidPattern   error = errors.Code("R004")
	ErrUndeclaredParam  error = errors.Code("R005")
	ErrMissingParam     error = errors.Code("R006")
)

// ConfigurationError reports a route declaration that cannot be registered.
// It is fatal: the registry is never built from an invalid declaration list.
type ConfigurationError struct {
	// Definition is the offending declaration.
	Definition Definition

	// Index is its position in registration order.
	Index int

	// Err is the coded error.
	Err *errors.RouteError
}

func newConfigurationError(code string, def Definition, index int, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Definition: def,
		Index:      index,
		Err:        errors.New(code).WithRoute(def.Pattern, index).WithDetailf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	return "router: invalid route configuration: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ParamError reports a parameter that could not be filled into a pattern.
type ParamError struct {
	Pattern string
	Param   string
	Err     *errors.RouteError
}

func newParamError(pattern, param, reason string) *ParamError {
	return &ParamError{
		Pattern: pattern,
		Param:   param,
		Err:     errors.New("R006").WithRoute(pattern, -1).WithDetailf("parameter %q: %s", param, reason),
	}
}

func (e *ParamError) Error() string {
	return "router: " + e.Err.Error()
}

func (e *ParamError) Unwrap() error {
	return e.Err
}
