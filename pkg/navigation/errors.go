package navigation

import (
	"strings"

	"github.com/vango-dev/vroute/internal/errors"
)

// Sentinels for errors.Is checks against navigation failures.
var (
	ErrInvalidTarget    error = errors.Code("R007")
	ErrRedirectLoop     error = errors.Code("R010")
	ErrRejected         error = errors.Code("R011")
	ErrUnknownRoute     error = errors.Code("R012")
	ErrTooManyRedirects error = errors.Code("R013")
	ErrHistory          error = errors.Code("R020")
)

// RedirectLoopError reports a redirect chain that revisited a pattern or
// exceeded the redirect limit. The prior location stays current.
type RedirectLoopError struct {
	// Chain lists the patterns visited, in order, ending with the
	// revisited one.
	Chain []string

	Err *errors.RouteError
}

func newRedirectLoopError(chain []string) *RedirectLoopError {
	return &RedirectLoopError{
		Chain: chain,
		Err: errors.New("R010").
			WithDetail(strings.Join(chain, " -> ")).
			WithSuggestion("Remove one of the redirects or guards that send these routes to each other"),
	}
}

func newTooManyRedirectsError(chain []string, limit int) *RedirectLoopError {
	return &RedirectLoopError{
		Chain: chain,
		Err: errors.New("R013").
			WithDetailf("more than %d redirects: %s", limit, strings.Join(chain, " -> ")),
	}
}

func (e *RedirectLoopError) Error() string {
	return "navigation: " + e.Err.Error()
}

func (e *RedirectLoopError) Unwrap() error {
	return e.Err
}

// NavigationError reports a navigation that could not start or was
// rejected by a guard.
type NavigationError struct {
	// Target is the requested path or route name.
	Target string

	Err *errors.RouteError
}

func newNavigationError(target string, err *errors.RouteError) *NavigationError {
	return &NavigationError{Target: target, Err: err}
}

func (e *NavigationError) Error() string {
	return "navigation: " + e.Target + ": " + e.Err.Error()
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
