package pagination

import (
	"errors"
	"fmt"
)

// ErrMaxScopesExceeded is returned when SearchConfig.MaxScopes is set and that many
// scopes were searched without finding an empty page.
var ErrMaxScopesExceeded = errors.New("maximum number of search scopes exceeded")

// ConfigError reports an invalid configuration or a degenerate search window.
// It is returned before any page is fetched.
type ConfigError struct {
	Field  string
	Reason string
	Value  any
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid %s: %s (got %v)", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
