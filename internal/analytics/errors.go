package analytics

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel matched by every ConfigurationError
var ErrConfiguration = errors.New("analytics configuration error")

// ConfigurationError reports an invalid engine input that must not be silently defaulted,
// such as an unknown period or a stage without a forecast weight.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// Is lets errors.Is(err, ErrConfiguration) match any ConfigurationError
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
