package ratetable

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a missing or inconsistent rate table.
// It aborts a whole batch; no employee is calculated against a bad table.
type ConfigurationError struct {
	Version  string
	Problems []string
}

func (e *ConfigurationError) Error() string {
	if e.Version == "" {
		return "rate table: " + strings.Join(e.Problems, "; ")
	}
	return fmt.Sprintf("rate table %s: %s", e.Version, strings.Join(e.Problems, "; "))
}

func (e *ConfigurationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ConfigurationError) errOrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
