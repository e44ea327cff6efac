package db

import (
	"errors"
	"fmt"

	"github.com/fbz-tec/docvault/core/config"
)

// ConnectionError reports a failed connect attempt. Target is the URI with
// its password masked.
type ConnectionError struct {
	Backend string
	Target  string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("unable to connect to %s at %s: %v", e.Backend, e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err means the database cannot be reached or
// is not configured, as opposed to a failed query.
func IsUnavailable(err error) bool {
	var connErr *ConnectionError
	var cfgErr *config.ConfigurationError
	return errors.As(err, &connErr) || errors.As(err, &cfgErr)
}
