// Package utils provides utility functions for the svd-tools project.
package utils

import (
	"fmt"
)

// MakeError wraps a sentinel error with extra context details, keeping the
// sentinel reachable through errors.Is().
func MakeError(err error, detailsBody string, args ...any) error {
	return fmt.Errorf("%w: "+detailsBody, append([]any{err}, args...)...)
}
