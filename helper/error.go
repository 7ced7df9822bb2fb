package helper

import "fmt"

// NewError wraps an error with the failed operation for consistent error messages.
// The wrapped error stays available for errors.Is/errors.As checks.
func NewError(operation string, err error) error {
	return fmt.Errorf("error in %s: %w", operation, err)
}
