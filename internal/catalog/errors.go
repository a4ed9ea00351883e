package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStack is returned when going back from the volume root.
	ErrEmptyStack = errors.New("navigation stack is empty")
	// ErrUnsupportedOperation is returned by operations the catalog does not offer.
	ErrUnsupportedOperation = errors.New("operation not supported")
)

// NavigationError describes a failed navigation step.
type NavigationError struct {
	Op  string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
