package loader

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery marks models rejected by query validation.
var ErrInvalidQuery = errors.New("invalid query")

// QueryError reports a model whose query failed validation.
type QueryError struct {
	File    string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Is matches ErrInvalidQuery.
func (e *QueryError) Is(target error) bool { return target == ErrInvalidQuery }

// LoadError wraps a failure to load one file.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
