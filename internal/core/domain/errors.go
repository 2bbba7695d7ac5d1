package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySubmission aborts processing before any decision is produced.
	// It is the only fatal input condition.
	ErrEmptySubmission = errors.New("empty submission")

	// ErrSchemaParse marks an LLM reply that does not match the requested
	// schema. Callers treat it like a transient failure and fall back.
	ErrSchemaParse = errors.New("schema parse failure")

	// ErrTemporary marks transient service failures recovered by fallback.
	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
