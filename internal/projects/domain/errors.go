package domain

import "errors"

var (
	ErrNotFound      = errors.New("project not found")
	ErrForbidden     = errors.New("not allowed to modify this project")
	ErrSlugTaken     = errors.New("project slug already exists")
	ErrSlugExhausted = errors.New("failed to generate unique project slug")
)

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
