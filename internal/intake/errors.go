package intake

import (
	"errors"
	"strings"
)

// ErrSubmitInFlight is returned when a form already has a request outstanding
var ErrSubmitInFlight = errors.New("a submission is already in progress")

// FieldError is a single field-scoped validation message
type FieldError struct {
	Field   string
	Message string
}

// ValidationError blocks submission. Fields keep declaration order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message returns the message for field, or "" when the field is valid
func (e *ValidationError) Message(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Has reports whether field failed validation
func (e *ValidationError) Has(field string) bool {
	return e.Message(field) != ""
}

func (e *ValidationError) add(field, message string) {
	if e.Has(field) {
		return
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// asError avoids returning a typed nil inside an error interface
func asError(e *ValidationError) error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
