package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers both a missing task and a task owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized covers unknown email, wrong password and any bad token.
	ErrUnauthorized   = errors.New("unauthorized")
	ErrDuplicateEmail = errors.New("email already registered")
)

// ValidationError lists malformed input fields with a message for each.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	if _, ok := v.Fields[field]; !ok {
		v.Fields[field] = msg
	}
}

// OrNil returns nil when no field was added, so callers can write
// `return v.OrNil()` without a typed-nil error.
func (v *ValidationError) OrNil() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + v.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
