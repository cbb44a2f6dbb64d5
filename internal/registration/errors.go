package registration

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrDuplicateEmail   = errors.New("a registration with this email already exists")
	ErrSubmissionFailed = errors.New("registration could not be submitted")
)

// ValidationError carries one message per failing field, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
