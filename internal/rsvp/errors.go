package rsvp

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrGuestNotFound guest absent or owned by another event. Callers
	// report it generically so guest ids cannot be enumerated.
	ErrGuestNotFound = errors.New("guest not found")

	// ErrEventNotFound the token's event no longer exists.
	ErrEventNotFound = errors.New("event not found")

	// ErrStageNotAllowed stage 2 attempted for a guest whose RSVP is not
	// confirmed.
	ErrStageNotAllowed = errors.New("rsvp stage not allowed")
)

// ValidationError a rejected request body, with per-field detail.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
