package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Failure kinds. Every error returned by HTTPClient matches exactly one of
// them with errors.Is.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrValidation            = errors.New("validation error")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrNetwork               = errors.New("network error")
	ErrUnexpectedStatus      = errors.New("unexpected status")

	// ErrNoSession means no token is stored locally; no request was made.
	ErrNoSession = errors.New("no stored session")
)

// FieldErrors are per-field messages from the server, e.g.
// {"username": ["A user with that username already exists."]}.
// Messages not bound to a field come under "non_field_errors" or "detail".
type FieldErrors map[string][]string

// Keys returns the field names in stable order.
func (f FieldErrors) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f FieldErrors) String() string {
	parts := make([]string, 0, len(f))
	for _, k := range f.Keys() {
		parts = append(parts, k+": "+strings.Join(f[k], " "))
	}
	return strings.Join(parts, "; ")
}

// Error describes a failed API call.
type Error struct {
	Op     string
	Kind   error
	Status int
	Fields FieldErrors
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "api client error"
	}
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if len(e.Fields) > 0 {
		b.WriteString(": ")
		b.WriteString(e.Fields.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// FieldsOf returns the server field errors carried by err, if any.
func FieldsOf(err error) FieldErrors {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

func wrapError(op string, kind error, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// parseFieldErrors reads a DRF style error body. Values may be a list of
// strings or a single string; anything else is skipped.
func parseFieldErrors(body []byte) FieldErrors {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	fields := make(FieldErrors, len(raw))
	for k, v := range raw {
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			fields[k] = list
			continue
		}
		var single string
		if err := json.Unmarshal(v, &single); err == nil {
			fields[k] = []string{single}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
