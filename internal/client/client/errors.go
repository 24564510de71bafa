package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed backend call.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
)

// Error is returned by every HTTPClient call that does not succeed.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	// Fields holds per-field messages from a 4xx body, e.g. {"year": ["..."]}.
	Fields map[string][]string
	Err    error
}

var (
	ErrNetwork      = &Error{Kind: KindNetwork, Message: "server unavailable"}
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrUnauthorized = &Error{Kind: KindAuth, Message: "unauthorized"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if len(e.Fields) > 0 {
		msg += ": " + e.fieldSummary()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func (e *Error) fieldSummary() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
	}
	return strings.Join(parts, ", ")
}

// NewValidationError builds a client-side validation failure for one field.
func NewValidationError(field, msg string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "validation failed",
		Fields:  map[string][]string{field: {msg}},
	}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "request failed", Err: err}
}

// statusError classifies a non-2xx response and extracts the message and
// field errors from a DRF-style JSON body ({"detail": "..."} or
// {"field": ["msg", ...]}).
func statusError(status int, body []byte) *Error {
	e := &Error{Status: status}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status >= 500:
		e.Kind = KindNetwork
	default:
		e.Kind = KindValidation
	}

	e.Message, e.Fields = parseErrorBody(body)
	if e.Message == "" {
		e.Message = fmt.Sprintf("%d %s", status, strings.ToLower(http.StatusText(status)))
	}
	return e
}

func parseErrorBody(body []byte) (string, map[string][]string) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", nil
	}

	var message string
	fields := make(map[string][]string)
	for key, value := range raw {
		var one string
		if err := json.Unmarshal(value, &one); err == nil {
			if key == "detail" || key == "message" || key == "error" {
				message = one
			} else {
				fields[key] = []string{one}
			}
			continue
		}
		var many []string
		if err := json.Unmarshal(value, &many); err == nil {
			if key == "non_field_errors" {
				message = strings.Join(many, "; ")
			} else {
				fields[key] = many
			}
		}
	}

	if len(fields) == 0 {
		fields = nil
	}
	return message, fields
}
