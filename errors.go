package baldr

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Error is the structured error resource returned for every failed
// request. Code follows a 5-digit scheme: status*100 + subcode, so a plain
// 404 is 40400 and a validation failure is 40000. An Error is built once
// per failed request and serialized directly as the response body.
type Error struct {
	Status  int            `json:"status" yaml:"status"`
	Code    int            `json:"code" yaml:"code"`
	Message string         `json:"message" yaml:"message"`
	Detail  string         `json:"detail,omitempty" yaml:"detail,omitempty"`
	Meta    map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// ErrNotImplemented reports that a declared capability has no bound
// handler. Declaring a capability is explicit, so a missing delegate is a
// server misconfiguration (501), not a client error.
var ErrNotImplemented = errors.New("not implemented")

// NotFoundError maps to a 404 response.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFound returns a NotFoundError with a formatted message.
func NotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError maps to a 400 response. When Fields is set, the response
// carries the per-field messages in its meta mapping.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// PermissionError maps to a 403 response.
type PermissionError struct {
	Detail string
}

func (e *PermissionError) Error() string {
	if e.Detail == "" {
		return "permission denied"
	}
	return e.Detail
}

// PermissionDenied returns a PermissionError with a formatted detail message.
func PermissionDenied(format string, args ...any) error {
	return &PermissionError{Detail: fmt.Sprintf(format, args...)}
}

// ImmediateResponse is an early-exit signal: a fully formed response that
// skips normal result shaping. The resource is encoded with the negotiated
// codec and the headers are applied verbatim. It is distinct from the
// error taxonomy even though it travels as an error value.
type ImmediateResponse struct {
	Resource any
	Status   int
	Header   http.Header
}

func (e *ImmediateResponse) Error() string {
	return fmt.Sprintf("immediate response (status %d)", e.Status)
}

// methodNotAllowed builds the 405 signal with an Allow header listing the
// permitted verbs, upper-cased and comma-joined.
func methodNotAllowed(allowed []string) error {
	verbs := make([]string, len(allowed))
	for i, v := range allowed {
		verbs[i] = strings.ToUpper(v)
	}
	return &ImmediateResponse{
		Resource: &Error{
			Status:  http.StatusMethodNotAllowed,
			Code:    40500,
			Message: "Method not allowed",
		},
		Status: http.StatusMethodNotAllowed,
		Header: http.Header{"Allow": []string{strings.Join(verbs, ",")}},
	}
}

// panicError wraps a recovered panic so the view wrapper can report it
// through the unhandled-error path with its stack trace.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }
