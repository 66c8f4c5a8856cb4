// Package errs provides the structured error envelope returned by connector operations.
package errs

import (
	"strconv"
	"strings"
)

// Code identifies a failure category.
type Code string

const (
	// CodeNetwork indicates a transport-level failure (DNS, connect, timeout).
	CodeNetwork Code = "network"
	// CodeExchange indicates an exchange-reported failure or an undecodable
	// response payload.
	CodeExchange Code = "exchange_error"
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
	// CodeAuth indicates missing or rejected credentials.
	CodeAuth Code = "auth"
)

// E captures structured error information for a failed exchange operation.
// Operations return (zero, *E) instead of overloading empty results, so callers
// can distinguish "no data" from a handled failure.
type E struct {
	Exchange string
	Code     Code
	Method   string
	Endpoint string
	HTTP     int
	RawCode  string
	RawMsg   string
	Message  string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the exchange and failure category.
func New(exchange string, code Code, opts ...Option) *E {
	e := &E{
		Exchange: strings.TrimSpace(exchange),
		Code:     code,
		Method:   "",
		Endpoint: "",
		HTTP:     0,
		RawCode:  "",
		RawMsg:   "",
		Message:  "",
		cause:    nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithCall records the HTTP method and endpoint the failure occurred on.
func WithCall(method, endpoint string) Option {
	method = strings.TrimSpace(method)
	endpoint = strings.TrimSpace(endpoint)
	return func(e *E) {
		e.Method = method
		e.Endpoint = endpoint
	}
}

// WithHTTP records the associated HTTP status code.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithRawCode captures the raw exchange error code.
func WithRawCode(code string) Option {
	trimmed := strings.TrimSpace(code)
	return func(e *E) {
		e.RawCode = trimmed
	}
}

// WithRawMessage captures the raw exchange error message or response body.
func WithRawMessage(msg string) Option {
	return func(e *E) {
		e.RawMsg = msg
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	exchange := strings.TrimSpace(e.Exchange)
	if exchange == "" {
		exchange = "unknown"
	}
	parts = append(parts, "exchange="+exchange)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.Method != "" {
		parts = append(parts, "method="+e.Method)
	}
	if e.Endpoint != "" {
		parts = append(parts, "endpoint="+e.Endpoint)
	}
	if e.HTTP > 0 {
		parts = append(parts, "http="+strconv.Itoa(e.HTTP))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.RawCode != "" {
		parts = append(parts, "raw_code="+strconv.Quote(e.RawCode))
	}
	if e.RawMsg != "" {
		parts = append(parts, "raw_msg="+strconv.Quote(e.RawMsg))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// IsTransient reports whether the failure category is expected to clear on retry.
func (e *E) IsTransient() bool {
	if e == nil {
		return false
	}
	return e.Code == CodeNetwork
}
