package pubchem

import (
	"errors"
	"fmt"

	"github.com/stoichtab/stoichtab/internal/sheet"
)

// ErrorCode categorizes lookup failures. The engine surfaces every code the
// same way, as a row status carrying Message; the codes exist so callers and
// tests can distinguish "the database has no such compound" from transport
// trouble.
type ErrorCode string

const (
	// CodeNotFound means the compound database answered and had no match.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeNetwork covers transport failures and malformed responses.
	CodeNetwork ErrorCode = "NETWORK"

	// CodeRateLimited means the remote rejected the request for throttling
	// reasons despite the client-side gate.
	CodeRateLimited ErrorCode = "RATE_LIMITED"
)

// LookupError is the failure type of Client.Lookup.
type LookupError struct {
	Code    ErrorCode
	Kind    sheet.Kind
	Query   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("%s: %s (%s %q)", e.Code, e.Message, e.Kind, e.Query)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying transport error, if any.
func (e *LookupError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a not-found lookup failure.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var le *LookupError
	return errors.As(err, &le) && le.Code == CodeNotFound
}

// IsNetwork reports whether err is a transport-level lookup failure.
func IsNetwork(err error) bool {
	var le *LookupError
	return errors.As(err, &le) && le.Code == CodeNetwork
}

// IsRateLimited reports whether err is a remote throttling failure.
func IsRateLimited(err error) bool {
	var le *LookupError
	return errors.As(err, &le) && le.Code == CodeRateLimited
}

func notFoundError(kind sheet.Kind, query string) *LookupError {
	return &LookupError{
		Code:    CodeNotFound,
		Kind:    kind,
		Query:   query,
		Message: "compound not found",
	}
}

func networkError(kind sheet.Kind, query, msg string, err error) *LookupError {
	return &LookupError{
		Code:    CodeNetwork,
		Kind:    kind,
		Query:   query,
		Message: msg,
		Err:     err,
	}
}

func rateLimitedError(kind sheet.Kind, query string) *LookupError {
	return &LookupError{
		Code:    CodeRateLimited,
		Kind:    kind,
		Query:   query,
		Message: "compound database throttled the request",
	}
}
