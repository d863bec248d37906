package document

import "fmt"

// Parse error codes (D100-D199).
const (
	// ErrBadJSON means the payload is not syntactically valid JSON.
	ErrBadJSON = "D100"

	// ErrBadShape means the payload is valid JSON but not the expected
	// three-element document array.
	ErrBadShape = "D101"

	// ErrSchema means a row violated the document schema.
	ErrSchema = "D102"

	// ErrBadViewMode means the view mode element is not a known mode.
	ErrBadViewMode = "D103"

	// ErrBadPrecision means the precision element is not a supported
	// precision.
	ErrBadPrecision = "D104"
)

// ParseError describes one decoding failure.
type ParseError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ParseErrors is the collected failure list of one Decode call.
type ParseErrors []ParseError

// Error implements the error interface.
func (e ParseErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}
