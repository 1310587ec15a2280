// Package errs defines the client-facing error type of the API.
//
// Every error that reaches the HTTP layer is rendered from an *HTTPError,
// so clients always receive the same envelope:
//
//	{
//	  "Codigo": "BAD_REQUEST",
//	  "Status": 400,
//	  "Mensagens": ["O título é obrigatório."],
//	  "Erros": [{"field": "titulo", "error": "O título é obrigatório."}]
//	}
//
// "Erros" is only present for field-level validation failures.
package errs

import "strings"

// FieldError is a validation failure bound to one request field.
//
//	{ "field": "titulo", "error": "O título é obrigatório." }
type FieldError struct {
	// Field is the JSON (or path parameter) name of the offending field.
	Field string `json:"field"`

	// Error is the human-readable message.
	Error string `json:"error"`
}

// HTTPError is the error type handlers and services return when the
// failure should be shown to the client.
//
// Fields:
//   - Code: machine-friendly code (e.g. "NOT_FOUND")
//   - Status: HTTP status code
//   - Messages: human-readable messages, in the order they were produced
//   - Errors: per-field validation failures (optional)
type HTTPError struct {
	Code     string       `json:"Codigo"`
	Status   int          `json:"Status"`
	Messages []string     `json:"Mensagens"`
	Errors   []FieldError `json:"Erros,omitempty"`
}

// Error joins the messages so logs show everything the client saw.
func (e *HTTPError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Is reports whether target is an *HTTPError with the same status, so
// errors.Is(err, errs.NewNotFoundError("")) matches any not-found error.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Status == e.Status
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
