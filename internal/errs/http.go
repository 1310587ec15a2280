package errs

import (
	"net/http"
)

// Generic messages used when no domain message applies.
const (
	MessageInternal         = "Ocorreu um erro interno ao processar a requisição."
	MessageInvalidRequest   = "Requisição inválida."
	MessageNotFound         = "Recurso não encontrado."
	MessageMethodNotAllowed = "Método não permitido."
)

// statusCode builds the default code from the HTTP status text:
// http.StatusText(404) => "Not Found" => "NOT_FOUND".
func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// New creates an HTTPError for an arbitrary status. An empty message list
// falls back to the status text.
func New(status int, messages ...string) *HTTPError {
	if len(messages) == 0 {
		messages = []string{http.StatusText(status)}
	}
	return &HTTPError{
		Code:     statusCode(status),
		Status:   status,
		Messages: messages,
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code optionally replaces the default "BAD_REQUEST" (e.g. "AVISO_INVALID"
// from sqlerr); fieldErrors carries per-field details.
func NewBadRequestError(message string, code *string, fieldErrors []FieldError) *HTTPError {
	err := New(http.StatusBadRequest, message)
	if code != nil {
		err.Code = *code
	}
	err.Errors = fieldErrors
	return err
}

// NewValidationError creates a 400 carrying one message per violated rule.
//
// The order of messages is the order the rules were evaluated, so clients
// can show them as-is.
func NewValidationError(fieldErrors []FieldError) *HTTPError {
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fe.Error)
	}
	if len(messages) == 0 {
		messages = append(messages, MessageInvalidRequest)
	}
	return &HTTPError{
		Code:     statusCode(http.StatusBadRequest),
		Status:   http.StatusBadRequest,
		Messages: messages,
		Errors:   fieldErrors,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return New(http.StatusNotFound, message)
}

// NewInternalServerError creates a 500 with a generic message. The real
// cause belongs in the logs, never in the response.
func NewInternalServerError() *HTTPError {
	return New(http.StatusInternalServerError, MessageInternal)
}
