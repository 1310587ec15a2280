// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or maximum lengths) defined in struct tags
// and extracts validation errors into a format the client can
// understand
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/avisos-api/internal/errs"
)

// MessageInvalidBody is returned when the request body cannot be decoded.
const MessageInvalidBody = "O corpo da requisição é inválido."

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
//   - Define a request struct with validator tags (`validate:"required,max=200"`)
//   - Implement Validate() error that calls validation.Struct(req)
//   - Optionally implement MessageProvider to supply domain messages
type Validatable interface {
	Validate() error
}

// MessageProvider lets a payload replace the generic messages.
//
// Keys are "<field>.<tag>" where field is the JSON (or path param) name,
// e.g. "titulo.max".
type MessageProvider interface {
	ValidationMessages() map[string]string
}

// CustomValidationError represents a single validation issue for a specific field.
// This is used for validation errors that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "validation failed"
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance.
//
// It knows the non-standard "notblank" tag and reports fields by their
// json/param tag name instead of the Go field name.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		validate.RegisterTagNameFunc(fieldName)
	})
	return validate
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "param", "query"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return strings.ToLower(fld.Name)
}

// Struct validates s with the shared validator.
func Struct(s any) error {
	return Validator().Struct(s)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. path params (`param` tags) are bound; a value that does not fit its
//     field (e.g. "abc" for an int id) is a 400 naming the parameter
//  2. the JSON body (`json` tags) is bound; malformed JSON is a 400
//  3. payload.Validate() applies the validation rules
//
// payload must be a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	var binder echo.DefaultBinder

	if err := binder.BindPathParams(c, payload); err != nil {
		return paramError(c)
	}

	if err := binder.BindBody(c, payload); err != nil {
		return bodyError(err)
	}

	if err := payload.Validate(); err != nil {
		return errs.NewValidationError(ExtractFieldErrors(err, payload))
	}

	return nil
}

func paramError(c echo.Context) *errs.HTTPError {
	fieldErrors := make([]errs.FieldError, 0, len(c.ParamNames()))
	for _, name := range c.ParamNames() {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: name,
			Error: fmt.Sprintf("O valor informado para o parâmetro %s é inválido.", name),
		})
	}
	return errs.NewValidationError(fieldErrors)
}

// bodyError maps echo's body binder failures without depending on their text.
func bodyError(err error) *errs.HTTPError {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code == http.StatusUnsupportedMediaType {
		return errs.New(http.StatusUnsupportedMediaType, "Tipo de conteúdo não suportado.")
	}

	return errs.NewBadRequestError(MessageInvalidBody, nil, nil)
}

// ExtractFieldErrors converts validator (or custom) errors into field
// errors, keeping the order in which fields were checked. source, when it
// implements MessageProvider, supplies the messages.
func ExtractFieldErrors(err error, source any) []errs.FieldError {
	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		fieldErrors := make([]errs.FieldError, 0, len(custom))
		for _, ce := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: ce.Field, Error: ce.Message})
		}
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []errs.FieldError{{Error: err.Error()}}
	}

	var messages map[string]string
	if provider, ok := source.(MessageProvider); ok {
		messages = provider.ValidationMessages()
	}

	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := fe.Field()
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = defaultMessage(field, fe)
		}
		fieldErrors = append(fieldErrors, errs.FieldError{Field: field, Error: msg})
	}
	return fieldErrors
}

// defaultMessage is used for tags the payload has no message for.
func defaultMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("O campo %s é obrigatório.", field)

	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("O campo %s deve ter no mínimo %s caracteres.", field, fe.Param())
		}
		return fmt.Sprintf("O campo %s deve ser no mínimo %s.", field, fe.Param())

	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("O campo %s deve ter no máximo %s caracteres.", field, fe.Param())
		}
		return fmt.Sprintf("O campo %s deve ser no máximo %s.", field, fe.Param())

	case "gt":
		return fmt.Sprintf("O campo %s deve ser maior que %s.", field, fe.Param())

	case "oneof":
		return fmt.Sprintf("O campo %s deve ser um de: %s.", field, fe.Param())

	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", field, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", field, fe.Tag())
	}
}
