// Package directory manages the clients, staff members and services that
// appointments are booked against.
package directory

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs struct-tag validation and flattens field failures into one
// ValidationError.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return validationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return validationError(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "alphanum":
		return field + " must be alphanumeric"
	case "numeric":
		return field + " must contain digits only"
	default:
		return field + " is invalid"
	}
}

func componentLogger(log *slog.Logger, name string) *slog.Logger {
	if log == nil {
		log = slog.Default()
	}
	return log.With(slog.String("component", name))
}
