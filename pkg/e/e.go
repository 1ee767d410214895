package e

import (
	"fmt"
	"strings"
)

var (
	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrValidation           = fmt.Errorf("validation failed")
	ErrImageRequired        = fmt.Errorf("image file is required")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrImageNotFound   = fmt.Errorf("image not found")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
	ErrUnknownField        = fmt.Errorf("unknown product field")
	ErrUnsupportedClause   = fmt.Errorf("unsupported predicate clause")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// ValidationError описывает ошибки валидации входных данных по полям.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (v *ValidationError) Error() string {
	if len(v.Messages) == 0 {
		return ErrValidation.Error()
	}

	return ErrValidation.Error() + ": " + strings.Join(v.Messages, "; ")
}

func (v *ValidationError) Unwrap() error {
	return ErrValidation
}
