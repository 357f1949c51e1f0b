// Package service provides business logic for the application.
package service

import (
	"errors"

	"github.com/glycoguard/glycoguard/internal/nutrition"
	"github.com/glycoguard/glycoguard/internal/oracle"
)

// Service errors.
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")

	ErrModelUnavailable    = oracle.ErrModelUnavailable
	ErrAccuracyUnavailable = oracle.ErrAccuracyUnavailable
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// asValidation converts calculator input errors to ValidationError.
func asValidation(err error) error {
	var inputErr *nutrition.InputError
	if errors.As(err, &inputErr) {
		return invalid(inputErr.Field, inputErr.Message)
	}
	return err
}
