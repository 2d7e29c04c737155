// Package apperr concentra los errores de negocio compartidos por los módulos
// y su traducción a status HTTP + código de error.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError describe un campo que no pasó validación.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message"`
}

// Error es un error con código público. Err es el sentinel que decide el status.
type Error struct {
	Code    string
	Message string
	Fields  []FieldError
	Extra   map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: ErrInvalidInput}
}

func Validation(code string, fields []FieldError) *Error {
	return &Error{Code: code, Message: "validation failed", Fields: fields, Err: ErrInvalidInput}
}

func Conflict(code string, extra map[string]any) *Error {
	return &Error{Code: code, Extra: extra, Err: ErrDuplicate}
}

func NotFound(code string) *Error {
	return &Error{Code: code, Err: ErrNotFound}
}

// Status resuelve status HTTP y código público para cualquier error.
// Lo que no es un error conocido se reporta como db_error.
func Status(err error) (int, *Error) {
	var e *Error
	if !errors.As(err, &e) {
		switch {
		case errors.Is(err, ErrNotFound):
			e = &Error{Code: "not_found", Err: ErrNotFound}
		case errors.Is(err, ErrDuplicate):
			e = &Error{Code: "duplicate", Err: ErrDuplicate}
		case errors.Is(err, ErrInvalidInput):
			e = &Error{Code: "bad_body", Err: ErrInvalidInput}
		default:
			return http.StatusInternalServerError, &Error{Code: "db_error"}
		}
	}

	switch {
	case errors.Is(e.Err, ErrNotFound):
		return http.StatusNotFound, e
	case errors.Is(e.Err, ErrDuplicate):
		return http.StatusConflict, e
	case errors.Is(e.Err, ErrInvalidInput):
		return http.StatusBadRequest, e
	default:
		return http.StatusInternalServerError, e
	}
}
