package store

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error wraps exactly one of these so callers can
// branch with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Stable machine-readable error codes returned to clients.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeItemsRequired     = "ITEMS_REQUIRED"
	CodeInvalidItem       = "INVALID_ITEM"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeUnknownPrintable  = "UNKNOWN_PRINTABLE"
	CodePrinterIDRequired = "PRINTER_ID_REQUIRED"
	CodeInvalidProgress   = "INVALID_PROGRESS"
	CodeNotFound          = "NOT_FOUND"
	CodePrinterMismatch   = "PRINTER_MISMATCH"
	CodeStatusMismatch    = "STATUS_MISMATCH"
	CodeInvalidTransition = "INVALID_TRANSITION"
)

// Error is a domain error carrying a kind, a stable code and a message.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func validationErrorf(code, format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFoundErrorf(format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictErrorf(code, format string, args ...any) *Error {
	return &Error{Kind: ErrConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of a domain error, or "" for anything else.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
