package errors

import (
	stderrors "errors"
	"net/http"
)

// Kind classifies a failure independently of its code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindInvalid
	KindOperationBlocked
	KindUnauthorized
)

// AppError is a domain failure with a stable code. Services declare them as
// package-level sentinels so callers can match with errors.Is.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func NotFoundError(code, message string) *AppError {
	return New(KindNotFound, code, message)
}

func ConflictError(code, message string) *AppError {
	return New(KindConflict, code, message)
}

func ForbiddenError(code, message string) *AppError {
	return New(KindForbidden, code, message)
}

func InvalidError(code, message string) *AppError {
	return New(KindInvalid, code, message)
}

func BlockedError(code, message string) *AppError {
	return New(KindOperationBlocked, code, message)
}

// AsAppError unwraps err to the first *AppError in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns KindInternal for anything that is not an AppError.
func KindOf(err error) Kind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalid:
		return http.StatusBadRequest
	case KindOperationBlocked:
		return http.StatusLocked
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
