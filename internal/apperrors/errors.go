package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeAuthentication Code = "AUTHENTICATION_ERROR"
	CodeAuthorization  Code = "AUTHORIZATION_ERROR"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeInternal       Code = "INTERNAL_ERROR"
)

// Error — структурированная ошибка уровня приложения. Хендлеры отдают её
// наружу как JSON {error, code, details?} с соответствующим HTTP-статусом.
type Error struct {
	Code    Code
	Status  int
	Message string
	Details interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(message string, details interface{}) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message, Details: details}
}

func Authentication(message string) *Error {
	return &Error{Code: CodeAuthentication, Status: http.StatusUnauthorized, Message: message}
}

func Authorization(message string) *Error {
	return &Error{Code: CodeAuthorization, Status: http.StatusForbidden, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: resource + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusConflict, Message: message}
}

func ConflictWithDetails(message string, details interface{}) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusConflict, Message: message, Details: details}
}

func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: "internal server error", cause: cause}
}

// From приводит произвольную ошибку к *Error; неизвестные ошибки
// становятся internal, чтобы не светить внутренности наружу.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func HasCode(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
