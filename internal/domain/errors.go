package domain

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError. Callers branch on these, never on messages.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeTooLate         = "TOO_LATE"
	CodeNotFinished     = "NOT_FINISHED"
	CodeAlreadyFinished = "ALREADY_FINISHED"
	CodeDuplicatePlayer = "DUPLICATE_PLAYER"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrTooLate(matchID string) *AppError {
	return &AppError{Code: CodeTooLate, Message: fmt.Sprintf("match %s has already kicked off", matchID), Status: 422}
}

func ErrNotFinished(matchID string) *AppError {
	return &AppError{Code: CodeNotFinished, Message: fmt.Sprintf("match %s is not finished", matchID), Status: 409}
}

func ErrAlreadyFinished(matchID string) *AppError {
	return &AppError{Code: CodeAlreadyFinished, Message: fmt.Sprintf("match %s has already been scored", matchID), Status: 409}
}

func ErrDuplicatePlayer(playerID string) *AppError {
	return &AppError{Code: CodeDuplicatePlayer, Message: fmt.Sprintf("player %s already in game", playerID), Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Status: 403}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: msg, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Status: 500, Cause: cause}
}
