package api

import (
	"errors"
	"log/slog"
	"net/http"
)

// AppError is an error with the HTTP status and client-facing message it
// maps to. Handlers translate domain errors into one before responding.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "not found"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "internal server error"}
	ErrBadGateway         = &AppError{Code: http.StatusBadGateway, Message: "upstream service failed, please try again"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "invalid email or password"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "invalid or expired token"}
	ErrOwnershipViolation = &AppError{Code: http.StatusForbidden, Message: "access denied: ownership mismatch"}
)

func NewBadRequestError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

// NewValidationError is a 400 whose message lists every failed rule.
func NewValidationError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: msg}
}

func NewTooManyRequestsError(msg string) *AppError {
	return &AppError{Code: http.StatusTooManyRequests, Message: msg}
}

// HandleError writes err as {"error": "..."}. Errors that are not an
// AppError never reach the client; they are logged and answered with 500.
func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSONErrorMessage(w, appErr.Code, appErr.Message)
		return
	}
	slog.Error("unhandled error", "error", err)
	JSONErrorMessage(w, ErrInternalServer.Code, ErrInternalServer.Message)
}
