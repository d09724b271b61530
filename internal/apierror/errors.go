// Package apierror defines errors that are safe to show to API callers.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeValidation         = "validation_error"
	CodePayloadTooLarge    = "payload_too_large"
	CodeEmailTaken         = "email_taken"
	CodeInvalidCredentials = "invalid_credentials"
	CodeMissingToken       = "missing_token"
	CodeInvalidToken       = "invalid_token"
	CodeNotFound           = "not_found"
	CodeClassifierFailed   = "classifier_failed"
	CodeInternal           = "internal_error"
	CodeRateLimited        = "rate_limited"
	CodeServiceUnavailable = "service_unavailable"
)

// APIError is an error with a caller-facing message and transport status.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	return e.Message
}

// As extracts an *APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NewErrValidation(message string) *APIError {
	return &APIError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

func NewErrPayloadTooLarge(limit int64) *APIError {
	return &APIError{
		Code:       CodePayloadTooLarge,
		Message:    fmt.Sprintf("image exceeds the %d byte limit", limit),
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
}

func NewErrEmailIsTaken(email string) *APIError {
	return &APIError{
		Code:       CodeEmailTaken,
		Message:    fmt.Sprintf("email %s is already taken", email),
		HTTPStatus: http.StatusConflict,
	}
}

// NewErrInvalidCredentials is shared by unknown-email and wrong-password logins.
func NewErrInvalidCredentials() *APIError {
	return &APIError{Code: CodeInvalidCredentials, Message: "invalid email or password", HTTPStatus: http.StatusUnauthorized}
}

func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{Code: CodeMissingToken, Message: "no token provided", HTTPStatus: http.StatusUnauthorized}
}

func NewErrInvalidAuthorizationToken() *APIError {
	return &APIError{Code: CodeInvalidToken, Message: "invalid token", HTTPStatus: http.StatusUnauthorized}
}

func NewErrScanNotFound(id string) *APIError {
	return &APIError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("scan %s not found", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewErrClassifierFailed() *APIError {
	return &APIError{Code: CodeClassifierFailed, Message: "image analysis failed, please try again later", HTTPStatus: http.StatusInternalServerError}
}

func NewErrInternal() *APIError {
	return &APIError{Code: CodeInternal, Message: "internal server error", HTTPStatus: http.StatusInternalServerError}
}

func NewErrRateLimited() *APIError {
	return &APIError{Code: CodeRateLimited, Message: "too many requests", HTTPStatus: http.StatusTooManyRequests}
}
