// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the closed error taxonomy of the users API.

Every failure that leaves the service layer is an [AppError] of exactly one
[Kind]. A kind fixes the HTTP status and the short title shown in the "error"
field of the response. The Message is the client-safe detail.

Kinds and their status:

  - NOT_FOUND                 404
  - UNAUTHORIZED              401
  - BAD_REQUEST               400
  - VALIDATION_ERROR          422
  - CONFLICT                  409
  - INTERNAL_ERROR            500
  - DATABASE_ERROR            500
  - CREDENTIAL_HASHING_ERROR  500
  - TIMEOUT                   408
  - RATE_LIMITED              429
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the machine-readable error category.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindBadRequest        Kind = "BAD_REQUEST"
	KindConflict          Kind = "CONFLICT"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindInternal          Kind = "INTERNAL_ERROR"
	KindDatabase          Kind = "DATABASE_ERROR"
	KindTimeout           Kind = "TIMEOUT"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindCredentialHashing Kind = "CREDENTIAL_HASHING_ERROR"
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Title returns the fixed, human-readable label of the kind.
func (k Kind) Title() string {
	switch k {
	case KindNotFound:
		return "Resource not found"
	case KindUnauthorized:
		return "Unauthorized access"
	case KindBadRequest:
		return "Bad request"
	case KindConflict:
		return "Duplicate entry"
	case KindValidation:
		return "Validation error"
	case KindDatabase:
		return "Database error"
	case KindTimeout:
		return "Timeout error"
	case KindRateLimited:
		return "Rate limit exceeded"
	case KindCredentialHashing:
		return "Password hashing error"
	default:
		return "Internal server error"
	}
}

// AppError is the canonical error type for the API.
//
// # Security
//
// Cause is for server-side logging only and is never sent to clients.
type AppError struct {
	// Code is the error kind.
	Code Kind `json:"code"`
	// Message is a client-safe description.
	Message string `json:"message"`
	// HTTPStatus is derived from Code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, kept for logs.
	Cause error `json:"-"`
	// Details holds per-field failures for VALIDATION_ERROR.
	Details []FieldError `json:"details,omitempty"`
	// RetryAfter is the wait in seconds for RATE_LIMITED, sent as a header.
	RetryAfter int `json:"-"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Title returns the label of the error's kind.
func (e *AppError) Title() string { return e.Code.Title() }

func newError(kind Kind, message string, cause error) *AppError {
	return &AppError{
		Code:       kind,
		Message:    message,
		HTTPStatus: kind.Status(),
		Cause:      cause,
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 error with a ready-made message, e.g.
// NotFound("User with ID 42 not found").
func NotFound(message string) *AppError {
	return newError(KindNotFound, message, nil)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return newError(KindUnauthorized, message, nil)
}

// BadRequest creates a 400 error for malformed requests.
func BadRequest(message string) *AppError {
	return newError(KindBadRequest, message, nil)
}

// Conflict creates a 409 error for duplicate or unique-constraint violations.
func Conflict(message string) *AppError {
	return newError(KindConflict, message, nil)
}

// Validation creates a 422 error. The message lists every failure as
// "field: message", joined by "; ", in the order given.
func Validation(details ...FieldError) *AppError {
	err := newError(KindValidation, FormatFieldErrors(details), nil)
	err.Details = details
	return err
}

// Timeout creates a 408 error.
func Timeout(message string, cause error) *AppError {
	return newError(KindTimeout, message, cause)
}

// RateLimited creates a 429 error.
func RateLimited(retryAfterSeconds int) *AppError {
	err := newError(KindRateLimited, fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds), nil)
	err.RetryAfter = retryAfterSeconds
	return err
}

// # Server Errors (5xx)

// Internal creates a 500 error wrapping an unexpected failure.
func Internal(cause error) *AppError {
	return newError(KindInternal, "An unexpected error occurred", cause)
}

// Database creates a 500 error for storage failures. Driver text stays in Cause.
func Database(cause error) *AppError {
	return newError(KindDatabase, "A database error occurred", cause)
}

// CredentialHashing creates a 500 error for password hashing failures.
func CredentialHashing(cause error) *AppError {
	return newError(KindCredentialHashing, "Failed to process credentials", cause)
}

// # Helpers

// FormatFieldErrors renders details as "field: message; field: message".
func FormatFieldErrors(details []FieldError) string {
	parts := make([]string, 0, len(details))
	for _, detail := range details {
		parts = append(parts, detail.Field+": "+detail.Message)
	}
	return strings.Join(parts, "; ")
}

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsKind reports whether err carries an [*AppError] of the given kind.
func IsKind(err error, kind Kind) bool {
	ae := As(err)
	return ae != nil && ae.Code == kind
}
