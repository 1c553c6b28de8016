// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// Every response leaves through this package so that clients see one of three
// shapes:
//
//	single item  {"data": ...}
//	collection   {"limit", "page", "count", "page_count", "current_count", "data"}
//	failure      {"error", "message", "code", "timestamp", "details"?}
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/platform/constants"
	"github.com/taibuivan/usersapi/internal/platform/ctxutil"
	"github.com/taibuivan/usersapi/pkg/pagination"
)

// SuccessEnvelope is the JSON envelope for successful single-resource responses.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// PaginatedEnvelope is the JSON envelope for collection responses. The
// pagination metadata sits beside the data, not nested under it.
type PaginatedEnvelope struct {
	pagination.Meta
	Data any `json:"data"`
}

// ErrorEnvelope is the JSON envelope for error responses. Error is the
// title of the kind; Timestamp is RFC 3339 in UTC.
type ErrorEnvelope struct {
	Error     string              `json:"error"`
	Message   string              `json:"message"`
	Code      apperr.Kind         `json:"code"`
	Timestamp string              `json:"timestamp"`
	Details   []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Created writes a 201 Created response with data wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

// Paginated writes a 200 OK collection response.
func Paginated(writer http.ResponseWriter, data any, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{Meta: metadata, Data: data})
}

// Error converts any Go error into a standardized JSON API error response.
//
// Errors outside the taxonomy become INTERNAL_ERROR, except a context
// deadline which becomes TIMEOUT. Server-side kinds are logged with their
// cause; the cause is never written to the client.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := classify(err)
	logger := ctxutil.GetLogger(request.Context())

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", string(appError.Code)),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	if appError.RetryAfter > 0 {
		writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(appError.RetryAfter))
	}

	JSON(writer, appError.HTTPStatus, NewErrorEnvelope(appError))
}

// NewErrorEnvelope renders an [apperr.AppError] with the current timestamp.
func NewErrorEnvelope(appError *apperr.AppError) ErrorEnvelope {
	return ErrorEnvelope{
		Error:     appError.Title(),
		Message:   appError.Message,
		Code:      appError.Code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   appError.Details,
	}
}

func classify(err error) *apperr.AppError {
	if appError := apperr.As(err); appError != nil {
		return appError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout("The request took too long to complete", err)
	}
	return apperr.Internal(err)
}
