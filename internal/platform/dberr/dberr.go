// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Storage errors are classified exactly once, here, at the data-access
// boundary. Driver text stays in the cause and is never part of the message.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
)

// DefaultNotFoundMessage is used by [Wrap] when the caller has nothing more specific.
const DefaultNotFoundMessage = "Resource not found"

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// action names the failed operation in the cause, e.g. "account_store_create".
func Wrap(err error, action string) error {
	return WrapNotFound(err, action, DefaultNotFoundMessage)
}

// WrapNotFound is [Wrap] with a caller-supplied NOT_FOUND message.
//
// # Mapping
//   - pgx.ErrNoRows: NOT_FOUND
//   - 23505 unique_violation: CONFLICT "<constraint> already exists."
//   - 22P02 invalid_text_representation: BAD_REQUEST
//   - deadline exceeded or 57014 query_canceled: TIMEOUT
//   - anything else: DATABASE_ERROR
func WrapNotFound(err error, action, notFoundMessage string) error {
	if err == nil {
		return nil
	}

	// Already classified further down
	if apperr.IsAppError(err) {
		return err
	}

	cause := fmt.Errorf("%s: %w", action, err)

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		notFound := apperr.NotFound(notFoundMessage)
		notFound.Cause = cause
		return notFound
	}

	// 2. Deadlines
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout("The database did not respond in time", cause)
	}

	// 3. SQLSTATE mapping
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case pgerrcode.UniqueViolation:
			conflict := apperr.Conflict(conflictMessage(pgError.ConstraintName))
			conflict.Cause = cause
			return conflict
		case pgerrcode.InvalidTextRepresentation:
			badRequest := apperr.BadRequest("Malformed identifier")
			badRequest.Cause = cause
			return badRequest
		case pgerrcode.QueryCanceled:
			return apperr.Timeout("The database did not respond in time", cause)
		}
	}

	return apperr.Database(cause)
}

// IsUniqueViolation reports whether err is a unique constraint failure on constraint.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var pgError *pgconn.PgError
	if !errors.As(err, &pgError) || pgError.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgError.ConstraintName == constraint
}

func conflictMessage(constraint string) string {
	if constraint == "" {
		return "Unique constraint violation."
	}
	return constraint + " already exists."
}
