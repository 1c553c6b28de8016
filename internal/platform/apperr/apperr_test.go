// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
)

/*
TestKind_Status pins the one-to-one mapping from kind to HTTP status.
*/
func TestKind_Status(t *testing.T) {
	tests := []struct {
		err    *apperr.AppError
		kind   apperr.Kind
		status int
	}{
		{apperr.NotFound("x"), apperr.KindNotFound, http.StatusNotFound},
		{apperr.Unauthorized("x"), apperr.KindUnauthorized, http.StatusUnauthorized},
		{apperr.BadRequest("x"), apperr.KindBadRequest, http.StatusBadRequest},
		{apperr.Validation(), apperr.KindValidation, http.StatusUnprocessableEntity},
		{apperr.Conflict("x"), apperr.KindConflict, http.StatusConflict},
		{apperr.Internal(nil), apperr.KindInternal, http.StatusInternalServerError},
		{apperr.Database(nil), apperr.KindDatabase, http.StatusInternalServerError},
		{apperr.CredentialHashing(nil), apperr.KindCredentialHashing, http.StatusInternalServerError},
		{apperr.Timeout("x", nil), apperr.KindTimeout, http.StatusRequestTimeout},
		{apperr.RateLimited(3), apperr.KindRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.status, tt.kind.Status())
			assert.NotEmpty(t, tt.err.Title())
		})
	}
}

/*
TestValidation_MessageOrder checks the "field: message" rendering keeps declaration order.
*/
func TestValidation_MessageOrder(t *testing.T) {
	err := apperr.Validation(
		apperr.FieldError{Field: "name", Message: "Minimum 3 characters"},
		apperr.FieldError{Field: "email", Message: "Must be a valid email address"},
		apperr.FieldError{Field: "password", Message: "This field is required"},
	)

	assert.Equal(t, "name: Minimum 3 characters; email: Must be a valid email address; password: This field is required", err.Message)
	assert.Len(t, err.Details, 3)
}

/*
TestInternalKinds_HideCause verifies driver text never reaches the message.
*/
func TestInternalKinds_HideCause(t *testing.T) {
	cause := errors.New(`pq: relation "users" does not exist`)

	for _, err := range []*apperr.AppError{apperr.Internal(cause), apperr.Database(cause), apperr.CredentialHashing(cause)} {
		assert.NotContains(t, err.Message, "relation")
		assert.ErrorIs(t, err, cause)
	}
}

/*
TestAs_TraversesWrapping checks extraction through fmt.Errorf wrapping.
*/
func TestAs_TraversesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("account_service_get_failed: %w", apperr.NotFound("User not found"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.KindNotFound, ae.Code)
	assert.True(t, apperr.IsAppError(wrapped))
	assert.True(t, apperr.IsKind(wrapped, apperr.KindNotFound))
	assert.False(t, apperr.IsKind(wrapped, apperr.KindConflict))
	assert.Nil(t, apperr.As(errors.New("plain")))
}
