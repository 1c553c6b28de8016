// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the router's parameter extraction and the body decoding
pattern so every handler fails the same way on bad input.
*/
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/platform/constants"
	"github.com/taibuivan/usersapi/internal/platform/ctxutil"
	"github.com/taibuivan/usersapi/internal/platform/sec"
	"github.com/taibuivan/usersapi/internal/platform/validate"
)

// Normalizer is implemented by payloads that canonicalize their fields
// (trimming, Unicode normalization) before validation.
type Normalizer interface {
	Normalize()
}

/*
DecodeJSON reads the request body and decodes it into the target structure,
normalizes it when it implements [Normalizer], then runs its `validate` tags.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: BAD_REQUEST for an empty, oversized or malformed body,
    VALIDATION_ERROR when a tag fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	body := http.MaxBytesReader(nil, request.Body, constants.MaxBodyBytes)

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.BadRequest("Request body is empty")
		case errors.As(err, &tooLarge):
			return apperr.BadRequest("Request body is too large")
		default:
			return validate.ErrInvalidJSON
		}
	}

	if normalizer, ok := target.(Normalizer); ok {
		normalizer.Normalize()
	}

	return validate.Struct(target)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the verified token claims from the request context.

Returns nil if the request did not pass through [middleware.Authenticate].
*/
func Claims(request *http.Request) *sec.Claims {
	return ctxutil.GetClaims(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the claims.

Returns:
  - *sec.Claims: The verified claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.Claims, error) {
	claims := ctxutil.GetClaims(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
RequiredUserID returns the subject of the verified token.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
