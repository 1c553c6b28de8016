// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/platform/constants"
	"github.com/taibuivan/usersapi/internal/platform/ctxutil"
	"github.com/taibuivan/usersapi/internal/platform/respond"
	"github.com/taibuivan/usersapi/internal/platform/sec"
)

// Authentication failure messages.
const (
	MsgMissingAuthorization   = "missing authorization header"
	MsgMalformedAuthorization = "malformed authorization header"
	MsgInvalidToken           = "invalid token"
	MsgNotOwner               = "you may only act on your own account"
)

// TokenVerifier is the part of [sec.TokenService] the middleware needs.
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*sec.Claims, error)
}

// Authenticate requires a valid bearer access token.
//
// # Flow
//  1. No Authorization header: 401 "missing authorization header".
//  2. Header not of the form "Bearer <token>": 401 "malformed authorization header".
//  3. Token fails verification: 401 "invalid token".
//  4. Otherwise the [*sec.Claims] are stored in the request context.
//
// Failures short-circuit; the wrapped handler never runs.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// 1. Presence
			if strings.TrimSpace(authHeader) == "" {
				respond.Error(writer, request, apperr.Unauthorized(MsgMissingAuthorization))
				return
			}

			// 2. Shape
			tokenString, ok := bearerToken(authHeader)
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized(MsgMalformedAuthorization))
				return
			}

			// 3. Verification
			claims, err := verifier.VerifyAccessToken(tokenString)
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "token_rejected", slog.Any("error", errors.Unwrap(err)))
				respond.Error(writer, request, apperr.Unauthorized(MsgInvalidToken))
				return
			}

			// 4. Context injection
			ctx := ctxutil.WithClaims(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireOwner lets the request through only when the verified subject equals
// the path parameter named param.
//
// Must be mounted after [Authenticate]. It runs before the handler, so a
// mismatch is rejected whether or not the target resource exists.
func RequireOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetClaims(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !OwnsResource(claims.Subject, chi.URLParam(request, param)) {
				respond.Error(writer, request, apperr.Unauthorized(MsgNotOwner))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// OwnsResource reports whether subject may act on resourceID.
//
// Ids are compared case-insensitively since UUIDs may arrive in either case.
// An empty subject owns nothing.
func OwnsResource(subject, resourceID string) bool {
	return subject != "" && strings.EqualFold(subject, resourceID)
}

// bearerToken extracts <token> from "Bearer <token>". The scheme is
// case-insensitive; exactly one space-free token must follow.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, constants.AuthScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}

	return token, true
}
