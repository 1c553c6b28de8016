// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines the typed keys under which middleware stores
// request-scoped values. Read them through [ctxutil], not directly.
package ctxkey

// key is unexported so no other package can construct a colliding key.
type key string

const (
	// KeyRequestID holds the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyClaims holds the verified *sec.Claims of the caller.
	KeyClaims key = "claims"

	// KeyLogger holds the per-request *slog.Logger.
	KeyLogger key = "logger"

	// KeyClientIP holds the client address resolved against trusted proxies.
	KeyClientIP key = "client_ip"
)
