// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, JWT
// signing) from the domain logic. [TokenService] and [PasswordHasher] are
// constructed once in main and injected into the services that need them.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"

	// TokenTypeBearer is the token_type reported to clients.
	TokenTypeBearer = "Bearer"
)

// ErrMissingSecret is returned by [NewTokenService] when no signing key is configured.
var ErrMissingSecret = errors.New("sec: jwt secret is empty")

// Claims is the payload embedded inside every token.
//
// The subject is the user id. Claims are immutable once verified.
type Claims struct {
	jwt.RegisteredClaims

	// Type is "access" or "refresh".
	Type TokenKind `json:"typ"`
}

// TokenConfig holds the signing parameters of a [TokenService].
type TokenConfig struct {
	AccessSecret []byte
	// RefreshSecret falls back to AccessSecret when empty.
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
	Issuer        string

	// Now defaults to time.Now.
	Now func() time.Time
}

// TokenPair is the body returned by login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenService signs and verifies HS256 tokens.
//
// # Concurrency
//
// Safe for concurrent use; all fields are read-only after construction.
type TokenService struct {
	config TokenConfig
}

// NewTokenService validates cfg and fills in defaults.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, ErrMissingSecret
	}
	if len(cfg.RefreshSecret) == 0 {
		cfg.RefreshSecret = cfg.AccessSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenService{config: cfg}, nil
}

// AccessTTL returns the lifetime of access tokens.
func (service *TokenService) AccessTTL() time.Duration {
	return service.config.AccessTTL
}

// # Issuing

// Sign creates a token for subject, valid for ttl from now.
func (service *TokenService) Sign(subject string, kind TokenKind, ttl time.Duration, secret []byte) (string, error) {
	currentTime := service.config.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    service.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(ttl)),
		},
		Type: kind,
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec_sign_token_failed: %w", err)
	}

	return signedToken, nil
}

// IssueAccessToken creates an access token for the user id.
func (service *TokenService) IssueAccessToken(subject string) (string, error) {
	return service.Sign(subject, TokenAccess, service.config.AccessTTL, service.config.AccessSecret)
}

// IssueRefreshToken creates a refresh token for the user id.
func (service *TokenService) IssueRefreshToken(subject string) (string, error) {
	return service.Sign(subject, TokenRefresh, service.config.RefreshTTL, service.config.RefreshSecret)
}

// IssuePair creates an access and a refresh token for the user id.
func (service *TokenService) IssuePair(subject string) (TokenPair, error) {
	accessToken, err := service.IssueAccessToken(subject)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := service.IssueRefreshToken(subject)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(service.config.AccessTTL.Seconds()),
	}, nil
}

// # Verification

// Parse verifies the signature, expiry and type of tokenString.
//
// Only HS256 is accepted; "none" and asymmetric algorithms fail before the
// key is consulted. Every failure is returned as UNAUTHORIZED "invalid token"
// with the library error kept as the cause.
func (service *TokenService) Parse(tokenString string, secret []byte, kind TokenKind) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(service.config.Leeway),
		jwt.WithTimeFunc(service.config.Now),
	}
	if service.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(service.config.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, options...)
	if err != nil {
		return nil, invalidToken(err)
	}

	if !token.Valid {
		return nil, invalidToken(nil)
	}
	if claims.Type != kind {
		return nil, invalidToken(fmt.Errorf("sec: token type %q, want %q", claims.Type, kind))
	}
	if claims.Subject == "" {
		return nil, invalidToken(errors.New("sec: token has no subject"))
	}

	return claims, nil
}

// VerifyAccessToken parses an access token.
func (service *TokenService) VerifyAccessToken(tokenString string) (*Claims, error) {
	return service.Parse(tokenString, service.config.AccessSecret, TokenAccess)
}

// VerifyRefreshToken parses a refresh token.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return service.Parse(tokenString, service.config.RefreshSecret, TokenRefresh)
}

func invalidToken(cause error) *apperr.AppError {
	err := apperr.Unauthorized("invalid token")
	err.Cause = cause
	return err
}
