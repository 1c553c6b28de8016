// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements registration, login and token refresh.

Identities live in the account package; this package only turns verified
credentials into signed tokens.

Architecture:

  - Service: Register, Login, Refresh.
  - Tokens: HS256 access and refresh tokens from sec.TokenService. Refresh
    tokens are not rotated and there is no server-side revocation.
  - Throttling: failed logins are counted in Redis per email and client IP.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/platform/sec"
	"github.com/taibuivan/usersapi/internal/users/account"
)

// # Contracts & Types

// Accounts is the subset of *account.Service the auth flows depend on.
type Accounts interface {
	Create(ctx context.Context, input account.CreateInput) (*account.User, error)
	Get(ctx context.Context, id string) (*account.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (*account.User, error)
}

// TokenIssuer is satisfied by *sec.TokenService.
type TokenIssuer interface {
	IssuePair(subject string) (sec.TokenPair, error)
	IssueAccessToken(subject string) (string, error)
	VerifyRefreshToken(token string) (*sec.Claims, error)
	AccessTTL() time.Duration
}

// Registration is the body returned by register: the new user plus its tokens.
type Registration struct {
	*account.User
	Tokens sec.TokenPair `json:"tokens"`
}

// RegisterInput carries an already validated registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput carries the credentials and the client address used for throttling.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
}

// Service implements user authentication use cases.
type Service struct {
	accounts Accounts
	tokens   TokenIssuer
	limiter  AttemptLimiter
	logger   *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(accounts Accounts, tokens TokenIssuer, limiter AttemptLimiter, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		limiter:  limiter,
		logger:   logger,
	}
}

// # Registration Flow

/*
Register creates an account and signs it in.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *Registration: The created user and a token pair
  - error: CONFLICT "users_email_key already exists." on duplicate email
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Registration, error) {
	user, err := service.accounts.Create(ctx, account.CreateInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	tokens, err := service.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &Registration{User: user, Tokens: tokens}, nil
}

// # Login Flow

/*
Login exchanges an email and password for a token pair.

Description: A client that has spent its failure allowance is refused before the
password is hashed. A failed verification counts against the allowance; a
successful one clears it. Throttling state is best effort: when Redis is
unavailable the attempt proceeds unthrottled.

Returns:
  - sec.TokenPair: Access and refresh tokens
  - error: RATE_LIMITED, UNAUTHORIZED "invalid credentials", storage failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (sec.TokenPair, error) {
	key := AttemptKey(input.Email, input.IPAddress)

	if err := service.limiter.Check(ctx, key); err != nil {
		if apperr.IsKind(err, apperr.KindRateLimited) {
			service.logger.Warn("auth_login_throttled", slog.String("ip", input.IPAddress))
			return sec.TokenPair{}, err
		}
		service.logger.Warn("auth_login_limiter_unavailable", slog.Any("error", err))
	}

	user, err := service.accounts.VerifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		if apperr.IsKind(err, apperr.KindUnauthorized) {
			if failErr := service.limiter.Fail(ctx, key); failErr != nil {
				service.logger.Warn("auth_login_limiter_unavailable", slog.Any("error", failErr))
			}
		}
		return sec.TokenPair{}, fmt.Errorf("auth_service_login_failed: %w", err)
	}

	if err := service.limiter.Reset(ctx, key); err != nil {
		service.logger.Warn("auth_login_limiter_unavailable", slog.Any("error", err))
	}

	tokens, err := service.tokens.IssuePair(user.ID)
	if err != nil {
		return sec.TokenPair{}, apperr.Internal(err)
	}

	service.logger.Info("auth_login_succeeded", slog.String("user_id", user.ID))

	return tokens, nil
}

// # Session Refresh

/*
Refresh issues a new access token for a valid refresh token.

Description: The subject must still be an ACTIVE user. The refresh token
itself is echoed back unchanged.

Returns:
  - sec.TokenPair: New access token, same refresh token
  - error: UNAUTHORIZED "invalid token"
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (sec.TokenPair, error) {
	claims, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return sec.TokenPair{}, err
	}

	user, err := service.accounts.Get(ctx, claims.Subject)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return sec.TokenPair{}, apperr.Unauthorized("invalid token")
		}
		return sec.TokenPair{}, fmt.Errorf("auth_service_refresh_failed: %w", err)
	}

	accessToken, err := service.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return sec.TokenPair{}, apperr.Internal(err)
	}

	return sec.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    sec.TokenTypeBearer,
		ExpiresIn:    int64(service.tokens.AccessTTL().Seconds()),
	}, nil
}
