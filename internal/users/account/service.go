// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/pkg/pagination"
	"github.com/taibuivan/usersapi/pkg/uuid"
)

// MsgInvalidCredentials is the only message a failed login ever gets, so an
// unknown email and a wrong password look the same.
const MsgInvalidCredentials = "invalid credentials"

// PasswordHasher is satisfied by *sec.PasswordHasher.
type PasswordHasher interface {
	Hash(ctx context.Context, plainTextPassword string) (string, error)
	Verify(ctx context.Context, plainTextPassword, digest string) (bool, error)
}

// # Service Layer

// Service orchestrates the account use cases.
type Service struct {
	repository Repository
	hasher     PasswordHasher
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		hasher:     hasher,
		logger:     logger,
	}
}

// CreateInput carries an already validated registration.
type CreateInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateInput is a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

/*
Create hashes the password and stores a new ACTIVE user.

Description: The name is NFC-normalized and the email lowercased before
storage, so visually identical input maps to one row.

Parameters:
  - ctx: context.Context
  - input: CreateInput

Returns:
  - *User: The stored user
  - error: CONFLICT on duplicate email, CREDENTIAL_HASHING_ERROR, storage failures
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	digest, err := service.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	user, err := service.repository.Create(ctx, &User{
		ID:           uuid.New(),
		Name:         NormalizeName(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: digest,
	})
	if err != nil {
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	service.logger.Info("user_created", slog.String("user_id", user.ID))

	return user, nil
}

// Get retrieves an ACTIVE user by ID.
func (service *Service) Get(ctx context.Context, id string) (*User, error) {
	user, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_failed: %w", err)
	}
	return user, nil
}

// List returns one page of ACTIVE users and the total count.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]*User, int, error) {
	users, total, err := service.repository.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return users, total, nil
}

/*
Update applies a partial update to an ACTIVE user.

Parameters:
  - ctx: context.Context
  - id: string (already checked against the caller's identity)
  - input: UpdateInput

Returns:
  - *User: The updated user
  - error: BAD_REQUEST when nothing is set, NOT_FOUND, CONFLICT
*/
func (service *Service) Update(ctx context.Context, id string, input UpdateInput) (*User, error) {
	var changes Changes

	if input.Name != nil {
		name := NormalizeName(*input.Name)
		changes.Name = &name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		changes.Email = &email
	}
	if input.Password != nil {
		digest, err := service.hasher.Hash(ctx, *input.Password)
		if err != nil {
			return nil, fmt.Errorf("account_service_hash_failed: %w", err)
		}
		changes.PasswordHash = &digest
	}

	user, err := service.repository.Update(ctx, id, changes)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_updated",
		slog.String("user_id", id),
		slog.Bool("password_changed", changes.PasswordHash != nil),
	)

	return user, nil
}

// Delete soft-deletes an ACTIVE user and returns it with status DELETED.
func (service *Service) Delete(ctx context.Context, id string) (*User, error) {
	user, err := service.repository.SoftDelete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.logger.Warn("user_deleted", slog.String("user_id", id))

	return user, nil
}

/*
VerifyCredentials checks an email and password pair.

Returns:
  - *User: The ACTIVE user owning the email
  - error: UNAUTHORIZED "invalid credentials" for an unknown email or a wrong
    password, CREDENTIAL_HASHING_ERROR for a corrupt digest, storage failures
*/
func (service *Service) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := service.repository.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("account_service_lookup_failed: %w", err)
	}

	matches, err := service.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("account_service_verify_failed: %w", err)
	}
	if !matches {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	user.PasswordHash = ""
	return user, nil
}

// NormalizeName trims name and converts it to Unicode NFC. Length rules apply
// to the result.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
