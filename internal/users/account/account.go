// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account manages the user identities of the API.

It owns the User entity, its PostgreSQL persistence, the CRUD use cases and
their HTTP delivery under /api/v1/users.

# Architecture

  - Entities: User, Status, Changes.
  - Persistence: [Repository], implemented by [PostgresRepository] on top of
    the query builder. Rows whose status is not ACTIVE are invisible.
  - Security: every route requires a verified access token; update and delete
    are further restricted to the caller's own ID.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/usersapi/pkg/pagination"
)

// # Domain Entities

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusDeleted  Status = "DELETED"
)

// User is the public identity of an account holder.
// The password digest never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Changes is a partial update. Nil fields are left untouched.
type Changes struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// Empty reports whether no field is set.
func (changes Changes) Empty() bool {
	return changes.Name == nil && changes.Email == nil && changes.PasswordHash == nil
}

// # Repository Contracts

// Repository defines the persistence contract for user accounts.
type Repository interface {
	/*
		Create inserts a new ACTIVE user.

		Parameters:
		  - ctx: context.Context
		  - user: *User (ID, Name, Email and PasswordHash populated)

		Returns:
		  - *User: The stored row, timestamps included
		  - error: apperr.Conflict on a duplicate email, storage failures
	*/
	Create(ctx context.Context, user *User) (*User, error)

	/*
		FindByID retrieves an ACTIVE user by ID.

		Returns:
		  - *User: Loaded account entity (without password digest)
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail retrieves an ACTIVE user with its password digest.
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		List returns one page of ACTIVE users and the total ACTIVE count.

		Parameters:
		  - ctx: context.Context
		  - params: pagination.Params (validated ordering and bounds)

		Returns:
		  - []*User: Page content, never nil
		  - int: Total number of ACTIVE users
		  - error: Storage failures
	*/
	List(ctx context.Context, params pagination.Params) ([]*User, int, error)

	// Update applies changes to an ACTIVE user and returns the new state.
	Update(ctx context.Context, id string, changes Changes) (*User, error)

	// SoftDelete flags an ACTIVE user as DELETED and returns it.
	SoftDelete(ctx context.Context, id string) (*User, error)
}
