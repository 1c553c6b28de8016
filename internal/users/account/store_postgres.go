// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/platform/database/schema"
	"github.com/taibuivan/usersapi/internal/platform/dberr"
	"github.com/taibuivan/usersapi/internal/platform/postgres"
	"github.com/taibuivan/usersapi/pkg/pagination"
	"github.com/taibuivan/usersapi/pkg/query"
)

// # Repository Implementation

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool postgres.Querier
}

// NewRepository creates a new Postgres implementation for user accounts.
func NewRepository(pool postgres.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	userColumns      = strings.Join(schema.Users.Columns(), ", ")
	credentialColumn = ", " + schema.Users.Password
)

// userNotFound renders the NOT_FOUND message for an ID lookup.
func userNotFound(id string) string {
	return fmt.Sprintf("User with ID %s not found", id)
}

// activeOnly appends "<status> = $n" for the ACTIVE state.
func activeOnly(b *query.Builder) *query.Builder {
	return b.Condition(schema.Users.Status + " = " + b.Bind(string(StatusActive)))
}

/*
Create inserts a user in the ACTIVE state.

Parameters:
  - ctx: context.Context
  - user: *User

Returns:
  - *User: The stored row
  - error: CONFLICT "users_email_key already exists." on a duplicate email
*/
func (repository *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	columns := strings.Join([]string{
		schema.Users.ID, schema.Users.Name, schema.Users.Email, schema.Users.Password, schema.Users.Status,
	}, ", ")

	b := query.New()
	values := b.BindList(user.ID, user.Name, user.Email, user.PasswordHash, string(StatusActive))
	b.Insert(schema.Users.Table, columns, values).Returning(userColumns)

	created, err := scanUser(repository.pool.QueryRow(ctx, b.Build(), b.Args()...), false)
	if err != nil {
		return nil, dberr.Wrap(err, "account_store_create")
	}

	return created, nil
}

/*
FindByID retrieves an ACTIVE user.

Returns:
  - *User: Without password digest
  - error: NOT_FOUND "User with ID <id> not found", storage failures
*/
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	b := query.New()
	b.From(schema.Users.Table, userColumns).
		Where().Condition(schema.Users.ID + " = " + b.Bind(id)).
		And()
	activeOnly(b)

	user, err := scanUser(repository.pool.QueryRow(ctx, b.Build(), b.Args()...), false)
	if err != nil {
		return nil, dberr.WrapNotFound(err, "account_store_find_by_id", userNotFound(id))
	}

	return user, nil
}

// FindByEmail retrieves an ACTIVE user together with its password digest.
func (repository *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	b := query.New()
	b.From(schema.Users.Table, userColumns+credentialColumn).
		Where().Condition(schema.Users.Email + " = " + b.Bind(email)).
		And()
	activeOnly(b)

	user, err := scanUser(repository.pool.QueryRow(ctx, b.Build(), b.Args()...), true)
	if err != nil {
		return nil, dberr.WrapNotFound(err, "account_store_find_by_email", fmt.Sprintf("User with email %s not found", email))
	}

	return user, nil
}

/*
List returns one page of ACTIVE users and the total count.

Description: The count runs over a nested sub-select of the same filter, then
the page query applies the validated ORDER BY / LIMIT / OFFSET.
*/
func (repository *PostgresRepository) List(ctx context.Context, params pagination.Params) ([]*User, int, error) {

	// 1. Total
	filter := query.New()
	filter.From(schema.Users.Table, schema.Users.ID).Where()
	activeOnly(filter)

	counter := query.New().FromNested(filter, "COUNT(*)", "active")

	var total int
	if err := repository.pool.QueryRow(ctx, counter.Build(), counter.Args()...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "account_store_count")
	}

	// 2. Page
	b := query.New()
	b.From(schema.Users.Table, userColumns).Where()
	activeOnly(b)
	params.Apply(b)

	rows, err := repository.pool.Query(ctx, b.Build(), b.Args()...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "account_store_list")
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows, false)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "account_store_list_scan")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "account_store_list_rows")
	}

	return users, total, nil
}

/*
Update assembles a SET list from the non-nil fields of changes.

Returns:
  - *User: The updated row
  - error: BAD_REQUEST when changes is empty, NOT_FOUND, CONFLICT on email reuse
*/
func (repository *PostgresRepository) Update(ctx context.Context, id string, changes Changes) (*User, error) {
	if changes.Empty() {
		return nil, apperr.BadRequest("No fields to update")
	}

	b := query.New()

	var assignments []string
	if changes.Name != nil {
		assignments = append(assignments, schema.Users.Name+" = "+b.Bind(*changes.Name))
	}
	if changes.Email != nil {
		assignments = append(assignments, schema.Users.Email+" = "+b.Bind(*changes.Email))
	}
	if changes.PasswordHash != nil {
		assignments = append(assignments, schema.Users.Password+" = "+b.Bind(*changes.PasswordHash))
	}
	assignments = append(assignments, schema.Users.UpdatedAt+" = NOW()")

	b.Update(schema.Users.Table, strings.Join(assignments, ", ")).
		Where().Condition(schema.Users.ID + " = " + b.Bind(id)).
		And()
	activeOnly(b).Returning(userColumns)

	user, err := scanUser(repository.pool.QueryRow(ctx, b.Build(), b.Args()...), false)
	if err != nil {
		return nil, dberr.WrapNotFound(err, "account_store_update", userNotFound(id))
	}

	return user, nil
}

// SoftDelete flags the user as DELETED, stamps deleted_at and returns the row as stored.
func (repository *PostgresRepository) SoftDelete(ctx context.Context, id string) (*User, error) {
	b := query.New()
	assignments := strings.Join([]string{
		schema.Users.Status + " = " + b.Bind(string(StatusDeleted)),
		schema.Users.DeletedAt + " = NOW()",
		schema.Users.UpdatedAt + " = NOW()",
	}, ", ")

	b.Update(schema.Users.Table, assignments).
		Where().Condition(schema.Users.ID + " = " + b.Bind(id)).
		And()
	activeOnly(b).Returning(userColumns)

	user, err := scanUser(repository.pool.QueryRow(ctx, b.Build(), b.Args()...), false)
	if err != nil {
		return nil, dberr.WrapNotFound(err, "account_store_soft_delete", userNotFound(id))
	}

	return user, nil
}

// scanUser reads the columns of [schema.UsersTable.Columns], optionally
// followed by the password digest.
func scanUser(row pgx.Row, withPassword bool) (*User, error) {
	user := &User{}
	var status string

	destinations := []any{&user.ID, &user.Name, &user.Email, &status, &user.CreatedAt, &user.UpdatedAt}
	if withPassword {
		destinations = append(destinations, &user.PasswordHash)
	}

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}

	user.Status = Status(status)
	return user, nil
}
