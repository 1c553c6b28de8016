// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/users/account"
	"github.com/taibuivan/usersapi/pkg/pagination"
)

const (
	selectColumns = "id, name, email, status, created_at, updated_at"
	aliceID       = "0192f4a8-7c1b-7d2e-9a3f-1b2c3d4e5f60"
)

var (
	userColumns = []string{"id", "name", "email", "status", "created_at", "updated_at"}
	createdAt   = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
)

func newMockRepository(t *testing.T) (pgxmock.PgxPoolIface, *account.PostgresRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return mock, account.NewRepository(mock)
}

func userRow(id, name string) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).AddRow(id, name, name+"@example.com", "ACTIVE", createdAt, createdAt)
}

func deletedUserRow(id, name string) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).AddRow(id, name, name+"@example.com", "DELETED", createdAt, createdAt)
}

/*
TestRepository_FindByID checks the lookup SQL and the mapping of a row.
*/
func TestRepository_FindByID(t *testing.T) {
	mock, repository := newMockRepository(t)

	mock.ExpectQuery("SELECT " + selectColumns + " FROM users WHERE id = $1 AND status = $2").
		WithArgs(aliceID, "ACTIVE").
		WillReturnRows(userRow(aliceID, "alice"))

	user, err := repository.FindByID(context.Background(), aliceID)
	require.NoError(t, err)

	assert.Equal(t, aliceID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, account.StatusActive, user.Status)
	assert.True(t, user.CreatedAt.Equal(createdAt))
	assert.Empty(t, user.PasswordHash)
}

/*
TestRepository_FindByID_NotFound maps no rows to NOT_FOUND with the ID in the message.
*/
func TestRepository_FindByID_NotFound(t *testing.T) {
	mock, repository := newMockRepository(t)

	mock.ExpectQuery("SELECT " + selectColumns + " FROM users WHERE id = $1 AND status = $2").
		WithArgs(aliceID, "ACTIVE").
		WillReturnError(pgx.ErrNoRows)

	_, err := repository.FindByID(context.Background(), aliceID)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.KindNotFound, appError.Code)
	assert.Equal(t, "User with ID "+aliceID+" not found", appError.Message)
}

/*
TestRepository_FindByEmail selects the password digest as the last column.
*/
func TestRepository_FindByEmail(t *testing.T) {
	mock, repository := newMockRepository(t)

	rows := pgxmock.NewRows(append(userColumns, "password")).
		AddRow(aliceID, "alice", "alice@example.com", "ACTIVE", createdAt, createdAt, "$argon2id$digest")

	mock.ExpectQuery("SELECT " + selectColumns + ", password FROM users WHERE email = $1 AND status = $2").
		WithArgs("alice@example.com", "ACTIVE").
		WillReturnRows(rows)

	user, err := repository.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$digest", user.PasswordHash)
}

/*
TestRepository_Create checks the INSERT and the duplicate email mapping.
*/
func TestRepository_Create(t *testing.T) {
	const insert = "INSERT INTO users (id, name, email, password, status) VALUES ($1, $2, $3, $4, $5) RETURNING " + selectColumns

	t.Run("Success", func(t *testing.T) {
		mock, repository := newMockRepository(t)

		mock.ExpectQuery(insert).
			WithArgs(aliceID, "alice", "alice@example.com", "digest", "ACTIVE").
			WillReturnRows(userRow(aliceID, "alice"))

		user, err := repository.Create(context.Background(), &account.User{
			ID: aliceID, Name: "alice", Email: "alice@example.com", PasswordHash: "digest",
		})
		require.NoError(t, err)
		assert.Equal(t, account.StatusActive, user.Status)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		mock, repository := newMockRepository(t)

		mock.ExpectQuery(insert).
			WithArgs(aliceID, "alice", "alice@example.com", "digest", "ACTIVE").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repository.Create(context.Background(), &account.User{
			ID: aliceID, Name: "alice", Email: "alice@example.com", PasswordHash: "digest",
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, apperr.KindConflict, appError.Code)
		assert.Equal(t, "users_email_key already exists.", appError.Message)
	})
}

/*
TestRepository_List runs the nested count and the paginated select.
*/
func TestRepository_List(t *testing.T) {
	mock, repository := newMockRepository(t)

	params, err := pagination.Parse(pagination.Request{
		Limit: "2",
		Page:  "2",
		Order: []pagination.Order{{Column: "name", Direction: "asc"}},
	}, pagination.Options{DefaultColumn: "created_at"})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT COUNT(*) FROM (SELECT id FROM users WHERE status = $1) AS active").
		WithArgs("ACTIVE").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

	mock.ExpectQuery("SELECT " + selectColumns + " FROM users WHERE status = $1 ORDER BY name ASC LIMIT 2 OFFSET 2").
		WithArgs("ACTIVE").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("id-3", "carol", "carol@example.com", "ACTIVE", createdAt, createdAt).
			AddRow("id-4", "dave", "dave@example.com", "ACTIVE", createdAt, createdAt))

	users, total, err := repository.List(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 5, total)
	require.Len(t, users, 2)
	assert.Equal(t, "carol", users[0].Name)
	assert.Equal(t, "dave", users[1].Name)
}

/*
TestRepository_List_DatabaseError hides the driver error behind DATABASE_ERROR.
*/
func TestRepository_List_DatabaseError(t *testing.T) {
	mock, repository := newMockRepository(t)

	mock.ExpectQuery("SELECT COUNT(*) FROM (SELECT id FROM users WHERE status = $1) AS active").
		WithArgs("ACTIVE").
		WillReturnError(errors.New("connection reset by peer"))

	_, _, err := repository.List(context.Background(), pagination.Params{Limit: 10, Page: 1})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.KindDatabase, appError.Code)
	assert.NotContains(t, appError.Message, "connection reset")
}

/*
TestRepository_Update assembles the SET list from the provided fields only.
*/
func TestRepository_Update(t *testing.T) {
	mock, repository := newMockRepository(t)

	name, email := "alicia", "alicia@example.com"

	mock.ExpectQuery("UPDATE users SET name = $1, email = $2, updated_at = NOW() WHERE id = $3 AND status = $4 RETURNING " + selectColumns).
		WithArgs(name, email, aliceID, "ACTIVE").
		WillReturnRows(userRow(aliceID, name))

	user, err := repository.Update(context.Background(), aliceID, account.Changes{Name: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "alicia", user.Name)
}

/*
TestRepository_Update_Empty rejects an update without fields before any query.
*/
func TestRepository_Update_Empty(t *testing.T) {
	_, repository := newMockRepository(t)

	_, err := repository.Update(context.Background(), aliceID, account.Changes{})
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

/*
TestRepository_SoftDelete flips the status and reports a missing row as NOT_FOUND.
*/
func TestRepository_SoftDelete(t *testing.T) {
	const update = "UPDATE users SET status = $1, deleted_at = NOW(), updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING " + selectColumns

	t.Run("Success", func(t *testing.T) {
		mock, repository := newMockRepository(t)

		mock.ExpectQuery(update).
			WithArgs("DELETED", aliceID, "ACTIVE").
			WillReturnRows(deletedUserRow(aliceID, "alice"))

		user, err := repository.SoftDelete(context.Background(), aliceID)
		require.NoError(t, err)
		assert.Equal(t, aliceID, user.ID)
		assert.Equal(t, account.StatusDeleted, user.Status)
	})

	t.Run("Missing", func(t *testing.T) {
		mock, repository := newMockRepository(t)

		mock.ExpectQuery(update).
			WithArgs("DELETED", aliceID, "ACTIVE").
			WillReturnError(pgx.ErrNoRows)

		_, err := repository.SoftDelete(context.Background(), aliceID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
		assert.Equal(t, "User with ID "+aliceID+" not found", apperr.As(err).Message)
	})
}
