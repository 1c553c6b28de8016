// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/usersapi/internal/platform/postgres"
)

var _ postgres.Querier = pgxmock.PgxPoolIface(nil)

/*
TestPing wraps a failed ping and passes a healthy one.
*/
func TestPing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing()
	assert.NoError(t, postgres.Ping(context.Background(), mock))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = postgres.Ping(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: ping failed")

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestNewPool_InvalidDSN fails before dialing.
*/
func TestNewPool_InvalidDSN(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := postgres.NewPool(context.Background(), "postgres://user:pw@host:notaport/db", postgres.PoolOptions{}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: invalid DSN")
}
