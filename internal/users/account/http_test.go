// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/platform/middleware"
	"github.com/taibuivan/usersapi/internal/platform/respond"
	"github.com/taibuivan/usersapi/internal/platform/sec"
	"github.com/taibuivan/usersapi/internal/users/account"
	"github.com/taibuivan/usersapi/pkg/pagination"
)

const (
	aliceToken = "alice-token"
	bobID      = "0192f4a8-7c1b-7d2e-9a3f-bbbbbbbbbbbb"
)

// subjectVerifier maps opaque test tokens to subjects.
type subjectVerifier map[string]string

func (verifier subjectVerifier) VerifyAccessToken(token string) (*sec.Claims, error) {
	subject, ok := verifier[token]
	if !ok {
		return nil, apperr.Unauthorized("invalid token")
	}
	return &sec.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}, Type: sec.TokenAccess}, nil
}

func newUsersRouter(t *testing.T) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, repository := newMockRepository(t)
	handler := account.NewHandler(account.NewService(repository, prefixHasher{}, discardLogger()))

	router := chi.NewRouter()
	router.Mount("/api/v1/users", handler.Routes(middleware.Authenticate(subjectVerifier{aliceToken: aliceID})))

	return router, mock
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	request.Header.Set("Authorization", "Bearer "+aliceToken)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) respond.ErrorEnvelope {
	t.Helper()

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	return envelope
}

/*
TestHandler_List pages through five ACTIVE users, two at a time, ordered by name.
*/
func TestHandler_List(t *testing.T) {
	router, mock := newUsersRouter(t)

	mock.ExpectQuery("SELECT COUNT(*) FROM (SELECT id FROM users WHERE status = $1) AS active").
		WithArgs("ACTIVE").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

	mock.ExpectQuery("SELECT " + selectColumns + " FROM users WHERE status = $1 ORDER BY name ASC LIMIT 2 OFFSET 2").
		WithArgs("ACTIVE").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("id-3", "carol", "carol@example.com", "ACTIVE", createdAt, createdAt).
			AddRow("id-4", "dave", "dave@example.com", "ACTIVE", createdAt, createdAt))

	recorder := serve(router, http.MethodGet, "/api/v1/users?limit=2&page=2&order%5Bname%5D=asc", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		pagination.Meta
		Data []account.User `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))

	require.NotNil(t, body.Limit)
	assert.Equal(t, 2, *body.Limit)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 5, body.Count)
	assert.Equal(t, 3, body.PageCount)
	assert.Equal(t, 2, body.CurrentCount)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "carol", body.Data[0].Name)
}

/*
TestHandler_List_EmptyPage renders an empty array, never null.
*/
func TestHandler_List_EmptyPage(t *testing.T) {
	router, mock := newUsersRouter(t)

	mock.ExpectQuery("SELECT COUNT(*) FROM (SELECT id FROM users WHERE status = $1) AS active").
		WithArgs("ACTIVE").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery("SELECT " + selectColumns + " FROM users WHERE status = $1 ORDER BY created_at DESC LIMIT 10 OFFSET 0").
		WithArgs("ACTIVE").
		WillReturnRows(pgxmock.NewRows(userColumns))

	recorder := serve(router, http.MethodGet, "/api/v1/users", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"data":[]`)
	assert.Contains(t, recorder.Body.String(), `"page_count":0`)
}

/*
TestHandler_List_InvalidOrder rejects a column outside the allow-list before any query.
*/
func TestHandler_List_InvalidOrder(t *testing.T) {
	router, _ := newUsersRouter(t)

	recorder := serve(router, http.MethodGet, "/api/v1/users?order%5Bpassword%5D=asc", "")
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	envelope := decodeError(t, recorder)
	assert.Equal(t, apperr.KindValidation, envelope.Code)
	require.NotEmpty(t, envelope.Details)
	assert.Equal(t, "order[password]", envelope.Details[0].Field)
}

/*
TestHandler_RequiresToken rejects an anonymous request.
*/
func TestHandler_RequiresToken(t *testing.T) {
	router, _ := newUsersRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, middleware.MsgMissingAuthorization, decodeError(t, recorder).Message)
}

/*
TestHandler_Get returns a single user and rejects malformed IDs.
*/
func TestHandler_Get(t *testing.T) {
	router, mock := newUsersRouter(t)

	mock.ExpectQuery("SELECT " + selectColumns + " FROM users WHERE id = $1 AND status = $2").
		WithArgs(bobID, "ACTIVE").
		WillReturnRows(userRow(bobID, "bob"))

	recorder := serve(router, http.MethodGet, "/api/v1/users/"+strings.ToUpper(bobID), "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, bobID, body.Data["id"])
	assert.NotContains(t, body.Data, "password")

	recorder = serve(router, http.MethodGet, "/api/v1/users/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestHandler_Create validates the payload before hashing or storage.
*/
func TestHandler_Create(t *testing.T) {
	router, mock := newUsersRouter(t)

	recorder := serve(router, http.MethodPost, "/api/v1/users", `{"name":"al","email":"nope","password":"short"}`)
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	fields := []string{}
	for _, detail := range decodeError(t, recorder).Details {
		fields = append(fields, detail.Field)
	}
	assert.Equal(t, []string{"name", "email", "password"}, fields)

	mock.ExpectQuery("INSERT INTO users (id, name, email, password, status) VALUES ($1, $2, $3, $4, $5) RETURNING "+selectColumns).
		WithArgs(pgxmock.AnyArg(), "carol", "carol@example.com", "hashed:correct horse", "ACTIVE").
		WillReturnRows(userRow("id-3", "carol"))

	recorder = serve(router, http.MethodPost, "/api/v1/users", `{"name":"carol","email":"Carol@Example.com","password":"correct horse"}`)
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

/*
TestHandler_OwnershipCheck refuses to touch another user's ID, whether or not it exists.
*/
func TestHandler_OwnershipCheck(t *testing.T) {
	router, _ := newUsersRouter(t)

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		recorder := serve(router, method, "/api/v1/users/"+bobID, `{"name":"mallory"}`)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code, method)
		assert.Equal(t, middleware.MsgNotOwner, decodeError(t, recorder).Message, method)
	}
}

/*
TestHandler_UpdateOwn applies a partial update to the caller's account.
*/
func TestHandler_UpdateOwn(t *testing.T) {
	router, mock := newUsersRouter(t)

	mock.ExpectQuery("UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING "+selectColumns).
		WithArgs("alicia", aliceID, "ACTIVE").
		WillReturnRows(userRow(aliceID, "alicia"))

	recorder := serve(router, http.MethodPut, "/api/v1/users/"+aliceID, `{"name":"alicia"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = serve(router, http.MethodPut, "/api/v1/users/"+aliceID, `{}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestHandler_DeleteOwn soft-deletes the caller's account.
*/
func TestHandler_DeleteOwn(t *testing.T) {
	router, mock := newUsersRouter(t)

	mock.ExpectQuery("UPDATE users SET status = $1, deleted_at = NOW(), updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING "+selectColumns).
		WithArgs("DELETED", aliceID, "ACTIVE").
		WillReturnRows(deletedUserRow(aliceID, "alice"))

	recorder := serve(router, http.MethodDelete, "/api/v1/users/"+aliceID, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, aliceID, body.Data["id"])
	assert.Equal(t, "DELETED", body.Data["status"])
	assert.NotContains(t, body.Data, "password")
}

/*
TestHandler_NameLengthAfterTrim applies the length rules to the trimmed name.
*/
func TestHandler_NameLengthAfterTrim(t *testing.T) {
	router, mock := newUsersRouter(t)

	for _, body := range []string{`{"name":"     "}`, `{"name":" ab "}`} {
		recorder := serve(router, http.MethodPut, "/api/v1/users/"+aliceID, body)
		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code, body)

		envelope := decodeError(t, recorder)
		require.Len(t, envelope.Details, 1, body)
		assert.Equal(t, "name", envelope.Details[0].Field, body)
		assert.Equal(t, "Minimum 3 characters", envelope.Details[0].Message, body)
	}

	recorder := serve(router, http.MethodPost, "/api/v1/users", `{"name":"  ab  ","email":"ab@example.com","password":"correct horse"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	mock.ExpectQuery("UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING "+selectColumns).
		WithArgs("alicia", aliceID, "ACTIVE").
		WillReturnRows(userRow(aliceID, "alicia"))

	recorder = serve(router, http.MethodPut, "/api/v1/users/"+aliceID, `{"name":"  alicia  "}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
