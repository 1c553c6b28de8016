// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/platform/database/schema"
	"github.com/taibuivan/usersapi/internal/platform/middleware"
	requestutil "github.com/taibuivan/usersapi/internal/platform/request"
	"github.com/taibuivan/usersapi/internal/platform/respond"
	"github.com/taibuivan/usersapi/pkg/pagination"
	"github.com/taibuivan/usersapi/pkg/uuid"
)

// paramID is the chi URL parameter holding the target user ID.
const paramID = "id"

// listOptions restricts ordering to the public columns; newest first by default.
var listOptions = pagination.Options{
	AllowedColumns: schema.Users.SortableColumns(),
	DefaultColumn:  schema.Users.CreatedAt,
}

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] serving /api/v1/users.
//
// Every route runs behind authenticate; PUT and DELETE additionally require
// the caller to own the target ID.
func (handler *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(authenticate)

	router.Get("/", handler.list)
	router.Post("/", handler.create)

	router.Route("/{"+paramID+"}", func(router chi.Router) {
		router.Get("/", handler.get)

		router.Group(func(router chi.Router) {
			router.Use(middleware.RequireOwner(paramID))
			router.Put("/", handler.update)
			router.Delete("/", handler.delete)
		})
	})

	return router
}

// # Request Payloads

type createUserRequest struct {
	Name     string `json:"name"     validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type updateUserRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email"    validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// Normalize implements request.Normalizer.
func (payload *createUserRequest) Normalize() {
	payload.Name = NormalizeName(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)
}

// Normalize implements request.Normalizer.
func (payload *updateUserRequest) Normalize() {
	if payload.Name != nil {
		name := NormalizeName(*payload.Name)
		payload.Name = &name
	}
	if payload.Email != nil {
		email := strings.TrimSpace(*payload.Email)
		payload.Email = &email
	}
}

// # Endpoints

/*
GET /api/v1/users.

Query:
  - limit, page, order[<column>]=asc|desc (see package pagination)

Response:
  - 200: PaginatedEnvelope of User
  - 422: Invalid pagination parameter
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params, err := pagination.FromRequest(request, listOptions)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	users, total, err := handler.accountService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if users == nil {
		users = []*User{}
	}

	respond.Paginated(writer, users, pagination.NewMeta(params, total, len(users)))
}

/*
POST /api/v1/users.

Response:
  - 201: User
  - 409: Email already registered
  - 422: Invalid payload
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Create(request.Context(), CreateInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GET /api/v1/users/{id}.

Response:
  - 200: User
  - 400: Malformed ID
  - 404: No ACTIVE user with that ID
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := pathID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PUT /api/v1/users/{id}.

Description: Partial update of the caller's own account.

Response:
  - 200: User
  - 400: Empty update
  - 401: Not the owner
  - 409: Email already registered
  - 422: Invalid payload
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id, err := pathID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Update(request.Context(), id, UpdateInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/users/{id}.

Response:
  - 200: User as deleted (status DELETED)
  - 401: Not the owner
  - 404: Already gone
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := pathID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Delete(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// pathID returns the canonical form of the {id} parameter.
func pathID(request *http.Request) (string, error) {
	id, err := uuid.Parse(requestutil.Param(request, paramID))
	if err != nil {
		return "", apperr.BadRequest("Malformed identifier")
	}
	return id, nil
}
