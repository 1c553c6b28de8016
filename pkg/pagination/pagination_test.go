// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"math"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/pkg/pagination"
	"github.com/taibuivan/usersapi/pkg/query"
)

var userOptions = pagination.Options{
	AllowedColumns: []string{"id", "name", "email", "created_at"},
	DefaultColumn:  "created_at",
}

/*
TestParse_Defaults applies limit 10, page 1 and the default column DESC.
*/
func TestParse_Defaults(t *testing.T) {
	params, err := pagination.Parse(pagination.Request{}, userOptions)
	require.NoError(t, err)

	assert.Equal(t, pagination.DefaultLimit, params.Limit)
	assert.Equal(t, pagination.DefaultPage, params.Page)
	assert.Equal(t, 0, params.Offset)
	assert.False(t, params.Unbounded)
	assert.Equal(t, []pagination.Order{{Column: "created_at", Direction: "DESC"}}, params.Order)
}

/*
TestParse_Offset checks offset == (page-1) * limit.
*/
func TestParse_Offset(t *testing.T) {
	tests := []struct {
		limit, page string
		offset      int
	}{
		{"10", "1", 0},
		{"2", "2", 2},
		{"25", "4", 75},
		{"100", "3", 200},
	}

	for _, tt := range tests {
		t.Run(tt.limit+"x"+tt.page, func(t *testing.T) {
			params, err := pagination.Parse(pagination.Request{Limit: tt.limit, Page: tt.page}, userOptions)
			require.NoError(t, err)
			assert.Equal(t, tt.offset, params.Offset)
		})
	}
}

/*
TestParse_Unbounded accepts -1 and ALL and drops the offset.
*/
func TestParse_Unbounded(t *testing.T) {
	for _, limit := range []string{"-1", "ALL", "all"} {
		t.Run(limit, func(t *testing.T) {
			params, err := pagination.Parse(pagination.Request{Limit: limit, Page: "3"}, userOptions)
			require.NoError(t, err)
			assert.True(t, params.Unbounded)
			assert.Equal(t, 0, params.Offset)

			meta := pagination.NewMeta(params, 42, 42)
			assert.Nil(t, meta.Limit)
			assert.Equal(t, 1, meta.PageCount)
		})
	}
}

/*
TestParse_Invalid collects every failure into one VALIDATION_ERROR.
*/
func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		req   pagination.Request
		field string
	}{
		{"limit_zero", pagination.Request{Limit: "0"}, "limit"},
		{"limit_too_large", pagination.Request{Limit: "101"}, "limit"},
		{"limit_not_number", pagination.Request{Limit: "ten"}, "limit"},
		{"page_zero", pagination.Request{Page: "0"}, "page"},
		{"page_negative", pagination.Request{Page: "-2"}, "page"},
		{"page_overflow", pagination.Request{Limit: "100", Page: "100000000000000000"}, "page"},
		{"bad_direction", pagination.Request{Order: []pagination.Order{{Column: "name", Direction: "sideways"}}}, "order[name]"},
		{"unknown_column", pagination.Request{Order: []pagination.Order{{Column: "password", Direction: "asc"}}}, "order[password]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pagination.Parse(tt.req, userOptions)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.KindValidation, ae.Code)
			require.NotEmpty(t, ae.Details)
			assert.Equal(t, tt.field, ae.Details[0].Field)
			assert.Contains(t, ae.Message, tt.field)
		})
	}
}

/*
TestParse_LargestPage accepts the last page whose offset still fits.
*/
func TestParse_LargestPage(t *testing.T) {
	page := strconv.Itoa(math.MaxInt/pagination.MaxLimit + 1)

	params, err := pagination.Parse(pagination.Request{Limit: "100", Page: page}, userOptions)
	require.NoError(t, err)
	assert.Positive(t, params.Offset)
	assert.Equal(t, (params.Page-1)*params.Limit, params.Offset)
}

/*
TestParse_DirectionCaseInsensitive normalizes directions to upper case.
*/
func TestParse_DirectionCaseInsensitive(t *testing.T) {
	params, err := pagination.Parse(pagination.Request{
		Order: []pagination.Order{{Column: "name", Direction: "asc"}, {Column: "id", Direction: "Desc"}},
	}, userOptions)
	require.NoError(t, err)

	assert.Equal(t, []pagination.Order{
		{Column: "name", Direction: "ASC"},
		{Column: "id", Direction: "DESC"},
	}, params.Order)
}

/*
TestParseQuery_KeepsOrder reads ordering pairs in the order they were written.
*/
func TestParseQuery_KeepsOrder(t *testing.T) {
	raw, err := pagination.ParseQuery("order%5Bname%5D=asc&limit=2&order[created_at]=desc&page=2&order=email:asc,desc")
	require.NoError(t, err)

	assert.Equal(t, "2", raw.Limit)
	assert.Equal(t, "2", raw.Page)
	assert.Equal(t, []pagination.Order{
		{Column: "name", Direction: "asc"},
		{Column: "created_at", Direction: "desc"},
		{Column: "email", Direction: "asc"},
		{Column: "", Direction: "desc"},
	}, raw.Order)
}

/*
TestParseQuery_Malformed rejects bad percent-escapes.
*/
func TestParseQuery_Malformed(t *testing.T) {
	_, err := pagination.ParseQuery("limit=%zz")
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

/*
TestApply renders ORDER BY, LIMIT and OFFSET onto a builder.
*/
func TestApply(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/users?limit=2&page=2&order[name]=asc&order[id]=desc", nil)

	params, err := pagination.FromRequest(req, userOptions)
	require.NoError(t, err)

	b := query.New()
	b.From("users", "*")
	params.Apply(b)

	assert.Equal(t, "SELECT * FROM users ORDER BY name ASC, id DESC LIMIT 2 OFFSET 2", b.String())
}

/*
TestApply_Unbounded omits LIMIT.
*/
func TestApply_Unbounded(t *testing.T) {
	params, err := pagination.Parse(pagination.Request{Limit: "ALL"}, userOptions)
	require.NoError(t, err)

	b := query.New()
	b.From("users", "*")
	params.Apply(b)

	assert.Equal(t, "SELECT * FROM users ORDER BY created_at DESC OFFSET 0", b.String())
}

/*
TestNewMeta computes page_count as ceil(count / limit).
*/
func TestNewMeta(t *testing.T) {
	params, err := pagination.Parse(pagination.Request{Limit: "2", Page: "2"}, userOptions)
	require.NoError(t, err)

	meta := pagination.NewMeta(params, 5, 2)
	require.NotNil(t, meta.Limit)
	assert.Equal(t, 2, *meta.Limit)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 5, meta.Count)
	assert.Equal(t, 3, meta.PageCount)
	assert.Equal(t, 2, meta.CurrentCount)

	empty := pagination.NewMeta(params, 0, 0)
	assert.Equal(t, 0, empty.PageCount)
}
