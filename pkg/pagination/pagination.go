// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination turns untrusted list parameters into bounded SQL clauses.
//
// # Overview
//
// A caller supplies "limit", "page" and any number of ordering pairs. [Parse]
// validates all of them strictly and returns [Params], which [Params.Apply]
// renders onto a [query.Builder] as ORDER BY / LIMIT / OFFSET fragments.
// [NewMeta] builds the envelope metadata for the response.
//
// # Transport
//
//	?limit=2&page=2&order[name]=asc&order[created_at]=desc
//	?limit=ALL&order=name:asc,created_at:desc
//	?order=desc                     (direction for the default column)
//
// Ordering pairs keep the order in which they appear in the query string; the
// first pair is the primary sort key.
package pagination

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/platform/validate"
	"github.com/taibuivan/usersapi/pkg/query"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 10
	// MaxLimit is the upper bound for a numeric limit.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1

	// DirectionAsc and DirectionDesc are the only accepted sort directions.
	DirectionAsc  = "ASC"
	DirectionDesc = "DESC"

	// unboundedLimit and unboundedKeyword both mean "return every row".
	unboundedLimit   = "-1"
	unboundedKeyword = "ALL"
)

// Field names used in validation errors.
const (
	FieldLimit = "limit"
	FieldPage  = "page"
	FieldOrder = "order"
)

// Order is a single (column, direction) sort key.
type Order struct {
	Column    string
	Direction string
}

// Request is the raw, unvalidated pagination input.
type Request struct {
	Limit string
	Page  string
	Order []Order
}

// Options constrains parsing for one resource.
type Options struct {
	// AllowedColumns lists the sortable columns. Empty accepts any column.
	AllowedColumns []string
	// DefaultColumn is sorted DESC when no order is supplied.
	DefaultColumn string
}

// Params holds the validated pagination tuple.
type Params struct {
	// Limit is the page size. Zero when Unbounded.
	Limit int
	// Unbounded is set for limit=-1 / limit=ALL.
	Unbounded bool
	Page      int
	Offset    int
	Order     []Order
}

// Apply appends ORDER BY, LIMIT and OFFSET to b, in that order.
//
// Columns come from [Parse], which only lets allow-listed names through; they
// are embedded in the SQL text as-is.
func (p Params) Apply(b *query.Builder) *query.Builder {
	for i, order := range p.Order {
		if i == 0 {
			b.OrderBy(order.Column, order.Direction)
			continue
		}
		b.ThenBy(order.Column, order.Direction)
	}

	if !p.Unbounded {
		b.Limit(p.Limit)
	}

	return b.Offset(p.Offset)
}

// Meta is the pagination metadata of a collection response.
type Meta struct {
	// Limit is null when the request was unbounded.
	Limit        *int `json:"limit"`
	Page         int  `json:"page"`
	Count        int  `json:"count"`
	PageCount    int  `json:"page_count"`
	CurrentCount int  `json:"current_count"`
}

// NewMeta computes the response metadata.
//
// PageCount is ceil(total/limit), or 1 when the request was unbounded.
func NewMeta(params Params, total, returned int) Meta {
	meta := Meta{
		Page:         params.Page,
		Count:        total,
		CurrentCount: returned,
		PageCount:    1,
	}

	if !params.Unbounded {
		limit := params.Limit
		meta.Limit = &limit
		meta.PageCount = 0
		if limit > 0 {
			meta.PageCount = (total + limit - 1) / limit
		}
	}

	return meta
}

// Parse validates raw and derives offset and ordering.
//
// # Validation
//
// Every problem is collected into one VALIDATION_ERROR:
//   - limit that is not -1, ALL or an integer in [1, MaxLimit]
//   - page that is not an integer >= 1, or whose offset overflows an int
//   - a direction other than ASC/DESC (case-insensitive), keyed "order[<column>]"
//   - a column outside Options.AllowedColumns, keyed "order[<column>]"
func Parse(raw Request, opts Options) (Params, error) {
	validator := &validate.Validator{}
	params := Params{Limit: DefaultLimit, Page: DefaultPage}

	// 1. Limit
	switch limit := strings.TrimSpace(raw.Limit); {
	case limit == "":
	case limit == unboundedLimit || strings.EqualFold(limit, unboundedKeyword):
		params.Unbounded = true
		params.Limit = 0
	default:
		n, err := strconv.Atoi(limit)
		if err != nil {
			validator.Custom(FieldLimit, true, "Must be an integer, -1 or ALL")
		} else {
			validator.Range(FieldLimit, n, 1, MaxLimit)
			params.Limit = n
		}
	}

	// 2. Page
	if page := strings.TrimSpace(raw.Page); page != "" {
		n, err := strconv.Atoi(page)
		validator.Custom(FieldPage, err != nil || n < 1, "Must be a positive integer")
		if err == nil && n > 1 && !params.Unbounded && params.Limit > 0 {
			validator.Custom(FieldPage, n-1 > math.MaxInt/params.Limit, "Page is out of range")
		}
		params.Page = n
	}

	// 3. Ordering
	for _, order := range raw.Order {
		column := strings.TrimSpace(order.Column)
		if column == "" {
			column = opts.DefaultColumn
		}
		key := FieldOrder + "[" + column + "]"
		direction := strings.ToUpper(strings.TrimSpace(order.Direction))

		validator.Custom(key, !columnAllowed(column, opts.AllowedColumns), "Unsupported sort column")
		validator.OneOf(key, direction, DirectionAsc, DirectionDesc)

		params.Order = upsertOrder(params.Order, Order{Column: column, Direction: direction})
	}

	if err := validator.Err(); err != nil {
		return Params{}, err
	}

	if len(params.Order) == 0 && opts.DefaultColumn != "" {
		params.Order = []Order{{Column: opts.DefaultColumn, Direction: DirectionDesc}}
	}

	// 4. Offset
	if !params.Unbounded {
		params.Offset = (params.Page - 1) * params.Limit
	}

	return params, nil
}

// FromRequest parses the pagination parameters of r's query string.
func FromRequest(request *http.Request, opts Options) (Params, error) {
	raw, err := ParseQuery(request.URL.RawQuery)
	if err != nil {
		return Params{}, err
	}
	return Parse(raw, opts)
}

// ParseQuery extracts a [Request] from a raw query string, keeping the order
// of the ordering pairs as written.
//
// [url.Values] is a map and would lose that order, so the string is split by
// hand.
func ParseQuery(rawQuery string) (Request, error) {
	var raw Request

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		escapedKey, escapedValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(escapedKey)
		if err != nil {
			return Request{}, apperr.BadRequest("Malformed query string")
		}
		value, err := url.QueryUnescape(escapedValue)
		if err != nil {
			return Request{}, apperr.BadRequest("Malformed query string")
		}

		switch {
		case key == FieldLimit:
			raw.Limit = value
		case key == FieldPage:
			raw.Page = value
		case key == FieldOrder:
			raw.Order = append(raw.Order, splitOrderList(value)...)
		case strings.HasPrefix(key, FieldOrder+"[") && strings.HasSuffix(key, "]"):
			column := key[len(FieldOrder)+1 : len(key)-1]
			raw.Order = append(raw.Order, Order{Column: column, Direction: value})
		}
	}

	return raw, nil
}

// splitOrderList parses "name:asc,created_at:desc". A bare "desc" applies to
// the default column.
func splitOrderList(value string) []Order {
	var orders []Order
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		column, direction, found := strings.Cut(item, ":")
		if !found {
			orders = append(orders, Order{Direction: column})
			continue
		}
		orders = append(orders, Order{Column: column, Direction: direction})
	}
	return orders
}

// upsertOrder replaces the direction of an already present column in place,
// otherwise appends.
func upsertOrder(orders []Order, next Order) []Order {
	for i := range orders {
		if orders[i].Column == next.Column {
			orders[i].Direction = next.Direction
			return orders
		}
	}
	return append(orders, next)
}

func columnAllowed(column string, allowed []string) bool {
	if column == "" {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if candidate == column {
			return true
		}
	}
	return false
}
