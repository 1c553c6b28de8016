// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps the standard UUID library to generate Version 7 values, which keep
B-tree indexes on primary keys append-mostly in PostgreSQL.
*/
package uuid

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalid is returned by [Parse] for anything but the hyphenated form.
var ErrInvalid = errors.New("uuid: invalid format")

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// # Validation

// Valid reports whether value is a canonical UUID of any version.
func Valid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// Parse returns the canonical lowercase form of value.
//
// Only the 36-character hyphenated form is accepted; the braced and URN
// forms that google/uuid also parses are rejected.
func Parse(value string) (string, error) {
	if len(value) != 36 {
		return "", ErrInvalid
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return "", ErrInvalid
	}

	return id.String(), nil
}
