// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns used by the repositories, so
// SQL assembled with the query builder never carries free-typed identifiers.
package schema

// UsersTable represents the 'users' table.
type UsersTable struct {
	Table     string
	ID        string
	Name      string
	Email     string
	Password  string
	Status    string
	CreatedAt string
	UpdatedAt string
	DeletedAt string

	// EmailKey is the unique constraint on Email.
	EmailKey string
}

// Users is the schema definition for the users table (000001_create_users).
var Users = UsersTable{
	Table:     "users",
	ID:        "id",
	Name:      "name",
	Email:     "email",
	Password:  "password",
	Status:    "status",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
	DeletedAt: "deleted_at",
	EmailKey:  "users_email_key",
}

// Columns returns the public columns, in the order repositories scan them.
// The password digest is excluded.
func (t UsersTable) Columns() []string {
	return []string{t.ID, t.Name, t.Email, t.Status, t.CreatedAt, t.UpdatedAt}
}

// SortableColumns is the allow-list for list ordering.
func (t UsersTable) SortableColumns() []string {
	return []string{t.ID, t.Name, t.Email, t.Status, t.CreatedAt, t.UpdatedAt}
}
