// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Request Fields

const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRefreshToken = "refresh_token"
)

// # Input Constraints

const (
	// NameMinLength and NameMaxLength bound the display name (users.name is VARCHAR(64)).
	NameMinLength = 3
	NameMaxLength = 64

	// EmailMaxLength matches users.email.
	EmailMaxLength = 255

	// PasswordMinLength and PasswordMaxLength bound the plain password. The
	// upper bound caps the argon2 input.
	PasswordMinLength = 8
	PasswordMaxLength = 128
)
