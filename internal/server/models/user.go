// Package models holds the server's storage models.
package models

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserUpdate lists the fields to change; nil fields are left alone.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// ListParams selects one page of users. Search matches name or email,
// case-insensitively.
type ListParams struct {
	Offset int
	Limit  int
	Search string
}
