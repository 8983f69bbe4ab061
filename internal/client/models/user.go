// Package models defines the client-side data models exchanged with the
// dashboard API.
package models

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPageLimit is the page size used when none is given.
const DefaultPageLimit = 10

// User is a dashboard user as returned by the API.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UsersPage is one page of the user listing.
type UsersPage struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// TotalPages returns the page count for limit-sized pages, at least 1.
func (p UsersPage) TotalPages(limit int) int {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if p.Total <= 0 {
		return 1
	}
	return (p.Total + limit - 1) / limit
}

// PageParams selects a page of users. Zero values mean page 1 with the
// default limit and no search filter.
type PageParams struct {
	Page   int
	Limit  int
	Search string
}

// Normalize fills in defaults.
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// Query encodes the params as URL query values.
func (p PageParams) Query() url.Values {
	p = p.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("search", p.Search)
	return q
}

// UserPayload is the body of create and update calls. On update, empty
// fields are left out so the server keeps their current values.
type UserPayload struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}
