// Package guard is the perimeter check run before a protected surface is
// shown. It only looks at the mirrored access cookie: it never sees the
// refresh credential and never refreshes anything.
package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/cryptobulldev/userdash/internal/common"
)

const (
	LoginPath     = "/auth/login"
	RegisterPath  = "/auth/register"
	DashboardPath = "/dashboard"

	// RedirectParam carries the originally requested path to the login page.
	RedirectParam = "redirect"
)

var (
	passthroughPrefixes = []string{"/_next", "/static", "/favicon.ico", "/api"}
	publicPrefixes      = []string{LoginPath, RegisterPath, "/auth/forgot-password", "/auth/reset-password"}
)

// Action is what the guard wants done with a navigation.
type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the outcome for one path. Location is set for redirects.
type Decision struct {
	Action   Action
	Location string
}

// Decide routes path given the cookie value token ("" when absent).
func Decide(path, token string) Decision {
	if hasAnyPrefix(path, passthroughPrefixes) {
		return Decision{Action: Allow}
	}

	if hasAnyPrefix(path, publicPrefixes) {
		if token != "" && (strings.HasPrefix(path, LoginPath) || strings.HasPrefix(path, RegisterPath)) {
			return Decision{Action: Redirect, Location: DashboardPath}
		}
		return Decision{Action: Allow}
	}

	if strings.HasPrefix(path, DashboardPath) && token == "" {
		return Decision{Action: Redirect, Location: LoginLocation(path)}
	}

	return Decision{Action: Allow}
}

// LoginLocation is the login path carrying returnTo as its return target.
func LoginLocation(returnTo string) string {
	q := url.Values{}
	q.Set(RedirectParam, returnTo)
	return LoginPath + "?" + q.Encode()
}

// ReturnTarget extracts the return target from a login location, falling
// back to the dashboard. Only same-site paths are accepted.
func ReturnTarget(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return DashboardPath
	}
	target := u.Query().Get(RedirectParam)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return DashboardPath
	}
	return target
}

// Middleware applies Decide to every request using the access cookie.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(common.AccessTokenCookieName); err == nil {
			token = c.Value
		}

		d := Decide(r.URL.Path, token)
		if d.Action == Redirect {
			http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
