// Package cookie projects the session's access credential onto a cookie
// jar, where the perimeter guard reads it. The projection is one-way: the
// jar is never consulted to decide whether a user is authenticated.
package cookie

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/cryptobulldev/userdash/internal/common"
)

// JarMirror writes the access credential as a site-wide cookie.
type JarMirror struct {
	jar  http.CookieJar
	site *url.URL
}

// NewJarMirror scopes the cookie to siteURL. It creates a fresh jar backed
// by the public suffix list.
func NewJarMirror(siteURL string) (*JarMirror, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return NewJarMirrorWithJar(jar, siteURL)
}

// NewJarMirrorWithJar is NewJarMirror over a caller-supplied jar, so an
// http.Client can share it.
func NewJarMirrorWithJar(jar http.CookieJar, siteURL string) (*JarMirror, error) {
	u, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("parse site url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("site url %q must be absolute", siteURL)
	}
	// cookies are site-wide regardless of the API base path
	return &JarMirror{jar: jar, site: &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}}, nil
}

// Sync sets the cookie to access, or expires it when access is empty.
func (m *JarMirror) Sync(access string) {
	c := &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    access,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	if access == "" {
		c.Expires = time.Unix(0, 0).UTC()
		c.MaxAge = -1
	}
	m.jar.SetCookies(m.site, []*http.Cookie{c})
}

// Access returns the mirrored credential, or "" when the cookie is absent.
func (m *JarMirror) Access() string {
	for _, c := range m.jar.Cookies(m.site) {
		if c.Name == common.AccessTokenCookieName {
			return c.Value
		}
	}
	return ""
}

// Jar exposes the underlying jar.
func (m *JarMirror) Jar() http.CookieJar {
	return m.jar
}

// Nop is the mirror used when no cookie store exists, e.g. a headless run.
type Nop struct{}

func (Nop) Sync(string) {}

func (Nop) Access() string { return "" }
