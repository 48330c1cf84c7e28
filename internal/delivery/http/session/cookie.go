// Package session manages the browser session cookie that carries the
// signed session token.
package session

import (
	"net/http"
	"time"

	"accountd/config"

	"github.com/labstack/echo/v4"
)

const defaultCookieName = "jwt"

// CookieManager writes and clears the session cookie on HTTP responses.
type CookieManager struct {
	name   string
	secure bool
}

// NewCookieManager is the constructor for CookieManager.
func NewCookieManager(cfg *config.Config) *CookieManager {
	name := defaultCookieName
	secure := false
	if cfg != nil && cfg.Auth != nil {
		if cfg.Auth.CookieName != "" {
			name = cfg.Auth.CookieName
		}
		secure = cfg.Auth.CookieSecure
	}

	return &CookieManager{name: name, secure: secure}
}

// Name returns the session cookie name.
func (m *CookieManager) Name() string {
	return m.name
}

// Write sets the session cookie with the token and a max age matching the
// token's lifetime, so the browser drops the cookie when the token expires.
func (m *CookieManager) Write(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     m.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite(),
	})
}

// Clear overwrites the session cookie with an empty value and an expiry in
// the past, which makes the browser discard it immediately.
func (m *CookieManager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite(),
	})
}

// Read returns the session token carried by the request, or an empty string
// when the cookie is absent.
func (m *CookieManager) Read(c echo.Context) string {
	cookie, err := c.Cookie(m.name)
	if err != nil {
		return ""
	}

	return cookie.Value
}

// SameSite=None requires Secure; fall back to Lax on plain HTTP so local
// development still gets the cookie.
func (m *CookieManager) sameSite() http.SameSite {
	if m.secure {
		return http.SameSiteNoneMode
	}

	return http.SameSiteLaxMode
}
