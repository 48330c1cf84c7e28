package middleware

import (
	"accountd/internal/delivery/http/session"
	domainerrors "accountd/internal/domain/errors"
	"accountd/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ContextKeyAccountID is the echo context key under which the authenticated
// account ID is stored for handlers.
const ContextKeyAccountID = "accountID"

// AuthMiddleware gates routes behind a valid session cookie.
type AuthMiddleware struct {
	tokenSvc service.SessionTokenService
	cookies  *session.CookieManager
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.SessionTokenService, cookies *session.CookieManager) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, cookies: cookies}
}

// Authenticate resolves the session cookie to an account ID and stores it on
// the context. A missing, malformed or expired token fails the request with
// the same invalid-session error.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := m.cookies.Read(c)
		if token == "" {
			return domainerrors.ErrInvalidSession.WrapMessage("session cookie missing")
		}

		accountID, err := m.tokenSvc.Verify(token)
		if err != nil {
			return err
		}

		c.Set(ContextKeyAccountID, accountID)

		return next(c)
	}
}
