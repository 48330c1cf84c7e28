package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"accountd/config"
	"accountd/internal/delivery/http/session"
	domainerrors "accountd/internal/domain/errors"
	mockSvc "accountd/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthMiddleware, *mockSvc.MockSessionTokenService) {
	t.Helper()

	tokenSvc := mockSvc.NewMockSessionTokenService(t)
	cookies := session.NewCookieManager(&config.Config{
		Auth: &config.AuthConfig{CookieName: "jwt"},
	})

	return NewAuthMiddleware(tokenSvc, cookies), tokenSvc
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authMiddleware, tokenSvc := newAuthFixture(t)

	accountID := uuid.New()
	tokenSvc.EXPECT().Verify("valid-token").Return(accountID, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "valid-token"})
	c := e.NewContext(req, httptest.NewRecorder())

	var seenID uuid.UUID
	next := func(c echo.Context) error {
		seenID = c.Get(ContextKeyAccountID).(uuid.UUID)

		return nil
	}

	require.NoError(t, authMiddleware.Authenticate(next)(c))
	assert.Equal(t, accountID, seenID)
}

func TestAuthMiddleware_Authenticate_MissingCookie(t *testing.T) {
	authMiddleware, _ := newAuthFixture(t)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/users/profile", nil), httptest.NewRecorder())

	nextCalled := false
	next := func(c echo.Context) error {
		nextCalled = true

		return nil
	}

	err := authMiddleware.Authenticate(next)(c)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidSession)
	assert.False(t, nextCalled)
}

func TestAuthMiddleware_Authenticate_InvalidToken(t *testing.T) {
	authMiddleware, tokenSvc := newAuthFixture(t)

	tokenSvc.EXPECT().
		Verify("tampered-token").
		Return(uuid.Nil, domainerrors.ErrInvalidSession.WrapMessage("bad signature"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "tampered-token"})
	c := e.NewContext(req, httptest.NewRecorder())

	nextCalled := false
	next := func(c echo.Context) error {
		nextCalled = true

		return nil
	}

	err := authMiddleware.Authenticate(next)(c)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidSession)
	assert.False(t, nextCalled)
}
