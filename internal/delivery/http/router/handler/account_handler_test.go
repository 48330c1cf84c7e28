package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"accountd/config"
	"accountd/internal/delivery/http/middleware"
	"accountd/internal/delivery/http/session"
	"accountd/internal/delivery/http/validator"
	domainerrors "accountd/internal/domain/errors"
	mockSvc "accountd/internal/mocks/service"
	mockUsecase "accountd/internal/mocks/usecase"
	"accountd/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type handlerFixtures struct {
	handler  *AccountHandler
	uc       *mockUsecase.MockAccountUsecase
	tokenSvc *mockSvc.MockSessionTokenService
	cookies  *session.CookieManager
	echo     *echo.Echo
}

func createTestAccountHandler(t *testing.T) handlerFixtures {
	t.Helper()

	uc := mockUsecase.NewMockAccountUsecase(t)
	tokenSvc := mockSvc.NewMockSessionTokenService(t)
	cookies := session.NewCookieManager(&config.Config{
		Auth: &config.AuthConfig{CookieName: "jwt"},
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	e.Validator = validator.New()

	return handlerFixtures{
		handler:  NewAccountHandler(uc, tokenSvc, cookies, logger),
		uc:       uc,
		tokenSvc: tokenSvc,
		cookies:  cookies,
		echo:     e,
	}
}

func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	res := rec.Result()
	defer res.Body.Close()

	for _, cookie := range res.Cookies() {
		if cookie.Name == "jwt" {
			return cookie
		}
	}

	return nil
}

func TestAccountHandler_Register(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	profile := &usecase.Profile{ID: uuid.New(), Name: "Ann", Email: "a@x.com"}
	fixtures.uc.EXPECT().
		Register(mock.Anything, mock.AnythingOfType("*usecase.RegisterInput")).
		Return(profile, nil)
	fixtures.tokenSvc.EXPECT().Issue(profile.ID).Return("signed-token", nil)
	fixtures.tokenSvc.EXPECT().TTL().Return(30 * 24 * time.Hour)

	body := `{"name":"Ann","email":"a@x.com","password":"longenough1"}`
	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(newJSONRequest(http.MethodPost, "/api/users/", body), rec)

	require.NoError(t, fixtures.handler.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got usecase.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, *profile, got)
	assert.NotContains(t, rec.Body.String(), "password")

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie, "registration must set the session cookie")
	assert.Equal(t, "signed-token", cookie.Value)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
}

func TestAccountHandler_Register_MissingFields(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	body := `{"email":"a@x.com"}`
	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(newJSONRequest(http.MethodPost, "/api/users/", body), rec)

	err := fixtures.handler.Register(c)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidAccountData)
	assert.Nil(t, sessionCookie(t, rec))
}

func TestAccountHandler_Register_UsecaseErrorSetsNoCookie(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	fixtures.uc.EXPECT().
		Register(mock.Anything, mock.AnythingOfType("*usecase.RegisterInput")).
		Return(nil, domainerrors.ErrDuplicateAccount)

	body := `{"name":"Ann","email":"a@x.com","password":"longenough1"}`
	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(newJSONRequest(http.MethodPost, "/api/users/", body), rec)

	err := fixtures.handler.Register(c)

	assert.ErrorIs(t, err, domainerrors.ErrDuplicateAccount)
	assert.Nil(t, sessionCookie(t, rec))
}

func TestAccountHandler_Authenticate(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	profile := &usecase.Profile{ID: uuid.New(), Name: "Ann", Email: "a@x.com"}
	fixtures.uc.EXPECT().
		Authenticate(mock.Anything, mock.AnythingOfType("*usecase.AuthenticateInput")).
		Return(profile, nil)
	fixtures.tokenSvc.EXPECT().Issue(profile.ID).Return("signed-token", nil)
	fixtures.tokenSvc.EXPECT().TTL().Return(30 * 24 * time.Hour)

	body := `{"email":"a@x.com","password":"longenough1"}`
	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(newJSONRequest(http.MethodPost, "/api/users/auth", body), rec)

	require.NoError(t, fixtures.handler.Authenticate(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "signed-token", cookie.Value)
}

func TestAccountHandler_Authenticate_InvalidCredentials(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	fixtures.uc.EXPECT().
		Authenticate(mock.Anything, mock.AnythingOfType("*usecase.AuthenticateInput")).
		Return(nil, domainerrors.ErrInvalidCredentials)

	body := `{"email":"a@x.com","password":"wrong"}`
	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(newJSONRequest(http.MethodPost, "/api/users/auth", body), rec)

	err := fixtures.handler.Authenticate(c)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Nil(t, sessionCookie(t, rec))
}

func TestAccountHandler_Logout(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(newJSONRequest(http.MethodPost, "/api/users/logout", ""), rec)

	require.NoError(t, fixtures.handler.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User logged out"}`, rec.Body.String())

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie, "logout must overwrite the session cookie")
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Equal(time.Unix(0, 0)), "cleared cookie must expire in the past")
}

func TestAccountHandler_GetProfile(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	profile := &usecase.Profile{ID: uuid.New(), Name: "Ann", Email: "a@x.com"}
	fixtures.uc.EXPECT().GetProfile(mock.Anything, profile.ID).Return(profile, nil)

	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(httptest.NewRequest(http.MethodGet, "/api/users/profile", nil), rec)
	c.Set(middleware.ContextKeyAccountID, profile.ID)

	require.NoError(t, fixtures.handler.GetProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got usecase.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, *profile, got)
}

func TestAccountHandler_GetProfile_NoSessionOnContext(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(httptest.NewRequest(http.MethodGet, "/api/users/profile", nil), rec)

	err := fixtures.handler.GetProfile(c)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidSession)
}

func TestAccountHandler_UpdateProfile(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	accountID := uuid.New()
	updated := &usecase.Profile{ID: accountID, Name: "Anne", Email: "a@x.com"}
	fixtures.uc.EXPECT().
		UpdateProfile(mock.Anything, accountID, mock.AnythingOfType("*usecase.ProfilePatch")).
		RunAndReturn(func(_ context.Context, _ uuid.UUID, patch *usecase.ProfilePatch) (*usecase.Profile, error) {
			assert.Equal(t, "Anne", patch.Name)
			assert.Empty(t, patch.Password)

			return updated, nil
		})

	body := `{"name":"Anne"}`
	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(newJSONRequest(http.MethodPut, "/api/users/profile", body), rec)
	c.Set(middleware.ContextKeyAccountID, accountID)

	require.NoError(t, fixtures.handler.UpdateProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got usecase.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, *updated, got)
}

func TestAccountHandler_UpdateProfile_NotFound(t *testing.T) {
	fixtures := createTestAccountHandler(t)

	accountID := uuid.New()
	fixtures.uc.EXPECT().
		UpdateProfile(mock.Anything, accountID, mock.AnythingOfType("*usecase.ProfilePatch")).
		Return(nil, domainerrors.ErrAccountNotFound)

	body := `{"name":"Anne"}`
	rec := httptest.NewRecorder()
	c := fixtures.echo.NewContext(newJSONRequest(http.MethodPut, "/api/users/profile", body), rec)
	c.Set(middleware.ContextKeyAccountID, accountID)

	err := fixtures.handler.UpdateProfile(c)

	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
