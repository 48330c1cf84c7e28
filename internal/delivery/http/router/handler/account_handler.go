// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"accountd/internal/delivery/http/middleware"
	"accountd/internal/delivery/http/response"
	"accountd/internal/delivery/http/session"
	domainerrors "accountd/internal/domain/errors"
	"accountd/internal/domain/service"
	"accountd/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	uc       usecase.AccountUsecase
	tokenSvc service.SessionTokenService
	cookies  *session.CookieManager
	logger   *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(
	uc usecase.AccountUsecase,
	tokenSvc service.SessionTokenService,
	cookies *session.CookieManager,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		uc:       uc,
		tokenSvc: tokenSvc,
		cookies:  cookies,
		logger:   logger,
	}
}

// Register handles the account registration request. On success the response
// carries the public profile and a fresh session cookie, so a new account is
// signed in immediately.
func (h *AccountHandler) Register(c echo.Context) error {
	var input *usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrInvalidAccountData.WrapMessage("malformed registration body")
	}
	if err := c.Validate(input); err != nil {
		return domainerrors.ErrInvalidAccountData.WrapMessage("invalid registration fields")
	}

	profile, err := h.uc.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.startSession(c, profile.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.Data(c, http.StatusCreated, profile)
}

// Authenticate handles the credential login request.
func (h *AccountHandler) Authenticate(c echo.Context) error {
	var input *usecase.AuthenticateInput
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrInvalidAccountData.WrapMessage("malformed login body")
	}
	if err := c.Validate(input); err != nil {
		return domainerrors.ErrInvalidAccountData.WrapMessage("invalid login fields")
	}

	profile, err := h.uc.Authenticate(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.startSession(c, profile.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.Data(c, http.StatusCreated, profile)
}

// Logout clears the session cookie. It never fails and touches no account
// state; verification of the outgoing session is pointless since the reply is
// identical either way.
func (h *AccountHandler) Logout(c echo.Context) error {
	h.cookies.Clear(c)

	return response.Message(c, http.StatusOK, "User logged out")
}

// GetProfile returns the profile of the account bound to the session.
func (h *AccountHandler) GetProfile(c echo.Context) error {
	accountID, err := h.sessionAccountID(c)
	if err != nil {
		return errors.WithStack(err)
	}

	profile, err := h.uc.GetProfile(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Data(c, http.StatusOK, profile)
}

// UpdateProfile applies a partial update to the session's account.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	accountID, err := h.sessionAccountID(c)
	if err != nil {
		return errors.WithStack(err)
	}

	var patch *usecase.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return domainerrors.ErrInvalidAccountData.WrapMessage("malformed profile patch")
	}
	if err := c.Validate(patch); err != nil {
		return domainerrors.ErrInvalidAccountData.WrapMessage("invalid profile patch fields")
	}

	profile, err := h.uc.UpdateProfile(c.Request().Context(), accountID, patch)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Data(c, http.StatusOK, profile)
}

// startSession mints a session token for the account and sets it as a cookie.
func (h *AccountHandler) startSession(c echo.Context, accountID uuid.UUID) error {
	token, err := h.tokenSvc.Issue(accountID)
	if err != nil {
		return errors.Wrap(err, "failed to issue session token")
	}

	h.cookies.Write(c, token, h.tokenSvc.TTL())

	return nil
}

// sessionAccountID reads the account ID placed on the context by the auth
// middleware.
func (h *AccountHandler) sessionAccountID(c echo.Context) (uuid.UUID, error) {
	accountID, ok := c.Get(middleware.ContextKeyAccountID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domainerrors.ErrInvalidSession.WrapMessage("no account bound to request")
	}

	return accountID, nil
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Data(c, http.StatusOK, map[string]string{"status": "ok"})
}
