// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"accountd/config"
	deliverycontext "accountd/internal/delivery/context"
	"accountd/internal/domain/entity"
	domainerrors "accountd/internal/domain/errors"
	"accountd/internal/domain/repository"
	"accountd/internal/domain/service"
	"accountd/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultMinPasswordLength = 8

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager         repository.TransactionManager
	accountRepo       repository.AccountRepository
	hasher            service.PasswordHasher
	minPasswordLength int
	logger            *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all
// dependencies as interfaces.
func NewAccountService(
	txManager repository.TransactionManager,
	accountRepo repository.AccountRepository,
	hasher service.PasswordHasher,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.AccountUsecase {
	minPasswordLength := defaultMinPasswordLength
	if cfg != nil && cfg.Auth != nil && cfg.Auth.MinPasswordLength > 0 {
		minPasswordLength = cfg.Auth.MinPasswordLength
	}

	return &accountService{
		txManager:         txManager,
		accountRepo:       accountRepo,
		hasher:            hasher,
		minPasswordLength: minPasswordLength,
		logger:            logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to
// the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete registration process. The duplicate
// check runs before password validation: an existing email always fails with
// DuplicateAccount no matter what password was sent.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.Profile, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	var registered *entity.Account

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		_, err := accountRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrDuplicateAccount.WrapMessage("email already registered")
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrap(err, "failed to check for existing account")
		}

		if len(input.Password) < srv.minPasswordLength {
			return domainerrors.ErrWeakPassword.WrapMessage("password below minimum length")
		}

		hashedPassword, err := srv.hasher.Hash(input.Password)
		if err != nil {
			return errors.Wrap(err, "failed to hash password during registration")
		}

		newAccount := &entity.Account{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: hashedPassword,
		}

		// The store's unique index is the backstop for two registrations
		// racing past the duplicate check; Create surfaces that conflict
		// as DuplicateAccount.
		if err := accountRepo.Create(ctx, newAccount); err != nil {
			return errors.Wrap(err, "failed to create account during registration")
		}

		if newAccount.ID == uuid.Nil {
			return domainerrors.ErrInvalidAccountData.WrapMessage("store returned no usable record")
		}

		registered = newAccount

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("accountID", registered.ID))

	return toProfile(registered), nil
}

// Authenticate verifies credentials against the stored hash.
func (srv *accountService) Authenticate(ctx context.Context, input *usecase.AuthenticateInput) (*usecase.Profile, error) {
	srv.log(ctx).Debug("Starting authentication", slog.String("email", input.Email))

	account, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Same error as a wrong password: the caller must not be able to
			// tell whether the email is registered.
			srv.log(ctx).Warn("Authentication failed", slog.String("email", input.Email))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("unknown email")
		}

		return nil, errors.Wrap(err, "failed to load account for authentication")
	}

	// bcrypt comparison is CPU-bound and runs outside any transaction.
	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.log(ctx).Warn("Authentication failed", slog.String("email", input.Email))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("password mismatch")
	}

	srv.log(ctx).Debug("Authentication succeeded", slog.Any("accountID", account.ID))

	return toProfile(account), nil
}

// GetProfile returns the profile for the caller bound by an already-verified
// session. No re-authentication happens here; the auth middleware resolved
// the account ID from the session cookie.
func (srv *accountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*usecase.Profile, error) {
	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound.WrapMessage("account missing for valid session")
		}

		return nil, errors.Wrap(err, "failed to load profile")
	}

	return toProfile(account), nil
}

// UpdateProfile applies a partial patch. Empty patch fields keep the current
// value; a supplied password is validated and re-hashed. The account is
// persisted on every successful branch, password change or not.
func (srv *accountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, patch *usecase.ProfilePatch) (*usecase.Profile, error) {
	srv.log(ctx).Info("Updating profile", slog.Any("accountID", accountID))

	var updated *entity.Account

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound.WrapMessage("no account for id")
			}

			return errors.Wrap(err, "failed to load account for update")
		}

		if patch.Name != "" {
			account.Name = patch.Name
		}
		if patch.Email != "" {
			account.Email = patch.Email
		}

		if patch.Password != "" {
			if len(patch.Password) < srv.minPasswordLength {
				return domainerrors.ErrWeakPassword.WrapMessage("password below minimum length")
			}

			hashedPassword, err := srv.hasher.Hash(patch.Password)
			if err != nil {
				return errors.Wrap(err, "failed to hash password during update")
			}
			account.PasswordHash = hashedPassword
		}

		// Save unconditionally: a name/email-only patch must persist too.
		// An email collision surfaces from Save as DuplicateAccount via the
		// store's unique index.
		if err := accountRepo.Save(ctx, account); err != nil {
			return errors.Wrap(err, "failed to save account during update")
		}

		updated = account

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Profile update failed", slog.Any("accountID", accountID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute profile update transaction")
	}

	srv.log(ctx).Debug("Profile updated", slog.Any("accountID", updated.ID))

	return toProfile(updated), nil
}

func toProfile(account *entity.Account) *usecase.Profile {
	return &usecase.Profile{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	}
}
