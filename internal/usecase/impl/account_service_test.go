package impl

import (
	"context"
	"testing"

	"accountd/internal/domain/entity"
	domainerrors "accountd/internal/domain/errors"
	"accountd/internal/domain/repository"
	mockRepo "accountd/internal/mocks/repository"
	mockSvc "accountd/internal/mocks/service"
	"accountd/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service     usecase.AccountUsecase
	txManager   *mockRepo.MockTransactionManager
	accountRepo *mockRepo.MockAccountRepository
	hasher      *mockSvc.MockPasswordHasher
}

func createTestAccountService(t *testing.T) accountServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	accountRepo := mockRepo.NewMockAccountRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)

	service := NewAccountService(txManager, accountRepo, hasher, newTestConfig(), newDiscardLogger())

	return accountServiceFixtures{
		service:     service,
		txManager:   txManager,
		accountRepo: accountRepo,
		hasher:      hasher,
	}
}

// passThroughTx wires the transaction manager mock to run the callback against
// a factory that hands out the given account repository.
func passThroughTx(t *testing.T, txManager *mockRepo.MockTransactionManager, ctx context.Context, accountRepo *mockRepo.MockAccountRepository) {
	t.Helper()

	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.EXPECT().AccountRepo().Return(accountRepo).Maybe()

	txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(factory)
		})
}

func TestAccountService_Register_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "longenough1",
	}

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().
		FindByEmail(ctx, input.Email).
		Return(nil, repository.ErrAccountNotFound)

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	assignedID := uuid.New()
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Account")).
		Run(func(_ context.Context, account *entity.Account) {
			account.ID = assignedID
		}).
		Return(nil)

	profile, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, assignedID, profile.ID)
	assert.Equal(t, "Ann", profile.Name)
	assert.Equal(t, "a@x.com", profile.Email)
}

func TestAccountService_Register_BoundaryPasswordLength(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "exactly8", // exactly the minimum
	}

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().
		FindByEmail(ctx, input.Email).
		Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Account")).
		Run(func(_ context.Context, account *entity.Account) {
			account.ID = uuid.New()
		}).
		Return(nil)

	_, err := fx.service.Register(ctx, input)

	assert.NoError(t, err)
}

func TestAccountService_Register_DuplicateEmailWinsOverWeakPassword(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	// The password is too short, but the duplicate check runs first and must
	// decide the outcome.
	input := &usecase.RegisterInput{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "short",
	}

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().
		FindByEmail(ctx, input.Email).
		Return(&entity.Account{ID: uuid.New(), Email: input.Email}, nil)

	profile, err := fx.service.Register(ctx, input)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateAccount)
}

func TestAccountService_Register_WeakPassword(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "seven77", // seven characters
	}

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().
		FindByEmail(ctx, input.Email).
		Return(nil, repository.ErrAccountNotFound)

	profile, err := fx.service.Register(ctx, input)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrWeakPassword)
}

func TestAccountService_Register_StoreReturnsNoRecord(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "longenough1",
	}

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().
		FindByEmail(ctx, input.Email).
		Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	// Create succeeds but never assigns an ID.
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Account")).
		Return(nil)

	profile, err := fx.service.Register(ctx, input)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAccountData)
}

func TestAccountService_Register_UniqueIndexRaceSurfacesAsDuplicate(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "longenough1",
	}

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().
		FindByEmail(ctx, input.Email).
		Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	// A concurrent registration slipped in between the check and the insert;
	// the store's unique index rejects the second insert.
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Account")).
		Return(errors.Wrap(domainerrors.ErrDuplicateAccount, "email already exists"))

	profile, err := fx.service.Register(ctx, input)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateAccount)
}

func TestAccountService_Authenticate_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{
		ID:           uuid.New(),
		Name:         "Ann",
		Email:        "a@x.com",
		PasswordHash: "stored_hash",
	}

	fx.accountRepo.EXPECT().
		FindByEmail(ctx, account.Email).
		Return(account, nil)
	fx.hasher.EXPECT().Check("longenough1", "stored_hash").Return(true)

	profile, err := fx.service.Authenticate(ctx, &usecase.AuthenticateInput{
		Email:    account.Email,
		Password: "longenough1",
	})

	require.NoError(t, err)
	assert.Equal(t, account.ID, profile.ID)
	assert.Equal(t, account.Email, profile.Email)
}

func TestAccountService_Authenticate_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()

	// Unknown email.
	fxUnknown := createTestAccountService(t)
	fxUnknown.accountRepo.EXPECT().
		FindByEmail(ctx, "nobody@x.com").
		Return(nil, repository.ErrAccountNotFound)

	_, unknownErr := fxUnknown.service.Authenticate(ctx, &usecase.AuthenticateInput{
		Email:    "nobody@x.com",
		Password: "whatever123",
	})

	// Known email, wrong password.
	fxWrong := createTestAccountService(t)
	fxWrong.accountRepo.EXPECT().
		FindByEmail(ctx, "a@x.com").
		Return(&entity.Account{ID: uuid.New(), Email: "a@x.com", PasswordHash: "stored_hash"}, nil)
	fxWrong.hasher.EXPECT().Check("wrong", "stored_hash").Return(false)

	_, wrongErr := fxWrong.service.Authenticate(ctx, &usecase.AuthenticateInput{
		Email:    "a@x.com",
		Password: "wrong",
	})

	// Both branches must surface the exact same error value, message and
	// status so callers cannot probe which emails are registered.
	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.ErrorIs(t, unknownErr, domainerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, domainerrors.ErrInvalidCredentials)

	var unknownApp, wrongApp domainerrors.AppError
	require.True(t, errors.As(unknownErr, &unknownApp))
	require.True(t, errors.As(wrongErr, &wrongApp))
	assert.Equal(t, unknownApp.HTTPCode(), wrongApp.HTTPCode())
	assert.Equal(t, unknownApp.Message(), wrongApp.Message())
	assert.Equal(t, "Invalid email or password", wrongApp.Message())
}

func TestAccountService_GetProfile_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{
		ID:           uuid.New(),
		Name:         "Ann",
		Email:        "a@x.com",
		PasswordHash: "stored_hash",
	}

	fx.accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)

	profile, err := fx.service.GetProfile(ctx, account.ID)

	require.NoError(t, err)
	assert.Equal(t, account.Name, profile.Name)
	assert.Equal(t, account.Email, profile.Email)
}

func TestAccountService_GetProfile_NotFound(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	missingID := uuid.New()

	fx.accountRepo.EXPECT().FindByID(ctx, missingID).Return(nil, repository.ErrAccountNotFound)

	profile, err := fx.service.GetProfile(ctx, missingID)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func TestAccountService_UpdateProfile_NameOnlyPatchPersists(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{
		ID:           uuid.New(),
		Name:         "Ann",
		Email:        "a@x.com",
		PasswordHash: "stored_hash",
	}

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)

	var saved *entity.Account
	txRepo.EXPECT().
		Save(ctx, mock.AnythingOfType("*entity.Account")).
		Run(func(_ context.Context, a *entity.Account) {
			saved = a
		}).
		Return(nil)

	profile, err := fx.service.UpdateProfile(ctx, account.ID, &usecase.ProfilePatch{Name: "Anne"})

	require.NoError(t, err)
	// A patch without a password must still reach the store.
	require.NotNil(t, saved)
	assert.Equal(t, "Anne", saved.Name)
	assert.Equal(t, "a@x.com", saved.Email)
	assert.Equal(t, "stored_hash", saved.PasswordHash)
	assert.Equal(t, "Anne", profile.Name)
	assert.Equal(t, "a@x.com", profile.Email)
}

func TestAccountService_UpdateProfile_WeakPasswordKeepsStoredHash(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{
		ID:           uuid.New(),
		Name:         "Ann",
		Email:        "a@x.com",
		PasswordHash: "stored_hash",
	}

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
	// No Save expectation: a rejected patch must not touch the store.

	profile, err := fx.service.UpdateProfile(ctx, account.ID, &usecase.ProfilePatch{Password: "short"})

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrWeakPassword)
	assert.Equal(t, "stored_hash", account.PasswordHash)
}

func TestAccountService_UpdateProfile_PasswordPatchRehashes(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{
		ID:           uuid.New(),
		Name:         "Ann",
		Email:        "a@x.com",
		PasswordHash: "stored_hash",
	}

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
	fx.hasher.EXPECT().Hash("newlongenough1").Return("new_hash", nil)

	var saved *entity.Account
	txRepo.EXPECT().
		Save(ctx, mock.AnythingOfType("*entity.Account")).
		Run(func(_ context.Context, a *entity.Account) {
			saved = a
		}).
		Return(nil)

	_, err := fx.service.UpdateProfile(ctx, account.ID, &usecase.ProfilePatch{Password: "newlongenough1"})

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "new_hash", saved.PasswordHash)
}

func TestAccountService_UpdateProfile_AccountNotFound(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	missingID := uuid.New()

	txRepo := mockRepo.NewMockAccountRepository(t)
	passThroughTx(t, fx.txManager, ctx, txRepo)

	txRepo.EXPECT().FindByID(ctx, missingID).Return(nil, repository.ErrAccountNotFound)

	profile, err := fx.service.UpdateProfile(ctx, missingID, &usecase.ProfilePatch{Name: "Anne"})

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}
