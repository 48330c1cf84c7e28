// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthenticateInput defines the data required to authenticate with credentials.
type AuthenticateInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfilePatch defines a partial profile update. An empty field means
// "keep the current value"; a non-empty password is validated and re-hashed.
type ProfilePatch struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

// --- Output DTO ---

// Profile is the public view of an account. The password hash is structurally
// absent so it can never leak into a response.
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AccountUsecase defines the interface for account-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) depends on.
type AccountUsecase interface {
	// Register creates a new account after duplicate and password checks.
	Register(ctx context.Context, input *RegisterInput) (*Profile, error)

	// Authenticate verifies credentials. Unknown email and wrong password
	// fail with the same error so accounts cannot be enumerated.
	Authenticate(ctx context.Context, input *AuthenticateInput) (*Profile, error)

	// GetProfile returns the profile for an already-authenticated account ID.
	GetProfile(ctx context.Context, accountID uuid.UUID) (*Profile, error)

	// UpdateProfile applies a partial patch and persists the result.
	UpdateProfile(ctx context.Context, accountID uuid.UUID, patch *ProfilePatch) (*Profile, error)
}
