// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the persisted user identity. The ID is assigned by the store at
// creation time and never changes; Email is unique across all accounts.
type Account struct {
	ID           uuid.UUID // Opaque unique identifier, immutable after creation.
	Name         string    // Display name, mutable via profile update.
	Email        string    // Login identifier, stored case-sensitive, unique.
	PasswordHash string    // bcrypt hash of the password. Never the plaintext, never serialized.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification.
}
