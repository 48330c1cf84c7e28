package service

import (
	"time"

	"github.com/google/uuid"
)

// SessionTokenService mints and verifies the self-contained session tokens
// that travel in the session cookie. A session has no server-side state:
// validity is determined solely by signature and expiry at verification time.
type SessionTokenService interface {
	// Issue creates a signed token bound to the given account ID, valid for TTL.
	Issue(accountID uuid.UUID) (string, error)

	// Verify checks signature and expiry and returns the account ID the token
	// was issued for. It returns domain errors.ErrInvalidSession when the
	// token is malformed, tampered with, or expired.
	Verify(token string) (uuid.UUID, error)

	// TTL returns the configured session lifetime, also used as the cookie MaxAge.
	TTL() time.Duration
}
