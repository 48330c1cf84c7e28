package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"accountd/config"
	domainerrors "accountd/internal/domain/errors"
	"accountd/internal/domain/service"
)

// jwtService implements SessionTokenService with HMAC-signed JWTs.
// Sessions are fully stateless: there is no server-side revocation list, a
// token is valid exactly when its signature checks out and it has not expired.
type jwtService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.SessionTokenService, error) {
	if cfg.SecretKey.Session == "" {
		return nil, errors.New("session secret must be provided")
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Session),
		ttl:    cfg.Auth.SessionTTL,
	}, nil
}

// Issue creates a signed session token for the given account ID.
func (s *jwtService) Issue(accountID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": accountID.String(),     // Subject (who the token is for)
		"iat": now.Unix(),             // Issued At
		"exp": now.Add(s.ttl).Unix(),  // Expiration Time
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return signed, nil
}

// Verify checks signature and expiry and returns the bound account ID.
func (s *jwtService) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, domainerrors.ErrInvalidSession.WrapMessage("session token rejected")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, domainerrors.ErrInvalidSession.WrapMessage("unexpected claims type")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, domainerrors.ErrInvalidSession.WrapMessage("subject missing from token")
	}

	accountID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domainerrors.ErrInvalidSession.WrapMessage("malformed subject in token")
	}

	return accountID, nil
}

// TTL returns the configured session lifetime.
func (s *jwtService) TTL() time.Duration {
	return s.ttl
}
