package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"frontdesk/internal/platform/config"
)

// Identity is a verified external identity for the current request. The auth
// provider owns credentials and sessions; we only ever see its user id.
type Identity struct {
	ExternalID string
}

// Profile is the provider-side user record backing an Identity.
type Profile struct {
	ExternalID string
	FirstName  *string
	LastName   *string
	Email      string
}

var ErrInvalidToken = errors.New("invalid session token")

// Verifier validates provider-issued session tokens. Tokens are HS256 JWTs
// whose subject is the provider's user id.
type Verifier struct {
	secret []byte
}

func NewVerifier(cfg config.IdentityConfig) *Verifier {
	return &Verifier{secret: []byte(cfg.JWTSecret)}
}

func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{ExternalID: claims.Subject}, nil
}
