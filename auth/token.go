package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "messagely/errors"
)

// Claims defines the structure of the data stored inside the JWT.
// Only the identity claim travels with the token, never the credential.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies signed session tokens. The signing secret and
// lifetime are process-wide configuration loaded once at startup; an Issuer
// is immutable after construction and safe for concurrent use.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
}

func NewIssuer(secret string, lifetime time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), lifetime: lifetime}
}

// Issue creates a signed JWT for a specific user, valid for the configured
// lifetime. Side-effect-free.
func (i *Issuer) Issue(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "messagely",
		},
	}

	// HS256 (HMAC with SHA256), signed with the server's secret key.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses and validates the signature and expiration of a token string
// and returns the embedded username. Malformed, forged and expired tokens
// all come back as the same Unauthorized error.
func (i *Issuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return "", apperrors.ErrInvalidToken
	}
	return claims.Username, nil
}
