package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"roomapi/internal/domain/models"
)

const tokenType = "api_access"

type SessionClaims struct {
	DisplayName string `json:"name,omitempty"`
	TokenType   string `json:"type"`
	jwt.RegisteredClaims
}

// NewToken signs the stored token record into its portable form. Any
// byte-level change to the payload invalidates the signature.
func NewToken(token models.SessionToken, secret []byte) (string, error) {
	if token.ID == "" || token.Owner == "" {
		return "", errors.New("not enough data for token generation")
	}

	claims := SessionClaims{
		DisplayName: token.DisplayName,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        token.ID,
			Subject:   token.Owner,
			IssuedAt:  jwt.NewNumericDate(token.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(token.ExpiresAt),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies the signature and decodes the claims. Expiry is not
// checked here: the auth service re-derives it from its own clock so that an
// expired token is reported as expired, not malformed.
func ParseToken(tokenString string, secret []byte) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if claims.TokenType != tokenType {
		return nil, errors.New("unexpected token type")
	}
	if claims.ID == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, errors.New("incomplete token claims")
	}

	return claims, nil
}

// ExpiresAt returns the exp claim as a time.Time.
func (c *SessionClaims) Expires() time.Time {
	return c.ExpiresAt.Time
}
