package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medibook/medibook/internal/platform/httperr"
)

// Claims is the payload embedded in issued bearer tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenIssuer signs and verifies HS256 bearer tokens carrying an account
// identifier and role.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// DefaultTokenTTL matches the platform's 30-day credential lifetime.
const DefaultTokenTTL = 30 * 24 * time.Hour

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given account id and role.
func (t *TokenIssuer) Issue(accountID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses and validates a token string, returning its claims.
func (t *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, httperr.Unauthenticatedf("invalid token")
	}
	if claims.Subject == "" {
		return nil, httperr.Unauthenticatedf("invalid token")
	}
	return claims, nil
}
