package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the signed payload: the principal id plus registered claims
type TokenClaims struct {
	jwt.RegisteredClaims
	ID string `json:"id"`
}

// PrincipalID returns the id of the principal the token was issued for
func (c *TokenClaims) PrincipalID() string {
	return c.ID
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
