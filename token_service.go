package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-blog-auth/middleware/jwtware"
	"github.com/goliatone/go-errors"
)

// DefaultTokenExpiration is the lifetime of issued tokens
const DefaultTokenExpiration = 24 * time.Hour

// TokenService mints and verifies signed, time limited tokens
type TokenService interface {
	Issue(principalID string) (string, error)
	IssueWithTTL(principalID string, ttl time.Duration) (string, error)
	Verify(token string) (*TokenClaims, error)
	Validate(token string) (jwtware.TokenClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration time.Duration
	issuer          string
	logger          Logger
	now             func() time.Time
}

// NewTokenService creates a new TokenService. It fails with ErrMissingSigningKey
// when signingKey is empty.
func NewTokenService(signingKey []byte, tokenExpiration time.Duration, issuer string, logger Logger) (*TokenServiceImpl, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}

	return &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		logger:          resolveLogger(logger),
		now:             time.Now,
	}, nil
}

// NewTokenServiceFromConfig creates a TokenService from a Config
func NewTokenServiceFromConfig(cfg Config, logger Logger) (*TokenServiceImpl, error) {
	return NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetTokenExpiration(), cfg.GetIssuer(), logger)
}

// Issue creates a token for principalID with the default expiration
func (ts *TokenServiceImpl) Issue(principalID string) (string, error) {
	return ts.IssueWithTTL(principalID, ts.tokenExpiration)
}

// IssueWithTTL creates a token for principalID that expires after ttl
func (ts *TokenServiceImpl) IssueWithTTL(principalID string, ttl time.Duration) (string, error) {
	if principalID == "" {
		return "", errors.New("principal id must not be empty", errors.CategoryInternal)
	}

	now := ts.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		ID: principalID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Verify parses and validates a token string, returning its claims
func (ts *TokenServiceImpl) Verify(tokenString string) (*TokenClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, cloneWith(ErrTokenMalformed, map[string]any{"cause": err.Error()})
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.ID == "" {
		ts.logger.Error("token service could not decode claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// Validate adapts Verify to the jwtware.TokenValidator contract
func (ts *TokenServiceImpl) Validate(tokenString string) (jwtware.TokenClaims, error) {
	claims, err := ts.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
