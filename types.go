package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-blog-auth/middleware/jwtware"
)

// Logger is the minimal logging surface used across the package.
// Arguments after the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() time.Duration
	GetTokenLookup() string
	GetAuthScheme() string
	GetCookieName() string
	GetIssuer() string
	GetPasswordCost() int
	GetUseHashid() bool
}

// PasswordHasher turns secrets into stored hashes and checks secrets against them
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
	Verify(password, hash string) bool
}

// Authenticator holds the session flows exposed to the HTTP layer
type Authenticator interface {
	Signup(ctx context.Context, payload SignupPayload) (*Principal, error)
	Login(ctx context.Context, payload LoginPayload) (*LoginResult, error)
	ChangePassword(ctx context.Context, principalID string, payload ChangePasswordPayload) error
	UpdateProfile(ctx context.Context, principalID string, payload ProfilePayload) (*Principal, error)
	PrincipalFromToken(ctx context.Context, token string) (*Principal, error)
	ResolvePrincipal(ctx context.Context, claims jwtware.TokenClaims) (*Principal, error)
	TokenService() TokenService
	ListPrincipals(ctx context.Context) ([]*Principal, error)
	GetPrincipal(ctx context.Context, id string) (*Principal, error)
	DeletePrincipal(ctx context.Context, actor *Principal, id string) error
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] AUTH " + format(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] AUTH " + format(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] AUTH " + format(msg, args...))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] AUTH " + format(msg, args...))
}

func format(msg string, args ...any) string {
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			msg += fmt.Sprintf(" %v=%v", args[i], args[i+1])
		} else {
			msg += fmt.Sprintf(" %v", args[i])
		}
	}
	return newline(msg)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func resolveLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
