package auth

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/goliatone/go-errors"
)

// EnvPrefix is the prefix of every environment variable read by LoadOptions
const EnvPrefix = "BLOG_"

// Options is the environment backed Config implementation
type Options struct {
	SigningKey      string        `env:"AUTH_SIGNING_KEY"`
	SigningMethod   string        `env:"AUTH_SIGNING_METHOD" envDefault:"HS256"`
	ContextKey      string        `env:"AUTH_CONTEXT_KEY" envDefault:"principal"`
	TokenExpiration time.Duration `env:"AUTH_TOKEN_EXPIRATION" envDefault:"24h"`
	TokenLookup     string        `env:"AUTH_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme      string        `env:"AUTH_SCHEME" envDefault:"Bearer"`
	CookieName      string        `env:"AUTH_COOKIE_NAME" envDefault:"token"`
	Issuer          string        `env:"AUTH_ISSUER"`
	PasswordCost    int           `env:"AUTH_PASSWORD_COST" envDefault:"10"`
	UseHashid       bool          `env:"AUTH_USE_HASHID"`

	ListenAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string `env:"DB_DSN" envDefault:"file:blog.db?cache=shared"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"text"`
	Debug          bool   `env:"DEBUG"`
}

var _ Config = Options{}

// LoadOptions reads Options from the process environment
func LoadOptions() (Options, error) {
	return LoadOptionsFrom(nil)
}

// LoadOptionsFrom reads Options from environ, or the process environment when nil
func LoadOptionsFrom(environ map[string]string) (Options, error) {
	opts := Options{}
	if err := env.ParseWithOptions(&opts, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return opts, errors.Wrap(err, errors.CategoryBadInput, "unable to parse configuration")
	}
	return opts, nil
}

// Validate checks the options can start a server
func (o Options) Validate() error {
	if strings.TrimSpace(o.SigningKey) == "" {
		return ErrMissingSigningKey
	}

	if o.SigningMethod != "" && o.SigningMethod != "HS256" {
		return errors.New("only HS256 signing is supported", errors.CategoryValidation).
			WithMetadata(map[string]any{"signing_method": o.SigningMethod})
	}

	if o.TokenExpiration <= 0 {
		return errors.New("token expiration must be positive", errors.CategoryValidation).
			WithMetadata(map[string]any{"token_expiration": o.TokenExpiration.String()})
	}

	return nil
}

func (o Options) GetSigningKey() string {
	return o.SigningKey
}

func (o Options) GetSigningMethod() string {
	return o.SigningMethod
}

func (o Options) GetContextKey() string {
	return o.ContextKey
}

func (o Options) GetTokenExpiration() time.Duration {
	return o.TokenExpiration
}

func (o Options) GetTokenLookup() string {
	return o.TokenLookup
}

func (o Options) GetAuthScheme() string {
	return o.AuthScheme
}

func (o Options) GetCookieName() string {
	return o.CookieName
}

func (o Options) GetIssuer() string {
	return o.Issuer
}

func (o Options) GetPasswordCost() int {
	return o.PasswordCost
}

func (o Options) GetUseHashid() bool {
	return o.UseHashid
}

// CookieTransport reports whether the token lookup reads the token cookie
func CookieTransport(cfg Config) bool {
	for _, part := range strings.Split(cfg.GetTokenLookup(), ",") {
		if strings.TrimSpace(part) == "cookie:"+cfg.GetCookieName() {
			return true
		}
	}
	return false
}
