package auth_test

import (
	"testing"
	"time"

	auth "github.com/goliatone/go-blog-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsFrom_Defaults(t *testing.T) {
	opts, err := auth.LoadOptionsFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "HS256", opts.GetSigningMethod())
	assert.Equal(t, "principal", opts.GetContextKey())
	assert.Equal(t, 24*time.Hour, opts.GetTokenExpiration())
	assert.Equal(t, "header:Authorization", opts.GetTokenLookup())
	assert.Equal(t, "Bearer", opts.GetAuthScheme())
	assert.Equal(t, "token", opts.GetCookieName())
	assert.Equal(t, auth.DefaultPasswordCost, opts.GetPasswordCost())
	assert.Equal(t, ":8080", opts.ListenAddr)
	assert.Equal(t, auth.DriverSQLite, opts.DatabaseDriver)
	assert.False(t, opts.GetUseHashid())

	assert.ErrorIs(t, opts.Validate(), auth.ErrMissingSigningKey)
}

func TestLoadOptionsFrom_Overrides(t *testing.T) {
	opts, err := auth.LoadOptionsFrom(map[string]string{
		"BLOG_AUTH_SIGNING_KEY":       "secret",
		"BLOG_AUTH_TOKEN_EXPIRATION":  "2h",
		"BLOG_AUTH_TOKEN_LOOKUP":      "header:Authorization,cookie:token",
		"BLOG_AUTH_ISSUER":            "blog",
		"BLOG_AUTH_USE_HASHID":        "true",
		"BLOG_DB_DRIVER":              "postgres",
		"BLOG_DB_DSN":                 "postgres://localhost/blog",
		"BLOG_LOG_FORMAT":             "json",
		"BLOG_HTTP_ADDR":              ":9090",
		"BLOG_AUTH_PASSWORD_COST":     "12",
		"UNRELATED_AUTH_SIGNING_KEY":  "ignored",
	})
	require.NoError(t, err)
	require.NoError(t, opts.Validate())

	assert.Equal(t, "secret", opts.GetSigningKey())
	assert.Equal(t, 2*time.Hour, opts.GetTokenExpiration())
	assert.Equal(t, "blog", opts.GetIssuer())
	assert.True(t, opts.GetUseHashid())
	assert.Equal(t, auth.DriverPostgres, opts.DatabaseDriver)
	assert.Equal(t, 12, opts.GetPasswordCost())
	assert.True(t, auth.CookieTransport(opts))
}

func TestLoadOptionsFrom_InvalidDuration(t *testing.T) {
	_, err := auth.LoadOptionsFrom(map[string]string{
		"BLOG_AUTH_TOKEN_EXPIRATION": "forever",
	})
	assert.Error(t, err)
}

func TestOptionsValidate(t *testing.T) {
	opts := testOptions(t)
	assert.NoError(t, opts.Validate())
	assert.False(t, auth.CookieTransport(opts))

	opts.SigningMethod = "RS256"
	assert.Error(t, opts.Validate())

	opts = testOptions(t)
	opts.TokenExpiration = 0
	assert.Error(t, opts.Validate())

	opts = testOptions(t)
	opts.SigningKey = "   "
	assert.ErrorIs(t, opts.Validate(), auth.ErrMissingSigningKey)
}
