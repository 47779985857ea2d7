package auth_test

import (
	"context"
	"sync"
	"testing"

	auth "github.com/goliatone/go-blog-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key"

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	mu    sync.Mutex
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Warn(message string, args ...any)  { l.record("warn", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

func (l *captureLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []string{}
	for _, c := range l.calls {
		if c.level == level {
			out = append(out, c.message)
		}
	}
	return out
}

func testOptions(t *testing.T, environ ...map[string]string) auth.Options {
	t.Helper()

	env := map[string]string{
		"BLOG_AUTH_SIGNING_KEY":   testSigningKey,
		"BLOG_AUTH_PASSWORD_COST": "4",
	}
	for _, extra := range environ {
		for k, v := range extra {
			env[k] = v
		}
	}

	opts, err := auth.LoadOptionsFrom(env)
	require.NoError(t, err)
	return opts
}

func newTestRepo(t *testing.T) auth.RepositoryManager {
	t.Helper()

	db, err := auth.OpenDatabase(auth.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := auth.NewRepositoryManager(db)
	require.NoError(t, repo.Validate())
	require.NoError(t, repo.Migrate(context.Background()))

	return repo
}

func newTestAuther(t *testing.T, repo auth.RepositoryManager, opts auth.Options) *auth.Auther {
	t.Helper()

	auther, err := auth.NewAuthenticator(repo, opts)
	require.NoError(t, err)
	return auther.WithLogger(&captureLogger{})
}

func signup(t *testing.T, auther *auth.Auther, username, email, password string) *auth.Principal {
	t.Helper()

	principal, err := auther.Signup(context.Background(), auth.SignupPayload{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	return principal
}

func textCode(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode
	}
	return ""
}

func strPtr(s string) *string {
	return &s
}
