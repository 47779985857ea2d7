package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	auth "github.com/goliatone/go-blog-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPController_EndToEnd(t *testing.T) {
	srv := newTestServer(t)

	signupBody := map[string]string{
		"username":        "alice",
		"email":           "a@x.com",
		"password":        "pw123456",
		"confirmPassword": "pw123456",
	}

	resp, body := srv.do(t, fiber.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "account created", body["message"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "token")
	principalID := body["id"]

	signupBody["username"] = "alice2"
	resp, body = srv.do(t, fiber.MethodPost, "/auth/signup", signupBody)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "principal already exists", body["message"])

	resp, body = srv.do(t, fiber.MethodPost, "/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "pw123456",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, map[string]any{"id": principalID, "isAdmin": false}, body["user"])

	claims, err := srv.auther.TokenService().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, principalID, claims.PrincipalID())

	resp, body = srv.do(t, fiber.MethodPost, "/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["message"])

	resp, body = srv.do(t, fiber.MethodGet, "/users/"+principalID.(string), nil, bearer(token)...)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])

	resp, body = srv.do(t, fiber.MethodDelete, "/users/"+principalID.(string), nil, bearer(token)...)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "only administrators can delete users", body["message"])
}

func TestHTTPController_SignupValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, fiber.MethodPost, "/auth/signup", map[string]string{
		"username": "al",
		"email":    "not-an-email",
		"password": "pw",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, auth.TextCodeValidation, body["code"])

	fields, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "confirmPassword")

	resp, body = srv.do(t, fiber.MethodPost, "/auth/signup", map[string]string{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "pw123456",
		"confirmPassword": "pw654321",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, auth.TextCodePasswordMismatch, body["code"])
}

func TestHTTPController_PasswordOverBcryptLimit(t *testing.T) {
	srv := newTestServer(t)

	long := strings.Repeat("a", 80)
	resp, body := srv.do(t, fiber.MethodPost, "/auth/signup", map[string]string{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        long,
		"confirmPassword": long,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, auth.TextCodeValidation, body["code"])

	principal := signup(t, srv.auther, "alice", "alice@example.com", "pw123456")
	token, err := srv.auther.TokenService().Issue(principal.ID.String())
	require.NoError(t, err)

	resp, body = srv.do(t, fiber.MethodPut, "/auth/password", map[string]string{
		"currentPassword": "pw123456",
		"newPassword":     strings.Repeat("é", 40),
	}, bearer(token)...)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, auth.TextCodeValidation, body["code"])

	resp, _ = srv.do(t, fiber.MethodPost, "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "pw123456",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHTTPController_MalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, fiber.MethodPost, "/auth/login", "not an object")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, auth.TextCodeDataParseError, body["code"])
}

func TestHTTPController_LoginUnknownEmail(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, fiber.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "pw123456",
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, auth.TextCodePrincipalNotFound, body["code"])
}

func TestHTTPController_PasswordChange(t *testing.T) {
	srv := newTestServer(t)
	principal := signup(t, srv.auther, "alice", "alice@example.com", "pw123456")

	token, err := srv.auther.TokenService().Issue(principal.ID.String())
	require.NoError(t, err)

	resp, _ := srv.do(t, fiber.MethodPut, "/auth/password", map[string]string{
		"currentPassword": "pw123456",
		"newPassword":     "pw654321",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := srv.do(t, fiber.MethodPut, "/auth/password", map[string]string{
		"currentPassword": "wrong-password",
		"newPassword":     "pw654321",
	}, bearer(token)...)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["message"])

	resp, body = srv.do(t, fiber.MethodPut, "/auth/password", map[string]string{
		"currentPassword": "pw123456",
		"newPassword":     "pw654321",
	}, bearer(token)...)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "password updated", body["message"])

	resp, _ = srv.do(t, fiber.MethodPost, "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "pw654321",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHTTPController_Profile(t *testing.T) {
	srv := newTestServer(t)
	principal := signup(t, srv.auther, "alice", "alice@example.com", "pw123456")

	token, err := srv.auther.TokenService().Issue(principal.ID.String())
	require.NoError(t, err)

	resp, body := srv.do(t, fiber.MethodPatch, "/me", map[string]any{
		"twitter":    "https://twitter.com/alice",
		"subscribed": true,
		"isAdmin":    true,
	}, bearer(token)...)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://twitter.com/alice", body["twitter"])
	assert.Equal(t, true, body["subscribed"])
	assert.Equal(t, false, body["isAdmin"])

	resp, body = srv.do(t, fiber.MethodPatch, "/me", map[string]any{
		"avatar": "not a url",
	}, bearer(token)...)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["errors"], "avatar")

	resp, body = srv.do(t, fiber.MethodGet, "/me", nil, bearer(token)...)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "https://twitter.com/alice", body["twitter"])
}

func TestHTTPController_Administration(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	admin := signup(t, srv.auther, "root", "root@example.com", "pw123456")
	require.NoError(t, srv.repo.Principals().SetAdmin(ctx, admin.ID, true))
	alice := signup(t, srv.auther, "alice", "alice@example.com", "pw123456")
	bob := signup(t, srv.auther, "bob", "bob@example.com", "pw123456")

	token, err := srv.auther.TokenService().Issue(admin.ID.String())
	require.NoError(t, err)
	aliceToken, err := srv.auther.TokenService().Issue(alice.ID.String())
	require.NoError(t, err)

	resp, _ := srv.do(t, fiber.MethodGet, "/users", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// reads need a token only
	resp, body := srv.do(t, fiber.MethodGet, "/users", nil, bearer(aliceToken)...)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["count"])

	resp, body = srv.do(t, fiber.MethodGet, "/users/"+alice.ID.String(), nil, bearer(aliceToken)...)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice@example.com", body["email"])

	resp, body = srv.do(t, fiber.MethodGet, "/users/"+bob.ID.String(), nil, bearer(aliceToken)...)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob", body["username"])

	resp, body = srv.do(t, fiber.MethodDelete, "/users/"+bob.ID.String(), nil, bearer(aliceToken)...)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "only administrators can delete users", body["message"])

	resp, body = srv.do(t, fiber.MethodGet, "/users", nil, bearer(token)...)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["count"])

	resp, _ = srv.do(t, fiber.MethodDelete, "/users/"+alice.ID.String(), nil, bearer(token)...)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = srv.do(t, fiber.MethodGet, "/users/"+alice.ID.String(), nil, bearer(token)...)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, auth.TextCodePrincipalNotFound, body["code"])

	resp, _ = srv.do(t, fiber.MethodDelete, "/users/"+alice.ID.String(), nil, bearer(token)...)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
