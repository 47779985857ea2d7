package auth_test

import (
	"strings"
	"testing"

	auth "github.com/goliatone/go-blog-auth"
	"github.com/stretchr/testify/assert"
)

func TestSignupPayload_Validate(t *testing.T) {
	valid := auth.SignupPayload{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}

	tests := []struct {
		name   string
		mutate func(p *auth.SignupPayload)
		field  string
	}{
		{name: "valid", mutate: func(p *auth.SignupPayload) {}},
		{name: "short username", mutate: func(p *auth.SignupPayload) { p.Username = "al" }, field: "username"},
		{name: "missing email", mutate: func(p *auth.SignupPayload) { p.Email = "" }, field: "email"},
		{name: "bad email", mutate: func(p *auth.SignupPayload) { p.Email = "alice-at-example" }, field: "email"},
		{name: "short password", mutate: func(p *auth.SignupPayload) { p.Password = "short" }, field: "password"},
		{name: "password over 72 bytes", mutate: func(p *auth.SignupPayload) { p.Password = strings.Repeat("é", 40) }, field: "password"},
		{name: "padded email", mutate: func(p *auth.SignupPayload) { p.Email = " Alice@example.com " }},
		{name: "padded short username", mutate: func(p *auth.SignupPayload) { p.Username = " al " }, field: "username"},
		{name: "missing confirmation", mutate: func(p *auth.SignupPayload) { p.ConfirmPassword = "" }, field: "confirmPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := valid
			tt.mutate(&payload)

			err := payload.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			fields := auth.ValidationFields(auth.NewValidationError(err))
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestLoginPayload_Validate(t *testing.T) {
	assert.NoError(t, auth.LoginPayload{Email: "a@example.com", Password: "x"}.Validate())
	assert.NoError(t, auth.LoginPayload{Email: " A@example.com\t", Password: "x"}.Validate())
	assert.Error(t, auth.LoginPayload{Email: "a@example.com"}.Validate())
	assert.Error(t, auth.LoginPayload{Password: "x"}.Validate())
}

func TestChangePasswordPayload_Validate(t *testing.T) {
	assert.NoError(t, auth.ChangePasswordPayload{CurrentPassword: "x", NewPassword: "password123"}.Validate())
	assert.Error(t, auth.ChangePasswordPayload{CurrentPassword: "x", NewPassword: "short"}.Validate())
	assert.NoError(t, auth.ChangePasswordPayload{CurrentPassword: "x", NewPassword: strings.Repeat("a", auth.MaxPasswordBytes)}.Validate())
	assert.Error(t, auth.ChangePasswordPayload{CurrentPassword: "x", NewPassword: strings.Repeat("a", auth.MaxPasswordBytes+1)}.Validate())
	assert.Error(t, auth.ChangePasswordPayload{NewPassword: "password123"}.Validate())
}

func TestProfilePayload(t *testing.T) {
	assert.True(t, auth.ProfilePayload{}.IsEmpty())
	assert.NoError(t, auth.ProfilePayload{}.Validate())

	payload := auth.ProfilePayload{Twitter: strPtr("https://twitter.com/alice")}
	assert.False(t, payload.IsEmpty())
	assert.NoError(t, payload.Validate())

	bad := auth.ProfilePayload{Avatar: strPtr("not a url")}
	err := bad.Validate()
	assert.Error(t, err)
	assert.Contains(t, auth.ValidationFields(auth.NewValidationError(err)), "avatar")
}

func TestNewValidationError(t *testing.T) {
	err := auth.NewValidationError(auth.SignupPayload{}.Validate())

	assert.Equal(t, auth.TextCodeValidation, err.TextCode)
	fields := auth.ValidationFields(err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}
