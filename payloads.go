package auth

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// MaxPasswordBytes is the longest secret bcrypt accepts
const MaxPasswordBytes = 72

// emailFormat checks the address shape only, no MX lookups
var emailFormat = validation.Match(regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)).
	Error("must be a valid email address")

// SignupPayload is the account creation request
type SignupPayload struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate will run validation rules. Username and email are checked
// trimmed, the way they are stored.
func (r SignupPayload) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), emailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(8, MaxPasswordBytes)),
		validation.Field(&r.ConfirmPassword, validation.Required),
	)
}

// LoginPayload is the credential exchange request
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	r.Email = strings.TrimSpace(r.Email)

	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, emailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// ChangePasswordPayload holds the current and the replacement secret
type ChangePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, MaxPasswordBytes)),
	)
}

// ProfilePayload is a partial profile update, nil fields are left untouched
type ProfilePayload struct {
	Avatar     *string `json:"avatar"`
	Facebook   *string `json:"facebook"`
	Twitter    *string `json:"twitter"`
	Instagram  *string `json:"instagram"`
	LinkedIn   *string `json:"linkedin"`
	Subscribed *bool   `json:"subscribed"`
}

// Validate will run validation rules
func (r ProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Avatar, validation.Length(0, 500), is.URL),
		validation.Field(&r.Facebook, validation.Length(0, 500), is.URL),
		validation.Field(&r.Twitter, validation.Length(0, 500), is.URL),
		validation.Field(&r.Instagram, validation.Length(0, 500), is.URL),
		validation.Field(&r.LinkedIn, validation.Length(0, 500), is.URL),
	)
}

// IsEmpty reports whether the payload changes nothing
func (r ProfilePayload) IsEmpty() bool {
	return r.Avatar == nil &&
		r.Facebook == nil &&
		r.Twitter == nil &&
		r.Instagram == nil &&
		r.LinkedIn == nil &&
		r.Subscribed == nil
}

func (r ProfilePayload) apply(p *Principal) {
	if r.Avatar != nil {
		p.Avatar = strings.TrimSpace(*r.Avatar)
	}
	if r.Facebook != nil {
		p.Facebook = strings.TrimSpace(*r.Facebook)
	}
	if r.Twitter != nil {
		p.Twitter = strings.TrimSpace(*r.Twitter)
	}
	if r.Instagram != nil {
		p.Instagram = strings.TrimSpace(*r.Instagram)
	}
	if r.LinkedIn != nil {
		p.LinkedIn = strings.TrimSpace(*r.LinkedIn)
	}
	if r.Subscribed != nil {
		p.Subscribed = *r.Subscribed
	}
}

// NewValidationError converts ozzo validation output into a ValidationError
// with the per field messages under the "errors" metadata key.
func NewValidationError(err error) *errors.Error {
	fields := map[string]string{}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				fields[field] = ferr.Error()
			}
		}
	} else if err != nil {
		fields["payload"] = err.Error()
	}

	return errors.New("invalid request payload", errors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{"errors": fields})
}

// ValidationFields returns the per field messages carried by a ValidationError
func ValidationFields(err error) map[string]string {
	var richErr *errors.Error
	if !errors.As(err, &richErr) || richErr.Metadata == nil {
		return nil
	}
	fields, _ := richErr.Metadata["errors"].(map[string]string)
	return fields
}
