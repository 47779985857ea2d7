package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeEmptyPassword          = "EMPTY_PASSWORD"
	TextCodePasswordTooLong        = "PASSWORD_TOO_LONG"
	TextCodeInvalidCreds           = "INVALID_CREDENTIALS"
	TextCodePasswordMismatch       = "PASSWORDS_DO_NOT_MATCH"
	TextCodePrincipalExists        = "PRINCIPAL_EXISTS"
	TextCodePrincipalNotFound      = "PRINCIPAL_NOT_FOUND"
	TextCodeNoToken                = "TOKEN_NOT_FOUND"
	TextCodeTokenExpired           = "TOKEN_EXPIRED"
	TextCodeTokenMalformed         = "TOKEN_MALFORMED"
	TextCodeTokenPrincipalNotFound = "TOKEN_PRINCIPAL_NOT_FOUND"
	TextCodeUnauthenticated        = "UNAUTHENTICATED"
	TextCodeForbidden              = "FORBIDDEN"
	TextCodePrincipalMissing       = "PRINCIPAL_MISSING"
	TextCodeMissingSigningKey      = "MISSING_SIGNING_KEY"
	TextCodeDataParseError         = "DATA_PARSE_ERROR"
	TextCodeValidation             = "VALIDATION_ERROR"
)

// ErrNoEmptyString is returned when hashing an empty secret
var ErrNoEmptyString = errors.New("password can not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrPasswordTooLong is returned when hashing a secret longer than bcrypt accepts
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes", errors.CategoryValidation).
	WithTextCode(TextCodePasswordTooLong).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when the secret does not match the stored hash
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrPasswordsDoNotMatch is returned when password and confirmation differ
var ErrPasswordsDoNotMatch = errors.New("passwords do not match", errors.CategoryValidation).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeBadRequest)

// ErrPrincipalExists is returned when email or username is already taken
var ErrPrincipalExists = errors.New("principal already exists", errors.CategoryConflict).
	WithTextCode(TextCodePrincipalExists).
	WithCode(errors.CodeBadRequest)

// ErrPrincipalNotFound is the not found signal of the principal repository
var ErrPrincipalNotFound = errors.New("principal not found", errors.CategoryNotFound).
	WithTextCode(TextCodePrincipalNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoToken is returned when a request carries no token
var ErrNoToken = errors.New("no authentication token found", errors.CategoryAuth).
	WithTextCode(TextCodeNoToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens past their expiry
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail signature or payload checks
var ErrTokenMalformed = errors.New("token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenPrincipalNotFound is returned when a valid token names a principal that is gone
var ErrTokenPrincipalNotFound = errors.New("principal associated with the token not found", errors.CategoryAuth).
	WithTextCode(TextCodeTokenPrincipalNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthenticated is the single shape every identity rejection is rendered as
var ErrUnauthenticated = errors.New("please authenticate", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrPrincipalMissing is returned when the access policy runs without a resolved principal
var ErrPrincipalMissing = errors.New("access policy evaluated without a principal", errors.CategoryInternal).
	WithTextCode(TextCodePrincipalMissing).
	WithCode(errors.CodeInternal)

// ErrMissingSigningKey is returned at startup when no signing key is configured
var ErrMissingSigningKey = errors.New("token signing key is not configured", errors.CategoryInternal).
	WithTextCode(TextCodeMissingSigningKey).
	WithCode(errors.CodeInternal)

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryBadInput).
	WithTextCode(TextCodeDataParseError).
	WithCode(errors.CodeBadRequest)

// NewPermissionError builds a PermissionError carrying an operation specific message
func NewPermissionError(op Operation, resource string) *errors.Error {
	return errors.New(op.deniedMessage(resource), errors.CategoryAuthz).
		WithTextCode(TextCodeForbidden).
		WithCode(errors.CodeForbidden).
		WithMetadata(map[string]any{
			"operation": string(op),
			"resource":  resource,
		})
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsPrincipalNotFound reports whether err is the repository not found signal
func IsPrincipalNotFound(err error) bool {
	return hasTextCode(err, TextCodePrincipalNotFound)
}

// IsIdentityRejection reports whether err belongs to the identity resolver
// rejection path and must be rendered as ErrUnauthenticated.
func IsIdentityRejection(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryAuth
}

func hasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

func cloneWith(base *errors.Error, meta map[string]any) *errors.Error {
	clone := base.Clone()
	if clone == nil {
		clone = base
	}
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}
	return clone
}
