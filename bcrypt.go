package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor used for stored hashes
const DefaultPasswordCost = 10

// BcryptHasher is the PasswordHasher backed by bcrypt
type BcryptHasher struct {
	Cost int
}

var _ PasswordHasher = BcryptHasher{}

// NewBcryptHasher returns a hasher with the given cost, falling back to
// DefaultPasswordCost when the cost is outside bcrypt's range.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	return BcryptHasher{Cost: cost}
}

// HashPassword will generate a password hash
func (b BcryptHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	cost := b.Cost
	if cost == 0 {
		cost = DefaultPasswordCost
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func (b BcryptHasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (b BcryptHasher) Verify(password, hash string) bool {
	return ComparePasswordAndHash(password, hash) == nil
}

// HashPassword hashes with DefaultPasswordCost
func HashPassword(password string) (string, error) {
	return BcryptHasher{Cost: DefaultPasswordCost}.HashPassword(password)
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
