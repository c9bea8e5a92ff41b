// Package password implements the credential strength policy and the
// bcrypt-backed hashing primitives used by the auth flow.
package password

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/backend/domain"
)

// MinLength is the minimum accepted password length.
const MinLength = 8

// ValidateStrength checks the password policy. Rules run in a fixed order
// (length, uppercase, lowercase, digit, special) and the first violated
// rule determines the reported reason.
func ValidateStrength(password string) error {
	if utf8.RuneCountInString(password) < MinLength {
		return weak("password must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	switch {
	case !upper:
		return weak("password must contain at least one uppercase letter")
	case !lower:
		return weak("password must contain at least one lowercase letter")
	case !digit:
		return weak("password must contain at least one digit")
	case !special:
		return weak("password must contain at least one special character")
	}
	return nil
}

// Hash produces a salted one-way hash. The salt is embedded in the output,
// so the returned string is the only thing that needs storing.
func Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. Mismatch is a normal
// outcome, not an error.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func weak(reason string) error {
	return domain.NewError(domain.ErrCodeWeakPassword, reason)
}
