package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12

	MinPasswordLength = 6

	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must have at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must have at most %d bytes", maxPasswordBytes)
)

// HashPassword returns the bcrypt hash of an account password.
func HashPassword(password string) (string, error) {
	switch {
	case len([]rune(password)) < MinPasswordLength:
		return "", ErrPasswordTooShort
	case len(password) > maxPasswordBytes:
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. Any failure,
// including a malformed hash, counts as a mismatch.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
