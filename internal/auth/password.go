// Package auth hashes passwords and issues the bearer tokens the API accepts.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password length limits in bytes; bcrypt ignores anything past 72
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	// ErrWeakPassword is returned for passwords outside the length limits
	ErrWeakPassword = errors.New("password must be between 8 and 72 bytes")
	// ErrInvalidCredentials is returned when a password does not match
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password with a stored hash
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return err
}
