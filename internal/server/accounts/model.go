// Package accounts implements email/password account management for the
// identity API: sign-up, authentication, deletion and password resets.
package accounts

import (
	"errors"
	"time"
)

// MinPasswordLen is the weakest password the provider accepts.
const MinPasswordLen = 6

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("account not found")
)

type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
