// Package models defines the client-side application data model.
package models

import (
	"encoding/json"
	"errors"
)

// MinUsernameLen is the minimum accepted username length. Shorter strings are
// never checked against the reservation index and never accepted at
// registration.
const MinUsernameLen = 3

// ErrUsernameTooShort indicates a username below MinUsernameLen.
var ErrUsernameTooShort = errors.New("username must be at least 3 characters")

// User is the authenticated identity as seen by the rest of the app.
//
// A User exists only when both the provider account and the profile document
// exist; the provider record alone is not enough to consider somebody
// logged in.
type User struct {
	// UID is the opaque provider-assigned identity. Stable and immutable.
	UID string `json:"uid"`

	// Email is the provider-verified address.
	Email string `json:"email"`

	// Username is globally unique, chosen once at registration, immutable.
	Username string `json:"username"`

	// Name is the display name. Mutable by future profile-edit features.
	Name string `json:"name"`
}

// ValidateUsername enforces the minimum length constraint. Uniqueness is the
// reservation index's job, not this function's.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLen {
		return ErrUsernameTooShort
	}
	return nil
}

// Marshal serializes the user for the local session cache.
func (u *User) Marshal() ([]byte, error) {
	return json.Marshal(u)
}

// UnmarshalUser restores a user from its cached form.
func UnmarshalUser(data []byte) (*User, error) {
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
