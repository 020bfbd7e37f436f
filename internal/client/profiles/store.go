// Package profiles defines the profile store gateway: application user
// profiles keyed by provider uid, and the username reservation index that
// backs the global uniqueness constraint.
package profiles

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("profile document not found")

	// ErrAlreadyExists indicates a create-only write lost to an existing
	// document. For reservations this is the authoritative "username taken"
	// signal.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrUnavailable indicates the store could not be reached.
	ErrUnavailable = errors.New("profile store unavailable")
)

// Profile is the user profile document stored under the provider uid.
type Profile struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Reservation is the uniqueness claim on a username. Created once at
// registration, never mutated, never deleted.
type Reservation struct {
	Username string `json:"-"`
	UID      string `json:"uid"`
}

// Store is the capability set the session manager consumes.
//
// Creates are create-only: they fail with ErrAlreadyExists instead of
// overwriting, which is what closes the registration race on usernames.
type Store interface {
	// Get fetches the profile document for uid.
	Get(ctx context.Context, uid string) (*Profile, error)

	// Create writes a new profile document for uid.
	Create(ctx context.Context, uid string, p *Profile) error

	// Delete removes the profile document for uid. Deleting an absent
	// document is not an error. Only the registration rollback uses this;
	// established profiles are never deleted.
	Delete(ctx context.Context, uid string) error

	// FindByUsername resolves a username to its profile. When duplicates
	// exist (an already-corrupt state) the first match in deterministic
	// store order is returned.
	FindByUsername(ctx context.Context, username string) (string, *Profile, error)

	// CreateReservation claims username for uid.
	CreateReservation(ctx context.Context, username, uid string) error

	// GetReservation fetches the reservation for username, or ErrNotFound.
	GetReservation(ctx context.Context, username string) (*Reservation, error)
}

// TokenSource supplies access tokens for authenticated store writes. The
// identity gateway implements it.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshSession(ctx context.Context) error
}
