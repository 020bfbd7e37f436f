// Package identity defines the identity provider gateway: the capability
// interface the session manager consumes, and a REST implementation that
// talks to the backend identity API.
//
// The gateway owns provider session state on the device: it keeps the token
// pair, persists the refresh token through a cache.TokenStore, and emits one
// Event per auth-state change. The initial event (restored session or
// absent) is emitted from Start.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials is returned when the provider rejects an
	// email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned by CreateAccount when the email is already
	// registered.
	ErrEmailTaken = errors.New("email already in use")

	// ErrWeakPassword is returned by CreateAccount when the password fails the
	// provider policy.
	ErrWeakPassword = errors.New("password too weak")

	// ErrUnauthenticated indicates a missing, expired, or revoked session.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUnavailable indicates the provider could not be reached.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// Identity is the provider-level view of an authenticated account. It is not
// an application user: that requires a profile document as well.
type Identity struct {
	UID   string
	Email string
}

// Event is a session-changed notification. A nil Identity means signed out.
type Event struct {
	Identity *Identity
}

// Provider is the capability set the session manager consumes.
//
// Implementations emit an Event per auth-state transition, in order, on the
// channel returned by Events. Sends never block: when the consumer lags,
// older undelivered events may be dropped so the newest state always gets
// through. Events are the sole authority on session state; the return values
// of SignIn/CreateAccount are conveniences for callers that need the fresh
// identity synchronously.
type Provider interface {
	// Start restores a persisted session, if any, and emits the initial
	// event. When the provider cannot be reached no event is emitted and the
	// error is returned; callers may keep optimistic local state until
	// connectivity returns.
	Start(ctx context.Context) error

	// Events returns the session-changed stream. The channel is closed by
	// Close.
	Events() <-chan Event

	SignIn(ctx context.Context, email, password string) (*Identity, error)
	CreateAccount(ctx context.Context, email, password string) (*Identity, error)

	// SignOut ends the provider session. Local session state is wiped and an
	// absent event emitted even when the remote call fails; the failure is
	// still returned so callers can record it.
	SignOut(ctx context.Context) error

	// DeleteAccount removes the account identified by uid. The session must
	// still belong to that uid; implementations refuse to delete anybody
	// else. Used as the compensating step when registration fails midway.
	DeleteAccount(ctx context.Context, uid string) error

	SendPasswordReset(ctx context.Context, email string) error

	Close() error
}
