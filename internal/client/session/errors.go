package session

import "errors"

// Failure taxonomy surfaced to the UI layer. Provider- and store-level
// errors are converted to these at the manager boundary and never escape as
// raw transport errors.
var (
	// ErrInvalidCredentials: the provider rejected an email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUsernameNotFound: no profile document matches the given username.
	ErrUsernameNotFound = errors.New("username not found")

	// ErrUsernameTaken: a reservation already exists for the username.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrProviderRejected: the identity provider refused an operation for a
	// reason other than bad credentials (weak password, email in use,
	// provider outage). The wrapped cause carries the reason.
	ErrProviderRejected = errors.New("identity provider rejected the request")

	// ErrStoreUnavailable: a profile store read or write failed.
	ErrStoreUnavailable = errors.New("profile store unavailable")

	// ErrCacheUnavailable: a local cache read or write failed. Always
	// swallowed (logged only); the cache is an optimization, not a
	// correctness dependency.
	ErrCacheUnavailable = errors.New("local session cache unavailable")

	// ErrProfileMissing: the provider reports an authenticated identity but
	// no profile document exists for it, typically an interrupted
	// registration. No user is published and the cached snapshot is left
	// untouched; the condition is surfaced here instead of silently ignored.
	ErrProfileMissing = errors.New("account has no profile")
)
