package session

import "github.com/flixflex/flixflex/internal/client/models"

// State is the snapshot of session state published to observers. Exactly one
// live state exists per manager; observers receive copies and cannot mutate
// it.
type State struct {
	// User is the current application user, nil when unauthenticated.
	User *models.User

	// Loading is true from process start until the first provider event is
	// reconciled, and during any in-flight auth operation.
	Loading bool

	// Err is the last failure, in the package taxonomy. Cleared when an
	// operation starts and when a session-changed event resolves to an
	// authenticated user.
	Err error

	// Provisional marks a User restored from the local cache before the
	// provider's first session event. Good enough to render, not yet
	// authoritative.
	Provisional bool
}

// Authenticated reports whether a non-provisional user is present.
func (s State) Authenticated() bool {
	return s.User != nil && !s.Provisional
}
