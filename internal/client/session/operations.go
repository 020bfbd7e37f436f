package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flixflex/flixflex/internal/client/identity"
	"github.com/flixflex/flixflex/internal/client/models"
	"github.com/flixflex/flixflex/internal/client/profiles"
)

// beginOp marks an auth operation in progress: loading set, last error
// cleared.
func (m *Manager) beginOp() {
	m.update(func(s *State) {
		s.Loading = true
		s.Err = nil
	})
}

// endOp records the operation outcome. A nil err leaves the error cleared;
// the final user transition, when there is one, arrives through the
// subscription.
func (m *Manager) endOp(err error) {
	m.update(func(s *State) {
		s.Loading = false
		s.Err = err
	})
}

func (m *Manager) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

// LoginWithEmail establishes a provider session for the email/password pair.
// The actual state transition is driven by the session-changed subscription,
// not by this call returning.
func (m *Manager) LoginWithEmail(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		m.endOp(ErrInvalidCredentials)
		return ErrInvalidCredentials
	}

	m.beginOp()

	cctx, cancel := m.remoteCtx(ctx)
	defer cancel()

	_, err := m.provider.SignIn(cctx, email, password)
	err = mapSignInErr(err)
	m.endOp(err)
	return err
}

// LoginWithUsername resolves the username to an email through the profile
// store, then signs in with it.
func (m *Manager) LoginWithUsername(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		m.endOp(ErrInvalidCredentials)
		return ErrInvalidCredentials
	}

	m.beginOp()

	cctx, cancel := m.remoteCtx(ctx)
	_, profile, err := m.profiles.FindByUsername(cctx, username)
	cancel()
	if err != nil {
		err = mapLookupErr(err)
		m.endOp(err)
		return err
	}

	cctx, cancel = m.remoteCtx(ctx)
	defer cancel()
	_, err = m.provider.SignIn(cctx, profile.Email, password)
	err = mapSignInErr(err)
	m.endOp(err)
	return err
}

// Register creates a provider account, the profile document, and the
// username reservation, then signs the new user in.
//
// Ordering: availability check, provider account, profile document,
// reservation, sign-in. The reservation write is create-only and enforced
// unique by the store, so a lost race surfaces as ErrUsernameTaken no matter
// what the advisory check said. A failure after the provider account exists
// triggers a compensating account deletion; if that also fails the orphan is
// logged and left for an offline sweep.
func (m *Manager) Register(ctx context.Context, username, name, email, password string) error {
	if err := models.ValidateUsername(username); err != nil {
		m.endOp(err)
		return err
	}

	m.beginOp()

	// 1. advisory availability check
	cctx, cancel := m.remoteCtx(ctx)
	_, err := m.profiles.GetReservation(cctx, username)
	cancel()
	switch {
	case err == nil:
		m.endOp(ErrUsernameTaken)
		return ErrUsernameTaken
	case !errors.Is(err, profiles.ErrNotFound):
		err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		m.endOp(err)
		return err
	}

	// 2. provider account (authenticates the fresh account as a side effect)
	cctx, cancel = m.remoteCtx(ctx)
	id, err := m.provider.CreateAccount(cctx, email, password)
	cancel()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrProviderRejected, err)
		m.endOp(err)
		return err
	}

	// 3. profile document
	cctx, cancel = m.remoteCtx(ctx)
	err = m.profiles.Create(cctx, id.UID, &profiles.Profile{Username: username, Name: name, Email: email})
	cancel()
	if err != nil {
		m.compensate(ctx, id.UID)
		err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		m.endOp(err)
		return err
	}

	// 4. username reservation (the authoritative uniqueness claim)
	cctx, cancel = m.remoteCtx(ctx)
	err = m.profiles.CreateReservation(cctx, username, id.UID)
	cancel()
	if err != nil {
		m.compensate(ctx, id.UID)
		if errors.Is(err, profiles.ErrAlreadyExists) {
			m.endOp(ErrUsernameTaken)
			return ErrUsernameTaken
		}
		err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		m.endOp(err)
		return err
	}

	// 5. sign in; the subscription publishes the user
	cctx, cancel = m.remoteCtx(ctx)
	defer cancel()
	_, err = m.provider.SignIn(cctx, email, password)
	err = mapSignInErr(err)
	m.endOp(err)
	return err
}

// compensate rolls back a failed registration. The account is still
// authenticated at this point, so both deletions work with its own fresh
// session. The profile document goes first: once the account is gone the
// store would refuse the write, and a leftover profile with the contested
// username would shadow the winner's in FindByUsername.
func (m *Manager) compensate(ctx context.Context, uid string) {
	cctx, cancel := m.remoteCtx(ctx)
	if err := m.profiles.Delete(cctx, uid); err != nil {
		m.log.Error(ctx, "registration rollback failed, orphaned profile document", "uid", uid, "error", err)
	}
	cancel()

	cctx, cancel = m.remoteCtx(ctx)
	defer cancel()
	if err := m.provider.DeleteAccount(cctx, uid); err != nil {
		m.log.Error(ctx, "registration rollback failed, orphaned provider account", "uid", uid, "error", err)
	}
}

// CheckUsernameAvailable reports whether no reservation exists for username
// at read time. Advisory only: availability can change between the check and
// registration, and a later ErrUsernameTaken from Register is authoritative.
// Never fails outward; internal errors report unavailable. Usernames below
// the minimum length are never checked and always report available.
func (m *Manager) CheckUsernameAvailable(ctx context.Context, username string) bool {
	if len(username) < models.MinUsernameLen {
		return true
	}

	cctx, cancel := m.remoteCtx(ctx)
	defer cancel()

	_, err := m.profiles.GetReservation(cctx, username)
	switch {
	case err == nil:
		return false
	case errors.Is(err, profiles.ErrNotFound):
		return true
	default:
		m.log.Warn(ctx, "availability check failed, reporting unavailable", "username", username, "error", err)
		return false
	}
}

// Logout ends the provider session. Local state is cleared optimistically
// through the gateway's absent event even when the provider call fails; the
// failure is recorded in the state error and returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.beginOp()

	cctx, cancel := m.remoteCtx(ctx)
	defer cancel()

	err := m.provider.SignOut(cctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	m.endOp(err)
	return err
}

// ForgotPassword dispatches a password-reset email for an email address or a
// username. The boolean mirrors the historical contract (false on any
// failure, never a panic); the error carries the distinct cause for callers
// that want it.
func (m *Manager) ForgotPassword(ctx context.Context, identifier string) (bool, error) {
	if identifier == "" {
		m.endOp(ErrUsernameNotFound)
		return false, ErrUsernameNotFound
	}

	m.beginOp()

	email := identifier
	if !strings.Contains(identifier, "@") {
		cctx, cancel := m.remoteCtx(ctx)
		_, profile, err := m.profiles.FindByUsername(cctx, identifier)
		cancel()
		if err != nil {
			err = mapLookupErr(err)
			m.endOp(err)
			return false, err
		}
		email = profile.Email
	}

	cctx, cancel := m.remoteCtx(ctx)
	defer cancel()
	if err := m.provider.SendPasswordReset(cctx, email); err != nil {
		err = fmt.Errorf("%w: %v", ErrProviderRejected, err)
		m.endOp(err)
		return false, err
	}

	m.endOp(nil)
	return true, nil
}

func mapSignInErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, identity.ErrInvalidCredentials):
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
}

func mapLookupErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, profiles.ErrNotFound):
		return ErrUsernameNotFound
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
