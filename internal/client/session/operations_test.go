package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flixflex/flixflex/internal/client/models"
	"github.com/flixflex/flixflex/internal/client/profiles"
)

// seedBob registers a known account and profile in the fakes.
func seedBob(fp *fakeProvider, fs *fakeStore) {
	fp.seed("bob@example.com", "hunter22", "uid-bob")
	fs.profiles["uid-bob"] = &profiles.Profile{Username: "bob", Name: "Bob", Email: "bob@example.com"}
	fs.reservations["bob"] = "uid-bob"
}

func offline(fp *fakeProvider) *fakeProvider {
	fp.startErr = errors.New("offline")
	return fp
}

func TestLoginWithEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"ok", "bob@example.com", "hunter22", nil},
		{"wrong password", "bob@example.com", "nope", ErrInvalidCredentials},
		{"unknown account", "eve@example.com", "hunter22", ErrInvalidCredentials},
		{"empty password", "bob@example.com", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := offline(newFakeProvider())
			fs := newFakeStore()
			seedBob(fp, fs)
			m := startManager(t, fp, fs, &fakeCache{})

			err := m.LoginWithEmail(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, m.Snapshot().User)
				return
			}
			require.NoError(t, err)
			s := waitFor(t, m, func(s State) bool { return s.Authenticated() })
			require.Equal(t, "uid-bob", s.User.UID)
			require.Equal(t, "bob", s.User.Username)
		})
	}
}

func TestLoginWithUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"ok", "bob", "hunter22", nil},
		{"wrong password", "bob", "nope", ErrInvalidCredentials},
		{"unknown username", "nobody", "hunter22", ErrUsernameNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := offline(newFakeProvider())
			fs := newFakeStore()
			seedBob(fp, fs)
			m := startManager(t, fp, fs, &fakeCache{})

			err := m.LoginWithUsername(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, m.Snapshot().Err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			s := waitFor(t, m, func(s State) bool { return s.Authenticated() })
			require.Equal(t, "bob@example.com", s.User.Email)
		})
	}
}

func TestLoginWithUsernameStoreDown(t *testing.T) {
	fp := offline(newFakeProvider())
	fs := newFakeStore()
	fs.findErr = errors.New("store timeout")
	m := startManager(t, fp, fs, &fakeCache{})

	err := m.LoginWithUsername(context.Background(), "bob", "hunter22")
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestRegisterHappyPath(t *testing.T) {
	fp := offline(newFakeProvider())
	fs := newFakeStore()
	fc := &fakeCache{}
	m := startManager(t, fp, fs, fc)

	err := m.Register(context.Background(), "alice", "Alice", "alice@example.com", "s3cret99")
	require.NoError(t, err)

	s := waitFor(t, m, func(s State) bool { return s.Authenticated() })
	require.Equal(t, "alice", s.User.Username)
	require.Equal(t, "alice@example.com", s.User.Email)

	uid := s.User.UID
	require.Equal(t, uid, fs.reservation("alice"))
	require.Equal(t, "alice", fs.profile(uid).Username)

	cached := fc.snapshot()
	require.NotNil(t, cached)
	require.Equal(t, "alice", cached.Username)
}

func TestRegisterUsernameTooShort(t *testing.T) {
	fp := offline(newFakeProvider())
	m := startManager(t, fp, newFakeStore(), &fakeCache{})

	err := m.Register(context.Background(), "al", "Al", "al@example.com", "s3cret99")
	require.ErrorIs(t, err, models.ErrUsernameTooShort)
	require.Empty(t, fp.accounts)
}

func TestRegisterUsernameTakenAdvisory(t *testing.T) {
	fp := offline(newFakeProvider())
	fs := newFakeStore()
	fs.reservations["alice"] = "uid-other"
	m := startManager(t, fp, fs, &fakeCache{})

	err := m.Register(context.Background(), "alice", "Alice", "alice@example.com", "s3cret99")
	require.ErrorIs(t, err, ErrUsernameTaken)
	// the advisory check fired before any account was created
	require.Empty(t, fp.accounts)
	require.Empty(t, fp.deleted)
}

func TestRegisterLostReservationRaceCompensates(t *testing.T) {
	fp := offline(newFakeProvider())
	fs := newFakeStore()
	// advisory check misses, but the reservation write still loses
	fs.reservations["alice"] = "uid-other"
	fs.advisoryMiss = true
	m := startManager(t, fp, fs, &fakeCache{})

	err := m.Register(context.Background(), "alice", "Alice", "alice@example.com", "s3cret99")
	require.ErrorIs(t, err, ErrUsernameTaken)

	// the fresh provider account and its profile document were both rolled
	// back: a leftover profile would shadow the winner in FindByUsername
	require.Len(t, fp.deleted, 1)
	require.Empty(t, fp.accounts)
	require.Nil(t, fs.profile(fp.deleted[0]))
	// the reservation still belongs to the winner
	require.Equal(t, "uid-other", fs.reservation("alice"))
}

func TestRegisterLostRaceLeavesWinnerLoginIntact(t *testing.T) {
	fp := offline(newFakeProvider())
	fs := newFakeStore()
	// alice already registered in full
	fp.seed("alice@example.com", "w1nnerpass", "uid-winner")
	fs.profiles["uid-winner"] = &profiles.Profile{Username: "alice", Name: "Alice", Email: "alice@example.com"}
	fs.reservations["alice"] = "uid-winner"
	fs.advisoryMiss = true
	m := startManager(t, fp, fs, &fakeCache{})

	err := m.Register(context.Background(), "alice", "Imposter", "imposter@example.com", "l0serpass")
	require.ErrorIs(t, err, ErrUsernameTaken)

	// the loser's rollback must not leave a duplicate-username profile, so
	// the name still resolves to alice and her credentials still work
	err = m.LoginWithUsername(context.Background(), "alice", "w1nnerpass")
	require.NoError(t, err)
}

func TestRegisterProfileCreateFailureCompensates(t *testing.T) {
	fp := offline(newFakeProvider())
	fs := newFakeStore()
	fs.createErr = errors.New("store timeout")
	m := startManager(t, fp, fs, &fakeCache{})

	err := m.Register(context.Background(), "alice", "Alice", "alice@example.com", "s3cret99")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.Len(t, fp.deleted, 1)
	require.Zero(t, fs.reservationCount())
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	fp := offline(newFakeProvider())
	fs := newFakeStore()
	m := startManager(t, fp, fs, &fakeCache{})

	emails := []string{"a@example.com", "b@example.com"}
	results := make([]error, len(emails))
	var wg sync.WaitGroup
	for i, email := range emails {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			results[i] = m.Register(context.Background(), "alice", "Alice", email, "s3cret99")
		}(i, email)
	}
	wg.Wait()

	var ok, taken int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrUsernameTaken):
			taken++
		default:
			t.Fatalf("unexpected register error: %v", err)
		}
	}
	require.Equal(t, 1, ok, "exactly one register may win the username")
	require.Equal(t, 1, taken)

	// the reservation belongs to the winner's profile
	winner := fs.reservation("alice")
	require.NotEmpty(t, winner)
	require.Equal(t, "alice", fs.profile(winner).Username)
}

func TestCheckUsernameAvailable(t *testing.T) {
	fp := offline(newFakeProvider())
	fs := newFakeStore()
	fs.reservations["taken"] = "uid-1"
	m := startManager(t, fp, fs, &fakeCache{})

	ctx := context.Background()
	require.False(t, m.CheckUsernameAvailable(ctx, "taken"))
	require.True(t, m.CheckUsernameAvailable(ctx, "free"))
	// below the minimum length nothing is looked up
	require.True(t, m.CheckUsernameAvailable(ctx, "ab"))

	fs.mu.Lock()
	fs.reservationErr = errors.New("store timeout")
	fs.mu.Unlock()
	require.False(t, m.CheckUsernameAvailable(ctx, "free"), "errors report unavailable")
}

func TestLogout(t *testing.T) {
	fp := newFakeProvider()
	fp.startErr = errors.New("offline")
	fs := newFakeStore()
	seedBob(fp, fs)
	fc := &fakeCache{}
	m := startManager(t, fp, fs, fc)

	require.NoError(t, m.LoginWithEmail(context.Background(), "bob@example.com", "hunter22"))
	waitFor(t, m, func(s State) bool { return s.Authenticated() })

	require.NoError(t, m.Logout(context.Background()))
	s := waitFor(t, m, func(s State) bool { return s.User == nil && !s.Loading })
	require.False(t, s.Authenticated())
	require.Nil(t, fc.snapshot())

	// logging out while already signed out is harmless
	require.NoError(t, m.Logout(context.Background()))
}

func TestLogoutProviderFailureStillClears(t *testing.T) {
	fp := newFakeProvider()
	fp.startErr = errors.New("offline")
	fp.signOutErr = errors.New("revocation failed")
	fs := newFakeStore()
	seedBob(fp, fs)
	fc := &fakeCache{}
	m := startManager(t, fp, fs, fc)

	require.NoError(t, m.LoginWithEmail(context.Background(), "bob@example.com", "hunter22"))
	waitFor(t, m, func(s State) bool { return s.Authenticated() })

	err := m.Logout(context.Background())
	require.ErrorIs(t, err, ErrProviderRejected)

	// local sign-out happens regardless of the provider answer
	s := waitFor(t, m, func(s State) bool { return s.User == nil })
	require.False(t, s.Authenticated())
	require.Nil(t, fc.snapshot())
}

func TestForgotPassword(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantOK     bool
		wantErr    error
		wantEmail  string
	}{
		{"by email", "bob@example.com", true, nil, "bob@example.com"},
		{"by username", "bob", true, nil, "bob@example.com"},
		{"unknown username", "nobody", false, ErrUsernameNotFound, ""},
		{"empty identifier", "", false, ErrUsernameNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := offline(newFakeProvider())
			fs := newFakeStore()
			seedBob(fp, fs)
			m := startManager(t, fp, fs, &fakeCache{})

			ok, err := m.ForgotPassword(context.Background(), tt.identifier)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, fp.resets)
				return
			}
			require.NoError(t, err)
			require.Equal(t, []string{tt.wantEmail}, fp.resets)
		})
	}
}

func TestForgotPasswordProviderDown(t *testing.T) {
	fp := offline(newFakeProvider())
	fp.resetErr = errors.New("smtp down")
	fs := newFakeStore()
	seedBob(fp, fs)
	m := startManager(t, fp, fs, &fakeCache{})

	ok, err := m.ForgotPassword(context.Background(), "bob@example.com")
	require.False(t, ok)
	require.ErrorIs(t, err, ErrProviderRejected)
}

func TestOperationTimeoutDefault(t *testing.T) {
	m := NewManager(newFakeProvider(), newFakeStore(), &fakeCache{}, testLogger(), 0)
	require.Equal(t, DefaultTimeout, m.timeout)
}
