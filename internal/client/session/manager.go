// Package session implements the session manager: the single source of truth
// for "who is the current application user".
//
// The manager reconciles provider session-changed events with profile store
// documents, mirrors the resolved user into the local cache, and publishes
// state snapshots to observers. One goroutine (run) consumes the provider
// event stream and is the sole writer of the current user, so transitions
// stay ordered no matter how many operations are in flight.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flixflex/flixflex/internal/client/cache"
	"github.com/flixflex/flixflex/internal/client/identity"
	"github.com/flixflex/flixflex/internal/client/models"
	"github.com/flixflex/flixflex/internal/client/profiles"
	"github.com/flixflex/flixflex/internal/logging"
)

// DefaultTimeout bounds every remote call issued by the manager.
const DefaultTimeout = 10 * time.Second

type Manager struct {
	provider identity.Provider
	profiles profiles.Store
	cache    cache.Cache
	log      logging.Logger
	timeout  time.Duration

	mu    sync.RWMutex
	state State

	obsMu     sync.Mutex
	observers map[int]chan State
	nextObs   int

	done chan struct{}
}

// NewManager wires the manager to its three collaborators. A timeout of 0
// selects DefaultTimeout.
func NewManager(p identity.Provider, s profiles.Store, c cache.Cache, log logging.Logger, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		provider:  p,
		profiles:  s,
		cache:     c,
		log:       log.With("component", "session_manager"),
		timeout:   timeout,
		state:     State{Loading: true},
		observers: make(map[int]chan State),
		done:      make(chan struct{}),
	}
}

// Start performs the cold-start sequence: read the cached snapshot for an
// optimistic first render, begin consuming provider events, then ask the
// provider to restore its persisted session. The cached value stays marked
// provisional until the first provider event reconciles it.
//
// Start must be called exactly once.
func (m *Manager) Start(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	cached, err := m.cache.ReadUser(cctx)
	cancel()
	if err != nil {
		m.log.Warn(ctx, "cache read failed on cold start", "error", fmt.Errorf("%w: %v", ErrCacheUnavailable, err))
	} else if cached != nil {
		m.update(func(s *State) {
			s.User = cached
			s.Provisional = true
		})
	}

	go m.run(ctx)

	if err := m.provider.Start(ctx); err != nil {
		// offline start: keep the provisional state until the provider comes
		// back; the subscription will reconcile then
		m.log.Warn(ctx, "session restore deferred, provider unreachable", "error", err)
	}
	return nil
}

// Done is closed when the event loop has exited.
func (m *Manager) Done() <-chan struct{} { return m.done }

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe registers an observer. The returned channel carries conflated
// snapshots: a slow consumer sees the latest state, not every intermediate
// one. The cancel function removes the observer and closes the channel.
func (m *Manager) Subscribe() (<-chan State, func()) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()

	id := m.nextObs
	m.nextObs++
	ch := make(chan State, 1)
	m.observers[id] = ch

	cancel := func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		if c, ok := m.observers[id]; ok {
			delete(m.observers, id)
			close(c)
		}
	}
	return ch, cancel
}

// run is the single-threaded state-transition handler. It is the only writer
// of State.User.
func (m *Manager) run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-m.provider.Events():
			if !ok {
				return
			}
			m.handleEvent(ctx, ev)
		}
	}
}

func (m *Manager) handleEvent(ctx context.Context, ev identity.Event) {
	if ev.Identity == nil {
		m.handleSignedOut(ctx)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	profile, err := m.profiles.Get(cctx, ev.Identity.UID)
	cancel()

	switch {
	case err == nil:
		user := &models.User{
			UID:      ev.Identity.UID,
			Email:    ev.Identity.Email,
			Username: profile.Username,
			Name:     profile.Name,
		}
		m.writeCache(ctx, user)
		m.update(func(s *State) {
			s.User = user
			s.Provisional = false
			s.Loading = false
			s.Err = nil
		})

	case errors.Is(err, profiles.ErrNotFound):
		// provider account with no profile document: an interrupted
		// registration. Nothing is published and the cached snapshot is left
		// alone; the condition is surfaced instead of swallowed.
		m.log.Warn(ctx, "provider identity has no profile document", "uid", ev.Identity.UID)
		m.update(func(s *State) {
			s.User = nil
			s.Provisional = false
			s.Loading = false
			s.Err = ErrProfileMissing
		})

	default:
		// store unreachable: keep whatever the UI is showing rather than
		// flapping to signed-out on a network blip
		m.log.Error(ctx, "profile fetch failed", "uid", ev.Identity.UID, "error", err)
		m.update(func(s *State) {
			s.Loading = false
			s.Err = ErrStoreUnavailable
		})
	}
}

func (m *Manager) handleSignedOut(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	if err := m.cache.DeleteUser(cctx); err != nil {
		m.log.Warn(ctx, "cache clear failed", "error", fmt.Errorf("%w: %v", ErrCacheUnavailable, err))
	}
	cancel()

	m.update(func(s *State) {
		s.User = nil
		s.Provisional = false
		s.Loading = false
	})
}

func (m *Manager) writeCache(ctx context.Context, user *models.User) {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.cache.WriteUser(cctx, user); err != nil {
		m.log.Warn(ctx, "cache write failed", "error", fmt.Errorf("%w: %v", ErrCacheUnavailable, err))
	}
}

// update mutates state under the lock and broadcasts the new snapshot.
func (m *Manager) update(fn func(*State)) {
	m.mu.Lock()
	fn(&m.state)
	snapshot := m.state
	m.mu.Unlock()

	m.broadcast(snapshot)
}

func (m *Manager) broadcast(snapshot State) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	for _, ch := range m.observers {
		select {
		case ch <- snapshot:
		default:
			// drop the stale value, keep the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
