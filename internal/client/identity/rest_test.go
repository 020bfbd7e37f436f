package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flixflex/flixflex/internal/logging"
)

type memTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *memTokenStore) ReadToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memTokenStore) WriteToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memTokenStore) DeleteToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *memTokenStore) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *memTokenStore) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	store := &memTokenStore{}
	c := NewClient(ts.URL, store, testLogger())
	t.Cleanup(func() { _ = c.Close() })
	return c, store
}

func writeSessionJSON(w http.ResponseWriter, uid, email, access, refresh string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"uid": uid, "email": email,
		"access_token": access, "refresh_token": refresh,
		"expires_in": 900,
	})
}

func writeErrorJSON(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": code},
	})
}

func TestStartWithoutStoredTokenEmitsSignedOut(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	require.NoError(t, c.Start(context.Background()))

	ev := <-c.Events()
	assert.Nil(t, ev.Identity)
	assert.Zero(t, calls.Load(), "no remote call without a stored token")
}

func TestStartRestoresPersistedSession(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sessions/refresh", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "stored-refresh", body["refresh_token"])
		writeSessionJSON(w, "uid-1", "bob@example.com", "access-1", "rotated-refresh")
	}))
	require.NoError(t, store.WriteToken(context.Background(), "stored-refresh"))

	require.NoError(t, c.Start(context.Background()))

	ev := <-c.Events()
	require.NotNil(t, ev.Identity)
	assert.Equal(t, "uid-1", ev.Identity.UID)
	assert.Equal(t, "bob@example.com", ev.Identity.Email)
	// the rotated refresh token replaces the stored one
	assert.Equal(t, "rotated-refresh", store.get())
}

func TestStartDiscardsRevokedToken(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorJSON(w, http.StatusUnauthorized, "invalid_token")
	}))
	require.NoError(t, store.WriteToken(context.Background(), "revoked"))

	require.NoError(t, c.Start(context.Background()))

	ev := <-c.Events()
	assert.Nil(t, ev.Identity)
	assert.Empty(t, store.get(), "stale token must be dropped")
}

func TestStartUnreachableEmitsNothing(t *testing.T) {
	var calls atomic.Int32
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeErrorJSON(w, http.StatusServiceUnavailable, "internal")
	}))
	require.NoError(t, store.WriteToken(context.Background(), "stored-refresh"))

	err := c.Start(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
	// transient failure is retried with the bounded backoff
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "stored-refresh", store.get(), "token survives offline start")
}

func TestSignIn(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sessions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "hunter22" {
			writeErrorJSON(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeSessionJSON(w, "uid-1", body["email"], "access-1", "refresh-1")
	}))

	_, err := c.SignIn(context.Background(), "bob@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	id, err := c.SignIn(context.Background(), "bob@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.UID)
	assert.Equal(t, "refresh-1", store.get())

	ev := <-c.Events()
	require.NotNil(t, ev.Identity)
	assert.Equal(t, "uid-1", ev.Identity.UID)
}

func TestCreateAccountErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"email taken", http.StatusConflict, "email_taken", ErrEmailTaken},
		{"weak password", http.StatusBadRequest, "weak_password", ErrWeakPassword},
		{"server down", http.StatusInternalServerError, "internal", ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeErrorJSON(w, tt.status, tt.code)
			}))

			_, err := c.CreateAccount(context.Background(), "bob@example.com", "hunter22")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignOutRevokesAndWipes(t *testing.T) {
	var revoked atomic.Bool
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/sessions":
			if r.Method == http.MethodDelete {
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				require.Equal(t, "refresh-1", body["refresh_token"])
				revoked.Store(true)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			writeSessionJSON(w, "uid-1", "bob@example.com", "access-1", "refresh-1")
		}
	}))

	_, err := c.SignIn(context.Background(), "bob@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, c.SignOut(context.Background()))
	assert.True(t, revoked.Load())
	assert.Empty(t, store.get())

	_, err = c.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignOutRemoteFailureStillWipes(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			writeErrorJSON(w, http.StatusInternalServerError, "internal")
			return
		}
		writeSessionJSON(w, "uid-1", "bob@example.com", "access-1", "refresh-1")
	}))

	_, err := c.SignIn(context.Background(), "bob@example.com", "hunter22")
	require.NoError(t, err)

	err = c.SignOut(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, store.get(), "local state is cleared regardless")
}

func TestDeleteAccountRefusesForeignUID(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeSessionJSON(w, "uid-1", "bob@example.com", "access-1", "refresh-1")
	}))

	_, err := c.SignIn(context.Background(), "bob@example.com", "hunter22")
	require.NoError(t, err)
	calls.Store(0)

	err = c.DeleteAccount(context.Background(), "uid-other")
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, calls.Load(), "no remote call for a foreign uid")
}

func TestDeleteAccountSendsBearer(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			require.Equal(t, "/v1/accounts/uid-1", r.URL.Path)
			require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeSessionJSON(w, "uid-1", "bob@example.com", "access-1", "refresh-1")
	}))

	_, err := c.SignIn(context.Background(), "bob@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, c.DeleteAccount(context.Background(), "uid-1"))
	assert.Empty(t, store.get())
}

func TestRefreshSessionRotatesPair(t *testing.T) {
	var n atomic.Int32
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/sessions":
			writeSessionJSON(w, "uid-1", "bob@example.com", "access-1", "refresh-1")
		case "/v1/sessions/refresh":
			i := n.Add(1)
			writeSessionJSON(w, "uid-1", "bob@example.com",
				fmt.Sprintf("access-%d", i+1), fmt.Sprintf("refresh-%d", i+1))
		}
	}))

	_, err := c.SignIn(context.Background(), "bob@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, c.RefreshSession(context.Background()))
	access, err := c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", access)
	assert.Equal(t, "refresh-2", store.get())
}

func TestEmitNeverBlocksWithoutConsumer(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSessionJSON(w, "uid-1", "bob@example.com", "access-1", "refresh-1")
	}))

	// nobody drains Events; well past the channel capacity
	for i := 0; i < 40; i++ {
		_, err := c.SignIn(context.Background(), "bob@example.com", "hunter22")
		require.NoError(t, err)
	}
	require.NoError(t, c.SignOut(context.Background()))

	// the newest state is still in the queue
	var last Event
	for {
		select {
		case ev := <-c.Events():
			last = ev
			continue
		default:
		}
		break
	}
	assert.Nil(t, last.Identity, "latest event wins when the consumer lags")
}
