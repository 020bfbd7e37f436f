package identity

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/flixflex/flixflex/internal/client/cache"
	"github.com/flixflex/flixflex/internal/client/rest"
	"github.com/flixflex/flixflex/internal/logging"
	"github.com/sethvargo/go-retry"
)

// Client is the REST implementation of Provider against the backend identity
// API. Safe for concurrent use.
type Client struct {
	baseURL string
	hc      *http.Client
	tokens  cache.TokenStore
	log     logging.Logger

	mu       sync.Mutex
	identity *Identity
	access   string
	refresh  string

	events    chan Event
	closeOnce sync.Once
}

var _ Provider = (*Client)(nil)

// sessionResponse is the token payload shared by sign-up, sign-in and
// refresh.
type sessionResponse struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func NewClient(baseURL string, tokens cache.TokenStore, log logging.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{},
		tokens:  tokens,
		log:     log.With("component", "identity_gateway"),
		events:  make(chan Event, 16),
	}
}

func (c *Client) Events() <-chan Event { return c.events }

// Start restores the persisted session. A stored refresh token is exchanged
// for a fresh pair; an invalid one is discarded. No event is emitted when
// the provider is unreachable, so optimistic local state survives offline
// starts.
func (c *Client) Start(ctx context.Context) error {
	stored, err := c.tokens.ReadToken(ctx)
	if err != nil {
		c.log.Warn(ctx, "token store read failed, treating as signed out", "error", err)
		stored = ""
	}
	if stored == "" {
		c.emit(nil)
		return nil
	}

	var resp sessionResponse
	err = retry.Do(ctx, rest.Backoff(), func(ctx context.Context) error {
		e := rest.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/v1/sessions/refresh", "",
			map[string]string{"refresh_token": stored}, &resp)
		if rest.IsTransient(e) {
			return retry.RetryableError(e)
		}
		return e
	})
	if err != nil {
		if errors.Is(c.mapError(err), ErrUnauthenticated) || errors.Is(c.mapError(err), ErrInvalidCredentials) {
			// stale or revoked token: forget it and report signed out
			if delErr := c.tokens.DeleteToken(ctx); delErr != nil {
				c.log.Warn(ctx, "failed to drop stale refresh token", "error", delErr)
			}
			c.emit(nil)
			return nil
		}
		return c.mapError(err)
	}

	c.adopt(ctx, &resp)
	return nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	var resp sessionResponse
	err := rest.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/v1/sessions", "",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return nil, c.mapError(err)
	}
	return c.adopt(ctx, &resp), nil
}

func (c *Client) CreateAccount(ctx context.Context, email, password string) (*Identity, error) {
	var resp sessionResponse
	err := rest.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/v1/accounts", "",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return nil, c.mapError(err)
	}
	return c.adopt(ctx, &resp), nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refresh
	c.mu.Unlock()

	var remoteErr error
	if refresh != "" {
		remoteErr = rest.Do(ctx, c.hc, http.MethodDelete, c.baseURL+"/v1/sessions", "",
			map[string]string{"refresh_token": refresh}, nil)
		if remoteErr != nil {
			remoteErr = c.mapError(remoteErr)
		}
	}

	// local state is cleared even when revocation failed
	c.wipe(ctx)
	c.emit(nil)
	return remoteErr
}

func (c *Client) DeleteAccount(ctx context.Context, uid string) error {
	c.mu.Lock()
	current := c.identity
	c.mu.Unlock()
	if current == nil || current.UID != uid {
		// the session moved on; deleting with the current token would hit
		// a different account
		return ErrUnauthenticated
	}
	access, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}
	if err := rest.Do(ctx, c.hc, http.MethodDelete, c.baseURL+"/v1/accounts/"+uid, access, nil, nil); err != nil {
		return c.mapError(err)
	}
	c.wipe(ctx)
	c.emit(nil)
	return nil
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	err := retry.Do(ctx, rest.Backoff(), func(ctx context.Context) error {
		e := rest.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/v1/password-resets", "",
			map[string]string{"email": email}, nil)
		if rest.IsTransient(e) {
			return retry.RetryableError(e)
		}
		return e
	})
	if err != nil {
		return c.mapError(err)
	}
	return nil
}

// AccessToken returns the current access token for authenticated calls made
// by other gateways.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.access == "" {
		return "", ErrUnauthenticated
	}
	return c.access, nil
}

// RefreshSession rotates the token pair after an access token expires. Other
// gateways call this on a 401 and then retry once.
func (c *Client) RefreshSession(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refresh
	c.mu.Unlock()
	if refresh == "" {
		return ErrUnauthenticated
	}

	var resp sessionResponse
	err := rest.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/v1/sessions/refresh", "",
		map[string]string{"refresh_token": refresh}, &resp)
	if err != nil {
		return c.mapError(err)
	}
	c.adopt(ctx, &resp)
	return nil
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.events) })
	return nil
}

// adopt installs a fresh session: tokens in memory, refresh token on disk,
// and a session-changed event.
func (c *Client) adopt(ctx context.Context, resp *sessionResponse) *Identity {
	id := &Identity{UID: resp.UID, Email: resp.Email}

	c.mu.Lock()
	c.identity = id
	c.access = resp.AccessToken
	c.refresh = resp.RefreshToken
	c.mu.Unlock()

	if err := c.tokens.WriteToken(ctx, resp.RefreshToken); err != nil {
		c.log.Warn(ctx, "failed to persist refresh token", "error", err)
	}

	c.emit(id)
	return id
}

func (c *Client) wipe(ctx context.Context) {
	c.mu.Lock()
	c.identity = nil
	c.access = ""
	c.refresh = ""
	c.mu.Unlock()

	if err := c.tokens.DeleteToken(ctx); err != nil {
		c.log.Warn(ctx, "failed to delete refresh token", "error", err)
	}
}

// emit publishes a session-changed event without ever blocking the caller.
// When the consumer is gone or lagging the oldest queued event is dropped,
// so the channel always holds the most recent states.
func (c *Client) emit(id *Identity) {
	var copied *Identity
	if id != nil {
		v := *id
		copied = &v
	}
	ev := Event{Identity: copied}
	for {
		select {
		case c.events <- ev:
			return
		default:
		}
		select {
		case <-c.events:
		default:
		}
	}
}

// mapError converts transport/API failures into the gateway taxonomy.
func (c *Client) mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *rest.Error
	if !errors.As(err, &apiErr) {
		return errors.Join(ErrUnavailable, err)
	}
	switch apiErr.Code {
	case "invalid_credentials":
		return ErrInvalidCredentials
	case "email_taken":
		return ErrEmailTaken
	case "weak_password":
		return ErrWeakPassword
	case "invalid_token", "unauthenticated":
		return ErrUnauthenticated
	}
	if apiErr.Status == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	if apiErr.Status >= 500 {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
