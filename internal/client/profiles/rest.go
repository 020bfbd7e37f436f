package profiles

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/flixflex/flixflex/internal/client/rest"
	"github.com/sethvargo/go-retry"
)

const (
	usersCollection     = "users"
	usernamesCollection = "usernames"
)

// Client is the REST implementation of Store against the backend document
// store API. Reads are unauthenticated (username resolution happens before
// login); writes carry the caller's access token.
type Client struct {
	baseURL string
	hc      *http.Client
	tokens  TokenSource
}

var _ Store = (*Client)(nil)

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{baseURL: baseURL, hc: &http.Client{}, tokens: tokens}
}

type queryResponse struct {
	Documents []struct {
		ID     string  `json:"id"`
		Fields Profile `json:"fields"`
	} `json:"documents"`
}

func (c *Client) docURL(collection, id string) string {
	return fmt.Sprintf("%s/v1/store/%s/%s", c.baseURL, collection, url.PathEscape(id))
}

// getJSON performs a read with bounded retry on transient failures.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	return retry.Do(ctx, rest.Backoff(), func(ctx context.Context) error {
		err := rest.Do(ctx, c.hc, http.MethodGet, url, "", nil, out)
		if rest.IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// writeJSON performs an authenticated write. On a 401 the session is
// refreshed once and the write retried.
func (c *Client) writeJSON(ctx context.Context, method, url string, fields any) error {
	access, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	err = rest.Do(ctx, c.hc, method, url, access, fields, nil)
	if apiStatus(err) != http.StatusUnauthorized {
		return err
	}

	if err := c.tokens.RefreshSession(ctx); err != nil {
		return err
	}
	access, err = c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	return rest.Do(ctx, c.hc, method, url, access, fields, nil)
}

func (c *Client) Get(ctx context.Context, uid string) (*Profile, error) {
	var p Profile
	if err := c.getJSON(ctx, c.docURL(usersCollection, uid), &p); err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (c *Client) Create(ctx context.Context, uid string, p *Profile) error {
	return mapError(c.writeJSON(ctx, http.MethodPost, c.docURL(usersCollection, uid), p))
}

func (c *Client) Delete(ctx context.Context, uid string) error {
	return mapError(c.writeJSON(ctx, http.MethodDelete, c.docURL(usersCollection, uid), nil))
}

func (c *Client) FindByUsername(ctx context.Context, username string) (string, *Profile, error) {
	q := url.Values{}
	q.Set("field", "username")
	q.Set("value", username)
	q.Set("limit", "1")

	var resp queryResponse
	u := fmt.Sprintf("%s/v1/store/%s?%s", c.baseURL, usersCollection, q.Encode())
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return "", nil, mapError(err)
	}
	if len(resp.Documents) == 0 {
		return "", nil, ErrNotFound
	}
	doc := resp.Documents[0]
	p := doc.Fields
	return doc.ID, &p, nil
}

func (c *Client) CreateReservation(ctx context.Context, username, uid string) error {
	body := Reservation{UID: uid}
	return mapError(c.writeJSON(ctx, http.MethodPost, c.docURL(usernamesCollection, username), body))
}

func (c *Client) GetReservation(ctx context.Context, username string) (*Reservation, error) {
	var r Reservation
	if err := c.getJSON(ctx, c.docURL(usernamesCollection, username), &r); err != nil {
		return nil, mapError(err)
	}
	r.Username = username
	return &r, nil
}

func apiStatus(err error) int {
	var apiErr *rest.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *rest.Error
	if !errors.As(err, &apiErr) {
		return errors.Join(ErrUnavailable, err)
	}
	switch {
	case apiErr.Status == http.StatusNotFound:
		return ErrNotFound
	case apiErr.Status == http.StatusConflict:
		return ErrAlreadyExists
	case apiErr.Status >= 500:
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
