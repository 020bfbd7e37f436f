// Package catalog is a read-only client for the TMDB movie/TV catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sethvargo/go-retry"

	"github.com/flixflex/flixflex/internal/client/rest"
	"github.com/flixflex/flixflex/internal/logging"
)

const (
	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultImageBaseURL is the TMDB image CDN root.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"

	// DefaultImageSize is used when the caller does not pick one.
	DefaultImageSize = "w500"
)

var ErrEmptyQuery = errors.New("search query is empty")

// Client talks to the catalog API with bearer-token auth and bounded retry.
// Safe for concurrent use.
type Client struct {
	baseURL  string
	imageURL string
	token    string
	hc       *http.Client
	log      logging.Logger
}

func NewClient(baseURL, token string, log logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		imageURL: DefaultImageBaseURL,
		token:    token,
		hc:       &http.Client{},
		log:      log.With("component", "catalog"),
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	err := retry.Do(ctx, rest.Backoff(), func(ctx context.Context) error {
		e := rest.Do(ctx, c.hc, http.MethodGet, u, c.token, nil, out)
		if rest.IsTransient(e) {
			return retry.RetryableError(e)
		}
		return e
	})
	if err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}
	return nil
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return q
}

func (c *Client) PopularMovies(ctx context.Context, page int) (*MoviePage, error) {
	var out MoviePage
	if err := c.get(ctx, "/movie/popular", pageQuery(page), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TopRatedMovies(ctx context.Context, page int) (*MoviePage, error) {
	var out MoviePage
	if err := c.get(ctx, "/movie/top_rated", pageQuery(page), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PopularTV(ctx context.Context, page int) (*TVPage, error) {
	var out TVPage
	if err := c.get(ctx, "/tv/popular", pageQuery(page), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TopRatedTV(ctx context.Context, page int) (*TVPage, error) {
	var out TVPage
	if err := c.get(ctx, "/tv/top_rated", pageQuery(page), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*MoviePage, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	q := pageQuery(page)
	q.Set("query", query)
	var out MoviePage
	if err := c.get(ctx, "/search/movie", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchTV(ctx context.Context, query string, page int) (*TVPage, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	q := pageQuery(page)
	q.Set("query", query)
	var out TVPage
	if err := c.get(ctx, "/search/tv", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovieDetails fetches a movie with videos, credits and similar titles in a
// single request.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*MovieDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "videos,credits,similar")
	var out MovieDetails
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TVDetails fetches a TV show with videos, credits and similar titles in a
// single request.
func (c *Client) TVDetails(ctx context.Context, id int64) (*TVDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "videos,credits,similar")
	var out TVDetails
	if err := c.get(ctx, "/tv/"+strconv.FormatInt(id, 10), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImageURL builds a CDN URL for a poster or backdrop path. Returns "" for an
// empty path. size defaults to DefaultImageSize.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = DefaultImageSize
	}
	return c.imageURL + "/" + size + path
}
