// Package docstore implements the profile document store: named collections
// of small JSON documents keyed by string id.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

// Document is one stored entry, returned with its id.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Store is the capability surface the HTTP API exposes. Create is
// create-only and returns ErrAlreadyExists on an id collision; this is the
// uniqueness backstop the registration flow relies on. QueryEquals returns
// matches ordered by id, so a limit-1 query is deterministic under
// duplicates.
type Store interface {
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	Create(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	QueryEquals(ctx context.Context, collection, field string, value any, limit int) ([]Document, error)
}
