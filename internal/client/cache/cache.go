// Package cache implements the durable local session cache: the last
// resolved application user and the provider refresh token, persisted on
// device so the app can render instantly on cold start.
//
// The cache is an optimization, never a correctness dependency: callers must
// treat every failure here as a cache miss.
package cache

import (
	"context"

	"github.com/flixflex/flixflex/internal/client/models"
)

// Cache stores the serialized snapshot of the current user.
type Cache interface {
	// ReadUser returns the cached user, or (nil, nil) when none is stored.
	ReadUser(ctx context.Context) (*models.User, error)

	// WriteUser replaces the cached user snapshot.
	WriteUser(ctx context.Context, user *models.User) error

	// DeleteUser removes the snapshot. Removing an absent snapshot is not an
	// error.
	DeleteUser(ctx context.Context) error
}

// TokenStore persists the provider refresh token between runs. The identity
// gateway uses it to restore the session on cold start.
type TokenStore interface {
	// ReadToken returns the stored refresh token, or ("", nil) when absent.
	ReadToken(ctx context.Context) (string, error)

	WriteToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}
