// Package refreshtokens persists the opaque rotating refresh tokens backing
// long-lived sessions.
package refreshtokens

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("refresh token not found")

// Repository stores refresh tokens with their expiry. Find does not return
// expired tokens; Delete revokes.
type Repository interface {
	Create(ctx context.Context, accountID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}
