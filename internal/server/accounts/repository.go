package accounts

import (
	"context"
	"time"
)

// Repository stores accounts. Create returns ErrEmailTaken on a duplicate
// email; lookups return ErrNotFound.
type Repository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	Delete(ctx context.Context, id string) error
}

// ResetTokenRepository stores single-use password-reset tokens. Consume
// atomically removes the token and returns the account id it was issued for;
// expired or unknown tokens return ErrNotFound.
type ResetTokenRepository interface {
	Create(ctx context.Context, accountID, token string, validity time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}
