// Package sessions issues, refreshes and revokes the token pairs clients
// hold: a short-lived JWT access token plus an opaque rotating refresh token.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flixflex/flixflex/internal/common"
	"github.com/flixflex/flixflex/internal/server/accounts"
	"github.com/flixflex/flixflex/internal/server/refreshtokens"
	"github.com/flixflex/flixflex/internal/server/tokens"
)

var ErrInvalidToken = errors.New("invalid refresh token")

// Session is a live token pair bound to an account.
type Session struct {
	Account      *accounts.Account
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

type Service struct {
	accounts   *accounts.Service
	refresh    refreshtokens.Repository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(accountSvc *accounts.Service, refresh refreshtokens.Repository, secret []byte, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accounts:   accountSvc,
		refresh:    refresh,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// SignIn authenticates and issues a fresh token pair.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.IssueFor(ctx, account)
}

// IssueFor creates a token pair for an already-verified account. Used by
// sign-in and by sign-up, which authenticates the fresh account implicitly.
func (s *Service) IssueFor(ctx context.Context, account *accounts.Account) (*Session, error) {
	access, err := tokens.Generate(account.ID, account.Email, s.secret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %v", err)
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %v", err)
	}

	if err := s.refresh.Create(ctx, account.ID, refresh, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %v", err)
	}

	return &Session{
		Account:      account,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Refresh rotates a valid refresh token into a new pair. The old token is
// revoked first, so a replayed token fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	accountID, err := s.refresh.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, refreshtokens.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("error looking up refresh token: %v", err)
	}

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		// account deleted since issuance: the token is dead
		_ = s.refresh.Delete(ctx, refreshToken)
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("error looking up account: %v", err)
	}

	if err := s.refresh.Delete(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("error rotating refresh token: %v", err)
	}

	return s.IssueFor(ctx, account)
}

// SignOut revokes a refresh token. Revoking an unknown token is not an
// error.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.refresh.Delete(ctx, refreshToken)
}
