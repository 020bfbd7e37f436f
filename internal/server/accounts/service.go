package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/flixflex/flixflex/internal/common"
	"github.com/flixflex/flixflex/internal/logging"
)

type Service struct {
	repo          Repository
	resetTokens   ResetTokenRepository
	mailer        Mailer
	resetTokenTTL time.Duration
	log           logging.Logger
}

func NewService(repo Repository, resetTokens ResetTokenRepository, mailer Mailer, resetTokenTTL time.Duration, log logging.Logger) *Service {
	return &Service{
		repo:          repo,
		resetTokens:   resetTokens,
		mailer:        mailer,
		resetTokenTTL: resetTokenTTL,
		log:           log.With("component", "accounts"),
	}
}

// SignUp creates an account with a bcrypt password hash. Duplicate emails
// surface as ErrEmailTaken, short passwords as ErrWeakPassword.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Account, error) {
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if len(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %v", err)
	}

	account := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}

	account, err = s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating account: %v", err)
	}

	return account, nil
}

// Authenticate verifies the email/password pair. Unknown emails and wrong
// passwords both return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up account: %v", err)
	}

	if bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes the account. Deleting an absent account is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// RequestPasswordReset issues a single-use reset token and hands it to the
// mailer. Unknown emails are silently ignored so the endpoint does not leak
// which addresses have accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Info(ctx, "reset requested for unknown email", "email", email)
			return nil
		}
		return fmt.Errorf("error looking up account: %v", err)
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return fmt.Errorf("error generating reset token: %v", err)
	}

	if err := s.resetTokens.Create(ctx, account.ID, token, s.resetTokenTTL); err != nil {
		return fmt.Errorf("error storing reset token: %v", err)
	}

	return s.mailer.SendPasswordReset(ctx, email, token)
}

// ConsumePasswordReset applies a new password for a valid reset token. The
// token is spent regardless of whether the password update succeeds.
func (s *Service) ConsumePasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLen {
		return ErrWeakPassword
	}

	accountID, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %v", err)
	}

	return s.repo.UpdatePassword(ctx, accountID, hash)
}
