package accounts

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is the in-memory Repository used by tests and handler
// wiring without a database.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*Account // id -> account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*Account)}
}

func (r *MemoryRepository) Create(ctx context.Context, account *Account) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, ErrEmailTaken
		}
	}
	cp := *account
	cp.CreatedAt = time.Now()
	r.accounts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	return nil
}

type resetToken struct {
	accountID string
	expiresAt time.Time
}

// MemoryResetTokenRepository is the in-memory ResetTokenRepository.
type MemoryResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]resetToken
}

func NewMemoryResetTokenRepository() *MemoryResetTokenRepository {
	return &MemoryResetTokenRepository{tokens: make(map[string]resetToken)}
}

func (r *MemoryResetTokenRepository) Create(ctx context.Context, accountID, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = resetToken{accountID: accountID, expiresAt: time.Now().Add(validity)}
	return nil
}

func (r *MemoryResetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.tokens[token]
	if !ok || time.Now().After(rt.expiresAt) {
		return "", ErrNotFound
	}
	delete(r.tokens, token)
	return rt.accountID, nil
}
