package refreshtokens

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	accountID string
	expiresAt time.Time
}

// MemoryRepository is the in-memory Repository used by tests.
type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]entry)}
}

func (r *MemoryRepository) Create(ctx context.Context, accountID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = entry{accountID: accountID, expiresAt: time.Now().Add(validity)}
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tokens[token]
	if !ok || time.Now().After(e.expiresAt) {
		return "", ErrNotFound
	}
	return e.accountID, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}
