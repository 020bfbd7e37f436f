package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the in-memory Store used by tests.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

func (s *MemoryStore) coll(name string) map[string]map[string]any {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]map[string]any)
		s.collections[name] = c
	}
	return c
}

func copyFields(fields map[string]any) map[string]any {
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return cp
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.coll(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyFields(doc), nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll(collection)[id] = copyFields(fields)
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	if _, ok := c[id]; ok {
		return ErrAlreadyExists
	}
	c[id] = copyFields(fields)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.coll(collection), id)
	return nil
}

func (s *MemoryStore) QueryEquals(ctx context.Context, collection, field string, value any, limit int) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Document
	for _, id := range ids {
		if c[id][field] == value {
			out = append(out, Document{ID: id, Fields: copyFields(c[id])})
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
