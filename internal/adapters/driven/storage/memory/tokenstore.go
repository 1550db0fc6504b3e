package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[domain.TokenKey]string
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[domain.TokenKey]string),
	}
}

// Get retrieves a stored value.
func (s *TokenStore) Get(_ context.Context, key domain.TokenKey) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tokens[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Put stores or replaces a value.
func (s *TokenStore) Put(_ context.Context, key domain.TokenKey, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = value
	return nil
}

// Delete removes a value.
func (s *TokenStore) Delete(_ context.Context, key domain.TokenKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}
