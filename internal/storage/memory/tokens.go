package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"roomapi/internal/domain/models"
	"roomapi/internal/lib/clockwork"
	"roomapi/internal/storage"
)

// TokenStore holds the authoritative set of issued session tokens in process
// memory. All state is lost on restart; callers must re-login.
type TokenStore struct {
	clock  clockwork.Clock
	mu     sync.RWMutex
	tokens map[string]*models.SessionToken
}

func NewTokenStore(clock clockwork.Clock) *TokenStore {
	return &TokenStore{
		clock:  clock,
		tokens: make(map[string]*models.SessionToken),
	}
}

// Issue creates and stores a new token record for owner with the given TTL.
// It cannot fail: the id is a fresh UUID, so inserts never collide.
func (s *TokenStore) Issue(owner, displayName string, ttl time.Duration) models.SessionToken {
	now := s.clock.Now()
	token := models.SessionToken{
		ID:          uuid.New().String(),
		Owner:       owner,
		DisplayName: displayName,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}

	s.mu.Lock()
	s.tokens[token.ID] = &token
	s.mu.Unlock()

	return token
}

func (s *TokenStore) Find(id string) (models.SessionToken, error) {
	const op = "storage.memory.TokenStore.Find"

	s.mu.RLock()
	token, ok := s.tokens[id]
	if !ok {
		s.mu.RUnlock()
		return models.SessionToken{}, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
	}
	copied := *token
	s.mu.RUnlock()

	return copied, nil
}

// Revoke marks the token revoked in place. Revoking an already-revoked token
// is a no-op that still succeeds; an unknown id is an error.
func (s *TokenStore) Revoke(id string) error {
	const op = "storage.memory.TokenStore.Revoke"

	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
	}
	token.Revoked = true

	return nil
}

// Sweep drops expired token records. Validation re-checks expiry on every
// call, so this only bounds memory.
func (s *TokenStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, token := range s.tokens {
		if token.Expired(now) {
			delete(s.tokens, id)
			removed++
		}
	}

	return removed
}

func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
