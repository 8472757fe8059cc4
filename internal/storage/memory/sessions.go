package memory

import (
	"context"
	"sync"
	"time"

	"rentListings/internal/models"
	"rentListings/internal/storage"
)

type pending struct {
	v       models.Verification
	expires time.Time
}

// Sessions is an in-process SessionStore.
type Sessions struct {
	mu        sync.Mutex
	revoked   map[string]time.Time
	verifying map[string]pending
	now       func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		revoked:   make(map[string]time.Time),
		verifying: make(map[string]pending),
		now:       time.Now,
	}
}

func (s *Sessions) RevokeToken(_ context.Context, tokenId string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.revoked[tokenId] = s.now().Add(ttl)
	return nil
}

func (s *Sessions) IsTokenRevoked(_ context.Context, tokenId string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[tokenId]
	if !ok {
		return false, nil
	}
	if s.now().After(until) {
		delete(s.revoked, tokenId)
		return false, nil
	}
	return true, nil
}

func (s *Sessions) SaveVerification(_ context.Context, token string, v models.Verification, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.verifying[token] = pending{v: v, expires: s.now().Add(ttl)}
	return nil
}

func (s *Sessions) ConsumeVerification(_ context.Context, token string) (models.Verification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.verifying[token]
	if !ok {
		return models.Verification{}, storage.ErrNotFound
	}
	delete(s.verifying, token)

	if s.now().After(p.expires) {
		return models.Verification{}, storage.ErrNotFound
	}
	return p.v, nil
}
