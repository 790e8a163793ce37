package store

import (
	"context"
	"sync"
	"time"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

const DefaultTicketTTL = 30 * time.Minute

type entry struct {
	serialized string
	deadline   time.Time
}

// InMemoryTicketStore keeps serialized tickets with a per-entry TTL.
// Superseded tickets are not deleted, they simply expire.
type InMemoryTicketStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	tickets map[string]entry
}

func NewInMemoryTicketStore(ttl time.Duration) *InMemoryTicketStore {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &InMemoryTicketStore{
		ttl:     ttl,
		tickets: make(map[string]entry),
	}
}

func (s *InMemoryTicketStore) Get(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.tickets[id]
	if !ok || time.Now().After(e.deadline) {
		return "", core.ErrTicketNotFound
	}
	return e.serialized, nil
}

func (s *InMemoryTicketStore) Set(_ context.Context, id, serialized string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets[id] = entry{
		serialized: serialized,
		deadline:   time.Now().Add(s.ttl),
	}
	return nil
}

// DeleteExpired drops entries past their deadline and reports how many.
func (s *InMemoryTicketStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var deleted int64
	for id, e := range s.tickets {
		if now.After(e.deadline) {
			delete(s.tickets, id)
			deleted++
		}
	}
	return deleted, nil
}
