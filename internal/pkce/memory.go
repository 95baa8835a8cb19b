package pkce

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	verifier string
	issuedAt time.Time
}

// MemoryStore keeps pending authorizations in a process-local map. A
// janitor goroutine sweeps expired entries every TTL so memory stays
// bounded even for states that are never consumed.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	stop    chan struct{}
	once    sync.Once

	now func() time.Time // test hook
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) Issue(ctx context.Context) (*Challenge, error) {
	ch, err := newChallenge()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.entries[ch.State] = entry{verifier: ch.CodeVerifier, issuedAt: s.now()}
	s.mu.Unlock()
	return ch, nil
}

func (s *MemoryStore) Consume(ctx context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[state]
	if !ok {
		return "", ErrStateNotFound
	}
	delete(s.entries, state)
	// An entry the janitor has not reached yet is still expired.
	if s.now().Sub(e.issuedAt) > TTL {
		return "", ErrStateNotFound
	}
	return e.verifier, nil
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(TTL)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	cutoff := s.now().Add(-TTL)
	s.mu.Lock()
	for state, e := range s.entries {
		if e.issuedAt.Before(cutoff) {
			delete(s.entries, state)
		}
	}
	s.mu.Unlock()
}
