package pkce

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeDerivation(t *testing.T) {
	ch, err := newChallenge()
	require.NoError(t, err)

	// 32 random bytes for state, 96 for verifier, base64url without padding.
	stateRaw, err := base64.RawURLEncoding.DecodeString(ch.State)
	require.NoError(t, err)
	assert.Len(t, stateRaw, 32)

	verifierRaw, err := base64.RawURLEncoding.DecodeString(ch.CodeVerifier)
	require.NoError(t, err)
	assert.Len(t, verifierRaw, 96)

	sum := sha256.Sum256([]byte(ch.CodeVerifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), ch.CodeChallenge)
	assert.NotContains(t, ch.CodeChallenge, "=")
}

func TestIssueConsumeOnce(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	ch, err := s.Issue(ctx)
	require.NoError(t, err)

	verifier, err := s.Consume(ctx, ch.State)
	require.NoError(t, err)
	assert.Equal(t, ch.CodeVerifier, verifier)

	// Second consume of the same state must look like it never existed.
	_, err = s.Consume(ctx, ch.State)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestConsumeUnknownState(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	_, err := s.Consume(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestConsumeExpiredState(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	ch, err := s.Issue(ctx)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(TTL + time.Minute) }

	_, err = s.Consume(ctx, ch.State)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestSweepRemovesOldEntries(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	old, err := s.Issue(ctx)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(TTL + time.Minute) }
	fresh, err := s.Issue(ctx)
	require.NoError(t, err)

	s.sweep()

	s.mu.Lock()
	_, oldThere := s.entries[old.State]
	_, freshThere := s.entries[fresh.State]
	s.mu.Unlock()
	assert.False(t, oldThere)
	assert.True(t, freshThere)
}

// Concurrent consumers of the same state: exactly one wins.
func TestConcurrentConsume(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	ch, err := s.Issue(ctx)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := s.Consume(ctx, ch.State); err == nil {
				wins <- v
			}
		}()
	}
	wg.Wait()
	close(wins)

	var got []string
	for v := range wins {
		got = append(got, v)
	}
	require.Len(t, got, 1)
	assert.Equal(t, ch.CodeVerifier, got[0])
}
