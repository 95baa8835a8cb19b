// Package pkce holds in-flight OAuth authorization attempts. Each issued
// state token maps to one code verifier, is consumable exactly once, and
// expires after a fixed TTL to close the replay window.
package pkce

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// TTL bounds the lifetime of a pending authorization. It doubles as the
// sweep interval of the in-memory backend.
const TTL = 10 * time.Minute

const (
	stateBytes    = 32
	verifierBytes = 96
)

// ErrStateNotFound covers unknown, expired, and already-consumed states
// alike so a caller cannot distinguish them.
var ErrStateNotFound = errors.New("pkce: state not found")

// Challenge is one issued authorization attempt. CodeChallenge is the
// S256 derivation of CodeVerifier sent to the authorization server.
type Challenge struct {
	State         string
	CodeVerifier  string
	CodeChallenge string
}

// Store issues and consumes pending authorization attempts. Consume removes
// the state atomically; a second consume of the same state fails with
// ErrStateNotFound.
type Store interface {
	Issue(ctx context.Context) (*Challenge, error)
	Consume(ctx context.Context, state string) (string, error)
	Close() error
}

func newChallenge() (*Challenge, error) {
	state, err := randomToken(stateBytes)
	if err != nil {
		return nil, err
	}
	verifier, err := randomToken(verifierBytes)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(verifier))
	return &Challenge{
		State:         state,
		CodeVerifier:  verifier,
		CodeChallenge: base64.RawURLEncoding.EncodeToString(sum[:]),
	}, nil
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("pkce: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
