// Package session keeps the caller's correlation state alive across the
// provider redirect round trip. Only the opaque session id travels in the
// cookie; the recorded values live in the keyed store.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/datanav/velruse/internal/repository"
)

// Session holds the per-caller values that must survive the redirect.
type Session struct {
	ID       string `json:"id"`
	EndPoint string `json:"end_point"`
}

// GenerateID produces a cryptographically secure session id.
func GenerateID() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Store persists sessions in the keyed storage collaborator.
type Store struct {
	kv  repository.KeyValueStore
	ttl time.Duration
}

// NewStore wires the session store over the keyed storage.
func NewStore(kv repository.KeyValueStore, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

// Save writes the session, refreshing its TTL.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session: missing id")
	}
	return s.kv.Store(ctx, sess.ID, sess, s.ttl)
}

// Find returns the session or nil when absent or expired.
func (s *Store) Find(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}
	var sess Session
	found, err := s.kv.Retrieve(ctx, id, &sess)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &sess, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, id)
}
