// Package token mints and stores the single-use result tokens handed back
// to calling applications after a completed authentication attempt.
package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/datanav/velruse/internal/domain"
	"github.com/datanav/velruse/internal/repository"
)

// tokenBytes sets token entropy. 32 bytes keeps the opaque string outside
// guessing range; the token is a capability, not a display id.
const tokenBytes = 32

// Generate produces a cryptographically unpredictable opaque token.
func Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Exchange stores result envelopes against freshly minted tokens and serves
// their one-time retrieval.
type Exchange struct {
	store repository.KeyValueStore
	ttl   time.Duration
}

// NewExchange wires the exchange over the keyed storage collaborator.
func NewExchange(store repository.KeyValueStore, ttl time.Duration) *Exchange {
	return &Exchange{store: store, ttl: ttl}
}

// Issue mints a new token and stores the result envelope against it.
func (e *Exchange) Issue(ctx context.Context, result domain.Result) (string, error) {
	tok, err := Generate()
	if err != nil {
		return "", err
	}
	if err := e.store.Store(ctx, tok, result, e.ttl); err != nil {
		return "", fmt.Errorf("store result: %w", err)
	}
	return tok, nil
}

// Redeem consumes the token, returning the stored envelope at most once.
func (e *Exchange) Redeem(ctx context.Context, tok string) (*domain.Result, error) {
	var result domain.Result
	found, err := e.store.Take(ctx, tok, &result)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &result, nil
}

// Delete discards a stored envelope without redeeming it.
func (e *Exchange) Delete(ctx context.Context, tok string) error {
	return e.store.Delete(ctx, tok)
}
