package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryTRL keeps revoked token ids in process memory. Entries expire lazily
// on lookup.
type InMemoryTRL struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	clock   Clock
}

type InMemoryTRLOption func(*InMemoryTRL)

func WithClock(clock Clock) InMemoryTRLOption {
	return func(trl *InMemoryTRL) {
		if clock != nil {
			trl.clock = clock
		}
	}
}

func NewInMemoryTRL(opts ...InMemoryTRLOption) *InMemoryTRL {
	trl := &InMemoryTRL{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(trl)
	}
	return trl
}

func (t *InMemoryTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	return t.RevokeTokens(ctx, []string{jti}, ttl)
}

func (t *InMemoryTRL) RevokeTokens(_ context.Context, jtis []string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	expiresAt := t.clock().Add(ttl)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, jti := range nonEmpty(jtis) {
		t.revoked[jti] = expiresAt
	}
	return nil
}

// Consume revokes jti and reports whether it was still active. Of several
// concurrent callers for the same jti exactly one sees true.
func (t *InMemoryTRL) Consume(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	if err := validateTTL(ttl); err != nil {
		return false, err
	}
	if jti == "" {
		return false, nil
	}
	now := t.clock()
	t.mu.Lock()
	defer t.mu.Unlock()
	if expiresAt, ok := t.revoked[jti]; ok && now.Before(expiresAt) {
		return false, nil
	}
	t.revoked[jti] = now.Add(ttl)
	return true, nil
}

func (t *InMemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiresAt, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	if !t.clock().Before(expiresAt) {
		delete(t.revoked, jti)
		return false, nil
	}
	return true, nil
}
