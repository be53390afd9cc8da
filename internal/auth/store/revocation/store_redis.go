package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Redis key prefix for revoked tokens
const revokedTokenKeyPrefix = "trl:jti:"

// RedisTRL shares revocation state between instances. Entries expire through
// Redis key TTLs.
type RedisTRL struct {
	client   *redis.Client
	observer prometheus.Observer
}

type RedisTRLOption func(*RedisTRL)

// WithLatencyObserver records IsRevoked latency in milliseconds.
func WithLatencyObserver(o prometheus.Observer) RedisTRLOption {
	return func(trl *RedisTRL) {
		trl.observer = o
	}
}

func NewRedisTRL(client *redis.Client, opts ...RedisTRLOption) *RedisTRL {
	trl := &RedisTRL{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

// RevokeToken adds a token to the revocation list with TTL.
func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	return t.RevokeTokens(ctx, []string{jti}, ttl)
}

// RevokeTokens revokes several tokens in one pipeline round trip.
func (t *RedisTRL) RevokeTokens(ctx context.Context, jtis []string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	jtis = nonEmpty(jtis)
	if len(jtis) == 0 {
		return nil
	}
	pipe := t.client.Pipeline()
	for _, jti := range jtis {
		// the key's existence is the revocation; the value is a marker
		pipe.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Consume revokes jti with SET NX and reports whether this call created the
// key, i.e. whether the token was still active.
func (t *RedisTRL) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if err := validateTTL(ttl); err != nil {
		return false, err
	}
	if jti == "" {
		return false, nil
	}
	return t.client.SetNX(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Result()
}

// IsRevoked reports false when the key is absent or already expired.
func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if t.observer != nil {
		start := time.Now()
		defer func() {
			t.observer.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
		}()
	}

	if jti == "" {
		return false, nil
	}
	_, err := t.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
