package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresTRL persists revoked token ids in PostgreSQL. It backs deployments
// that run the user store on PostgreSQL without Redis.
type PostgresTRL struct {
	db    *sql.DB
	clock Clock
}

type PostgresTRLOption func(*PostgresTRL)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock Clock) PostgresTRLOption {
	return func(trl *PostgresTRL) {
		if clock != nil {
			trl.clock = clock
		}
	}
}

func NewPostgresTRL(db *sql.DB, opts ...PostgresTRLOption) *PostgresTRL {
	trl := &PostgresTRL{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

func (t *PostgresTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	return t.RevokeTokens(ctx, []string{jti}, ttl)
}

// RevokeTokens inserts all ids in a single statement via unnest.
func (t *PostgresTRL) RevokeTokens(ctx context.Context, jtis []string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	jtis = nonEmpty(jtis)
	if len(jtis) == 0 {
		return nil
	}
	query := `
		INSERT INTO token_revocations (jti, expires_at)
		SELECT unnest($1::text[]), $2
		ON CONFLICT (jti) DO UPDATE SET
			expires_at = EXCLUDED.expires_at
	`
	if _, err := t.db.ExecContext(ctx, query, jtis, t.clock().Add(ttl)); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// Consume revokes jti and reports whether it was still active. A row left
// behind by an expired revocation is taken over rather than counted.
func (t *PostgresTRL) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if err := validateTTL(ttl); err != nil {
		return false, err
	}
	if jti == "" {
		return false, nil
	}
	now := t.clock()
	query := `
		INSERT INTO token_revocations (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET
			expires_at = EXCLUDED.expires_at
		WHERE token_revocations.expires_at <= $3
		RETURNING jti
	`
	var consumed string
	err := t.db.QueryRowContext(ctx, query, jti, now.Add(ttl), now).Scan(&consumed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume token: %w", err)
	}
	return true, nil
}

func (t *PostgresTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var expiresAt time.Time
	err := t.db.QueryRowContext(ctx, `SELECT expires_at FROM token_revocations WHERE jti = $1`, jti).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return t.clock().Before(expiresAt), nil
}

// PurgeExpired deletes entries whose expiry has passed.
func (t *PostgresTRL) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := t.db.ExecContext(ctx, `DELETE FROM token_revocations WHERE expires_at <= $1`, t.clock())
	if err != nil {
		return 0, fmt.Errorf("purge token revocations: %w", err)
	}
	return result.RowsAffected()
}
