package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"printsettings/internal/user/models"
	"printsettings/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists users in PostgreSQL. Ids come from gen_random_uuid().
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store. The schema is owned by
// the migrations in internal/platform/postgres.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_digest)
		VALUES ($1, $2)
		RETURNING id
	`
	var id uuid.UUID
	if err := s.db.QueryRowContext(ctx, query, user.Email, user.PasswordDigest).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert user: %w", sentinel.ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &models.User{ID: id.String(), Email: user.Email, PasswordDigest: user.PasswordDigest}, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, sentinel.ErrNotFound
	}
	return s.findOne(ctx, `SELECT id, email, password_digest FROM users WHERE id = $1`, parsed)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `SELECT id, email, password_digest FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		id   uuid.UUID
		user models.User
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&id, &user.Email, &user.PasswordDigest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	user.ID = id.String()
	return &user, nil
}

// Replace only counts as a modification when the stored row actually changes,
// matching the modified-count semantics of the document store.
func (s *PostgresStore) Replace(ctx context.Context, user *models.User) (bool, error) {
	parsed, err := uuid.Parse(user.ID)
	if err != nil {
		return false, nil
	}
	query := `
		UPDATE users
		SET email = $2, password_digest = $3, updated_at = now()
		WHERE id = $1
		  AND (email, password_digest) IS DISTINCT FROM ($2, $3)
	`
	result, err := s.db.ExecContext(ctx, query, parsed, user.Email, user.PasswordDigest)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("replace user: %w", sentinel.ErrConflict)
		}
		return false, fmt.Errorf("replace user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("replace user: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, parsed)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
