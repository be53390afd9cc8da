// Package service turns credentials into session tokens: it authenticates,
// issues access and refresh tokens, rotates refresh tokens and revokes them.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks CredentialStore,TokenService,RevocationList,RefreshCookieWriter,AuditPublisher

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	jwttoken "printsettings/internal/jwt_token"
	"printsettings/internal/platform/metrics"
	"printsettings/internal/user/models"
	"printsettings/pkg/platform/audit"
)

type CredentialStore interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Find(ctx context.Context, key string, kind models.SearchKind) (*models.User, error)
}

type TokenService interface {
	IssueAccess(claims jwttoken.Claims) (string, error)
	IssueRefresh(claims jwttoken.Claims) (string, error)
	ValidateRefresh(token string) (*jwttoken.Claims, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

type RevocationList interface {
	RevokeTokens(ctx context.Context, jtis []string, ttl time.Duration) error
	// Consume revokes jti atomically, reporting false when it was already revoked.
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RefreshCookieWriter delivers the refresh token out-of-band on the response
// channel of the current request. Implementations return an unavailable
// domain error when ctx carries no response channel.
type RefreshCookieWriter interface {
	SetRefreshToken(ctx context.Context, token string, expires time.Time) error
	ClearRefreshToken(ctx context.Context) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TRLFailureMode decides what happens when the revocation list cannot be written.
type TRLFailureMode int

const (
	// TRLFailureModeWarn logs and carries on.
	TRLFailureModeWarn TRLFailureMode = iota
	// TRLFailureModeFail aborts the operation.
	TRLFailureModeFail
)

type Service struct {
	users   CredentialStore
	tokens  TokenService
	trl     RevocationList
	cookies RefreshCookieWriter
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer

	TRLFailureMode TRLFailureMode
}

type Option func(*Service)

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTRLFailureMode(mode TRLFailureMode) Option {
	return func(s *Service) {
		s.TRLFailureMode = mode
	}
}

func New(users CredentialStore, tokens TokenService, trl RevocationList, cookies RefreshCookieWriter, opts ...Option) *Service {
	s := &Service{
		users:   users,
		tokens:  tokens,
		trl:     trl,
		cookies: cookies,
		logger:  slog.Default(),
		tracer:  otel.Tracer("printsettings/internal/auth/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
