package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"printsettings/internal/platform/metrics"
	"printsettings/internal/user/models"
	dErrors "printsettings/pkg/domain-errors"
	"printsettings/pkg/platform/audit"
	"printsettings/pkg/platform/sentinel"
	"printsettings/pkg/requestcontext"
)

// ErrUserNotFound is the only failure Find and Authenticate report. A miss, a
// wrong password and a store outage are indistinguishable to callers.
var ErrUserNotFound = dErrors.New(dErrors.CodeNotFound, "user not found")

// Store is the persistence contract every user backend satisfies.
type Store interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Replace(ctx context.Context, user *models.User) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the credential store: it owns user creation, lookup, replacement
// and password verification on top of a Store.
type Service struct {
	store   Store
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
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

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("printsettings/internal/user/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find looks a user up by id or email. It never surfaces store failures; they
// are logged and reported as ErrUserNotFound.
func (s *Service) Find(ctx context.Context, key string, kind models.SearchKind) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "user.Find", trace.WithAttributes(attribute.String("search.kind", kind.String())))
	defer span.End()

	if key == "" {
		return nil, ErrUserNotFound
	}

	var (
		user *models.User
		err  error
	)
	switch kind {
	case models.ByID:
		user, err = s.store.FindByID(ctx, key)
	case models.ByEmail:
		user, err = s.store.FindByEmail(ctx, key)
	default:
		return nil, ErrUserNotFound
	}
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.storeFailure(ctx, span, "find", err)
		}
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Create validates the candidate, rejects a taken email and persists a new user
// with a store-assigned id. The returned projection includes the digest.
func (s *Service) Create(ctx context.Context, candidate models.Candidate) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "user.Create")
	defer span.End()

	if err := candidate.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid candidate")
		return nil, err
	}
	if _, err := s.Find(ctx, candidate.Email, models.ByEmail); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "User already exists")
	}

	user, err := models.NewUser(candidate.Email, candidate.Password)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "User already exists")
		}
		s.storeFailure(ctx, span, "insert", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	span.SetAttributes(attribute.String("user.id", stored.ID))
	s.metrics.IncrementUsersCreated()
	s.emit(ctx, audit.Event{
		UserID:  stored.ID,
		Subject: stored.ID,
		Action:  string(audit.EventUserCreated),
		Email:   stored.Email,
	})
	return stored, nil
}

// Update replaces the record matching user.ID. The digest must already be set.
// It reports true only when the store actually modified a record.
func (s *Service) Update(ctx context.Context, user *models.User) bool {
	ctx, span := s.tracer.Start(ctx, "user.Update")
	defer span.End()

	if user == nil || user.ID == "" || !user.HasPassword() {
		return false
	}
	modified, err := s.store.Replace(ctx, user)
	if err != nil {
		s.storeFailure(ctx, span, "replace", err)
		return false
	}
	if modified {
		s.emit(ctx, audit.Event{
			UserID:  user.ID,
			Subject: user.ID,
			Action:  string(audit.EventUserUpdated),
			Email:   user.Email,
		})
	}
	return modified
}

// UpdateCredentials validates a new email/password pair, digests the password
// and replaces the record with id. Validation failures are returned; store
// outcomes are reported through the boolean like Update.
func (s *Service) UpdateCredentials(ctx context.Context, id string, candidate models.Candidate) (bool, error) {
	if err := candidate.Validate(); err != nil {
		return false, err
	}
	digest, err := models.HashPassword(candidate.Password)
	if err != nil {
		return false, err
	}
	return s.Update(ctx, &models.User{ID: id, Email: candidate.Email, PasswordDigest: digest}), nil
}

// Remove deletes the record with id, reporting whether one was removed.
func (s *Service) Remove(ctx context.Context, id string) bool {
	ctx, span := s.tracer.Start(ctx, "user.Remove")
	defer span.End()

	if id == "" {
		return false
	}
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		s.storeFailure(ctx, span, "delete", err)
		return false
	}
	if removed {
		s.emit(ctx, audit.Event{
			UserID:  id,
			Subject: id,
			Action:  string(audit.EventUserDeleted),
		})
	}
	return removed
}

// Authenticate returns the user owning email when password verifies against
// the stored digest, and ErrUserNotFound otherwise.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "user.Authenticate")
	defer span.End()

	user, err := s.Find(ctx, email, models.ByEmail)
	if err != nil {
		models.RejectPassword(password)
		return nil, ErrUserNotFound
	}
	if !user.VerifyPassword(password) {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) storeFailure(ctx context.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, operation+" failed")
	s.metrics.IncrementStoreError(operation)
	s.logger.ErrorContext(ctx, "user store operation failed",
		"operation", operation,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
