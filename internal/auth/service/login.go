package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	jwttoken "printsettings/internal/jwt_token"
	"printsettings/internal/platform/metrics"
	"printsettings/internal/user/models"
	dErrors "printsettings/pkg/domain-errors"
	"printsettings/pkg/platform/audit"
	"printsettings/pkg/requestcontext"
)

var (
	errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password")
	errNoResponseChannel  = dErrors.New(dErrors.CodeUnavailable, "no active response channel")
)

// Login authenticates email/password and issues a token pair. The access token
// is returned in the result; the refresh token only goes to the cookie writer.
func (s *Service) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		span.SetStatus(codes.Error, "authentication failed")
		s.metrics.ObserveLogin(metrics.LoginFailed)
		s.authFailure(ctx, "", "invalid_credentials")
		return nil, errInvalidCredentials
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	access, err := s.issuePair(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveLogin(metrics.LoginSucceeded)
	s.emit(ctx, audit.Event{
		UserID:  user.ID,
		Subject: user.ID,
		Action:  string(audit.EventLoginSucceeded),
	})
	return &models.AuthResult{
		Authenticated: true,
		AccessToken:   access,
		User:          user.Public(),
	}, nil
}

// issuePair issues access and refresh tokens for userID, each with its own
// token id, attaches the refresh token as a cookie and returns the access token.
func (s *Service) issuePair(ctx context.Context, userID string) (string, error) {
	if s.cookies == nil {
		return "", errNoResponseChannel
	}
	access, err := s.tokens.IssueAccess(jwttoken.NewClaims(userID, false))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	refresh, err := s.tokens.IssueRefresh(jwttoken.NewClaims(userID, true))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue refresh token")
	}

	expires := requestcontext.Now(ctx).Add(s.tokens.RefreshTokenTTL())
	if err := s.cookies.SetRefreshToken(ctx, refresh, expires); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			return "", err
		}
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "no active response channel")
	}
	return access, nil
}

func (s *Service) authFailure(ctx context.Context, userID, reason string) {
	s.logger.WarnContext(ctx, "authentication failed",
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Subject: userID,
		Action:  string(audit.EventAuthFailed),
		Reason:  reason,
	})
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
