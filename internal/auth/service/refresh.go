package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	jwttoken "printsettings/internal/jwt_token"
	"printsettings/internal/user/models"
	dErrors "printsettings/pkg/domain-errors"
	"printsettings/pkg/platform/audit"
	"printsettings/pkg/requestcontext"
)

var errInvalidRefreshToken = dErrors.New(dErrors.CodeUnauthorized, "Invalid refresh token")

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued for the same user, provided the user still exists.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Refresh")
	defer span.End()

	if refreshToken == "" {
		return nil, errInvalidRefreshToken
	}
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		span.SetStatus(codes.Error, "invalid refresh token")
		s.metrics.IncrementTokenRejected("refresh")
		s.authFailure(ctx, "", "invalid_refresh_token")
		return nil, errInvalidRefreshToken
	}
	span.SetAttributes(attribute.String("user.id", claims.UserID))

	// Consuming before issuing means only one of several concurrent
	// presentations of the same token can rotate it.
	active, err := s.trl.Consume(ctx, claims.ID, remaining(ctx, claims))
	if err != nil {
		// fail closed
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "unable to verify refresh token")
	}
	if !active {
		s.metrics.IncrementTokenRejected("refresh")
		s.authFailure(ctx, claims.UserID, "refresh_token_revoked")
		return nil, errInvalidRefreshToken
	}

	user, err := s.users.Find(ctx, claims.UserID, models.ByID)
	if err != nil {
		s.authFailure(ctx, claims.UserID, "user_not_found")
		return nil, errInvalidRefreshToken
	}

	access, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementTokenRefreshed()
	s.emit(ctx, audit.Event{
		UserID:  user.ID,
		Subject: user.ID,
		Action:  string(audit.EventTokenRefreshed),
	})
	return &models.AuthResult{
		Authenticated: true,
		AccessToken:   access,
		User:          user.Public(),
	}, nil
}

// Logout revokes the presented refresh token and the access token of the
// current principal, then clears the refresh cookie. It reports whether any
// token was revoked.
func (s *Service) Logout(ctx context.Context, refreshToken string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Logout")
	defer span.End()

	if s.cookies == nil {
		return false, errNoResponseChannel
	}

	var (
		userID  string
		revoked bool
	)
	if principal, ok := requestcontext.PrincipalFrom(ctx); ok && principal.TokenID != "" {
		userID = principal.UserID
		if err := s.revoke(ctx, []string{principal.TokenID}, s.tokens.AccessTokenTTL()); err != nil {
			return false, err
		}
		revoked = true
	}
	if refreshToken != "" {
		if claims, err := s.tokens.ValidateRefresh(refreshToken); err == nil && (userID == "" || claims.UserID == userID) {
			userID = claims.UserID
			if err := s.revoke(ctx, []string{claims.ID}, remaining(ctx, claims)); err != nil {
				return false, err
			}
			revoked = true
		}
	}

	if err := s.cookies.ClearRefreshToken(ctx); err != nil {
		return false, err
	}
	if revoked {
		s.emit(ctx, audit.Event{
			UserID:  userID,
			Subject: userID,
			Action:  string(audit.EventSessionRevoked),
			Reason:  "logout",
		})
	}
	return revoked, nil
}

func (s *Service) revoke(ctx context.Context, jtis []string, ttl time.Duration) error {
	if err := s.trl.RevokeTokens(ctx, jtis, ttl); err != nil {
		s.logger.ErrorContext(ctx, "failed to add token to revocation list",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.TRLFailureMode == TRLFailureModeFail {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add token to revocation list")
		}
	}
	return nil
}

// remaining is the time until claims expire, floored at one second so the
// revocation outlives any clock skew.
func remaining(ctx context.Context, claims *jwttoken.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return time.Second
	}
	left := claims.ExpiresAt.Sub(requestcontext.Now(ctx))
	if left < time.Second {
		return time.Second
	}
	return left
}
