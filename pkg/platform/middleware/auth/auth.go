package auth

//go:generate mockgen -source=auth.go -destination=mocks/mocks.go -package=mocks JWTValidator,TokenRevocationChecker,UserVerifier

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"printsettings/pkg/requestcontext"
)

// AccessTokenCookie is the cookie consulted when no bearer credential is sent.
const AccessTokenCookie = "access_token"

// JWTValidator validates an access token and returns its claims.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker reports whether a token id has been revoked.
type TokenRevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UserVerifier confirms the token's user still exists.
type UserVerifier interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	Subject string
	UserID  string
	JTI     string
}

// TokenFromRequest returns the bearer credential, falling back to the
// access_token cookie.
func TokenFromRequest(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate attaches a principal when the request carries a valid, unrevoked
// access token for an existing user. It never rejects: a request without a
// usable token continues anonymously and field-level checks decide the rest.
// revocations and users may be nil.
func Authenticate(validator JWTValidator, revocations TokenRevocationChecker, users UserVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "anonymous request - invalid token",
					"error", err,
					"request_id", requestID,
				)
				next.ServeHTTP(w, r)
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err,
						"request_id", requestID,
					)
					next.ServeHTTP(w, r)
					return
				}
				if revoked {
					logger.WarnContext(ctx, "anonymous request - token revoked",
						"jti", claims.JTI,
						"request_id", requestID,
					)
					next.ServeHTTP(w, r)
					return
				}
			}

			if users != nil {
				exists, err := users.UserExists(ctx, claims.UserID)
				if err != nil || !exists {
					logger.WarnContext(ctx, "anonymous request - token user not found",
						"user_id", claims.UserID,
						"request_id", requestID,
					)
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx = requestcontext.WithPrincipal(ctx, requestcontext.Principal{
				Subject: claims.Subject,
				UserID:  claims.UserID,
				TokenID: claims.JTI,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
