package testutil

import (
	"context"
	"net/http"

	"printsettings/pkg/requestcontext"
)

// WithPrincipal attaches a principal for userID to the request context, the
// way the auth middleware does for a valid access token.
func WithPrincipal(req *http.Request, userID, tokenID string) *http.Request {
	return req.WithContext(PrincipalContext(req.Context(), userID, tokenID))
}

// PrincipalContext is WithPrincipal for code that works on contexts directly,
// such as resolvers executed without HTTP.
func PrincipalContext(ctx context.Context, userID, tokenID string) context.Context {
	if userID == "" {
		return ctx
	}
	return requestcontext.WithPrincipal(ctx, requestcontext.Principal{
		Subject: userID,
		UserID:  userID,
		TokenID: tokenID,
	})
}

// WithBearer sets the Authorization header to a bearer token.
func WithBearer(req *http.Request, token string) *http.Request {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
