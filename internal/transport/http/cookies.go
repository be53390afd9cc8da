package httptransport

import (
	"context"
	"net/http"
	"time"

	dErrors "printsettings/pkg/domain-errors"
)

// RefreshTokenCookie carries the refresh token. It is never part of a response body.
const RefreshTokenCookie = "refreshToken"

var errNoResponseChannel = dErrors.New(dErrors.CodeUnavailable, "no active response channel")

type responseChannelKey struct{}

type responseChannel struct {
	w http.ResponseWriter
	r *http.Request
}

// ResponseChannel exposes the response writer and the inbound request to code
// running deeper in the request, so cookies can be read and set from resolvers.
func ResponseChannel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), responseChannelKey{}, &responseChannel{w: w, r: r})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func channelFrom(ctx context.Context) (*responseChannel, bool) {
	ch, ok := ctx.Value(responseChannelKey{}).(*responseChannel)
	return ch, ok && ch != nil && ch.w != nil
}

// CookieJar reads and writes the refresh token cookie on the current request.
type CookieJar struct {
	secure bool
}

func NewCookieJar(secure bool) *CookieJar {
	return &CookieJar{secure: secure}
}

// SetRefreshToken attaches the refresh cookie to the response.
func (c *CookieJar) SetRefreshToken(ctx context.Context, token string, expires time.Time) error {
	ch, ok := channelFrom(ctx)
	if !ok {
		return errNoResponseChannel
	}
	http.SetCookie(ch.w, c.cookie(token, expires))
	return nil
}

// ClearRefreshToken expires the refresh cookie on the client.
func (c *CookieJar) ClearRefreshToken(ctx context.Context) error {
	ch, ok := channelFrom(ctx)
	if !ok {
		return errNoResponseChannel
	}
	cookie := c.cookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(ch.w, cookie)
	return nil
}

// RefreshToken returns the refresh token the client sent, or "".
func (c *CookieJar) RefreshToken(ctx context.Context) string {
	ch, ok := channelFrom(ctx)
	if !ok || ch.r == nil {
		return ""
	}
	cookie, err := ch.r.Cookie(RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *CookieJar) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
