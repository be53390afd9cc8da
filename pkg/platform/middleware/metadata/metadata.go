// Package metadata copies per-request client facts into requestcontext so
// services and the audit publisher can read them without touching HTTP types.
package metadata

import (
	"net"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"printsettings/pkg/requestcontext"
)

// ClientMetadata records the client IP, User-Agent and request id. Apply it
// after chi's RequestID middleware.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		if id := chimw.GetReqID(ctx); id != "" {
			ctx = requestcontext.WithRequestID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest returns the host part of r.RemoteAddr. Forwarding
// headers are never read here; chi's RealIP rewrites RemoteAddr when the
// deployment trusts its proxy.
func ClientIPFromRequest(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
