package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/graphql-go/graphql"

	jwttoken "printsettings/internal/jwt_token"
	"printsettings/pkg/platform/httputil"
	"printsettings/pkg/platform/middleware/auth"
	"printsettings/pkg/platform/middleware/metadata"
	"printsettings/pkg/platform/middleware/requesttime"
)

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// RouterConfig collects what the HTTP surface is built from. Revocations,
// Metrics and Health are optional. TrustProxy lets chi's RealIP rewrite the
// remote address from forwarding headers.
type RouterConfig struct {
	Schema      graphql.Schema
	Tokens      jwttoken.AccessValidator
	Users       UserFinder
	Revocations auth.TokenRevocationChecker
	Metrics     http.Handler
	Health      map[string]HealthCheck
	TrustProxy  bool
	Logger      *slog.Logger
}

// NewRouter wires /graphql, /healthz and /metrics behind the request middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthHandler(cfg.Health))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(ResponseChannel)
		r.Use(auth.Authenticate(
			jwttoken.NewJWTServiceAdapter(cfg.Tokens),
			cfg.Revocations,
			userVerifier{users: cfg.Users},
			logger,
		))
		NewGraphQLHandler(cfg.Schema, logger).Register(r)
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
