package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authservice "printsettings/internal/auth/service"
	"printsettings/internal/graph"
	jwttoken "printsettings/internal/jwt_token"
	"printsettings/internal/platform/config"
	"printsettings/internal/platform/httpserver"
	"printsettings/internal/platform/logger"
	"printsettings/internal/platform/metrics"
	httptransport "printsettings/internal/transport/http"
	userservice "printsettings/internal/user/service"
	"printsettings/pkg/platform/audit/publisher"
)

const (
	shutdownTimeout  = 10 * time.Second
	auditBufferSize  = 1024
	trlPurgeInterval = 10 * time.Minute
	startupDeadline  = 30 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("printsettings exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	startCtx, cancel := context.WithTimeout(ctx, startupDeadline)
	backends, err := connect(startCtx, cfg, m, log)
	cancel()
	if err != nil {
		return err
	}
	defer backends.close(log)

	auditor := publisher.NewPublisher(backends.auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	users := userservice.New(backends.userStore,
		userservice.WithAuditPublisher(auditor),
		userservice.WithMetrics(m),
		userservice.WithLogger(log),
	)

	tokens, err := jwttoken.NewJWTService(jwttoken.Config{
		Secret:          cfg.Auth.JWTSecret,
		Issuer:          cfg.Auth.Issuer,
		Audience:        cfg.Auth.Audience,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	trlMode := authservice.TRLFailureModeWarn
	if cfg.IsProduction() {
		trlMode = authservice.TRLFailureModeFail
	}
	cookies := httptransport.NewCookieJar(cfg.Auth.CookieSecure)
	auth := authservice.New(users, tokens, backends.revocations, cookies,
		authservice.WithAuditPublisher(auditor),
		authservice.WithMetrics(m),
		authservice.WithLogger(log),
		authservice.WithTRLFailureMode(trlMode),
	)

	guard := graph.NewGuard(users, cfg.Auth.PublicOperations,
		graph.WithGuardMetrics(m),
		graph.WithGuardLogger(log),
	)
	schema, err := graph.NewSchema(users, auth, cookies, guard)
	if err != nil {
		return fmt.Errorf("build graphql schema: %w", err)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Schema:      schema,
		Tokens:      tokens,
		Users:       users,
		Revocations: backends.revocations,
		Metrics:     m.Handler(),
		Health:      backends.health,
		TrustProxy:  cfg.TrustProxyHeaders,
		Logger:      log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting printsettings",
			"addr", cfg.Addr,
			"env", cfg.Environment,
			"user_store", cfg.Store.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	if backends.purge != nil {
		g.Go(func() error {
			purgeLoop(gctx, backends.purge, trlPurgeInterval, log)
			return nil
		})
	}
	return g.Wait()
}

// purgeLoop deletes expired revocation rows until ctx is cancelled.
func purgeLoop(ctx context.Context, purge func(context.Context) (int64, error), every time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge(ctx)
			if err != nil {
				log.WarnContext(ctx, "failed to purge expired revocations", "error", err)
				continue
			}
			if n > 0 {
				log.DebugContext(ctx, "purged expired revocations", "count", n)
			}
		}
	}
}
