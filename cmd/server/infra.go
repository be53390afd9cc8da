package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	authservice "printsettings/internal/auth/service"
	"printsettings/internal/auth/store/revocation"
	"printsettings/internal/platform/config"
	"printsettings/internal/platform/metrics"
	"printsettings/internal/platform/mongodb"
	"printsettings/internal/platform/postgres"
	"printsettings/internal/platform/redis"
	httptransport "printsettings/internal/transport/http"
	userservice "printsettings/internal/user/service"
	"printsettings/internal/user/store"
	"printsettings/pkg/platform/audit"
	auditkafka "printsettings/pkg/platform/audit/store/kafka"
	auditmemory "printsettings/pkg/platform/audit/store/memory"
)

// infra holds the backing services selected by configuration.
type infra struct {
	userStore   userservice.Store
	revocations authservice.RevocationList
	auditStore  audit.Store
	health      map[string]httptransport.HealthCheck
	// purge is set when revocations live in Postgres and need periodic cleanup.
	purge func(context.Context) (int64, error)

	db    *sql.DB
	mongo *mongo.Client
	redis *redis.Client
	kafka *auditkafka.Store
}

// connect opens the configured backends. On error everything opened so far
// is closed again.
func connect(ctx context.Context, cfg config.Server, m *metrics.Metrics, log *slog.Logger) (_ *infra, err error) {
	in := &infra{health: map[string]httptransport.HealthCheck{}}
	defer func() {
		if err != nil {
			in.close(log)
		}
	}()

	switch cfg.Store.Backend {
	case config.StoreMongo:
		in.mongo, err = mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		in.userStore, err = store.NewMongo(ctx, mongodb.UserCollection(in.mongo, cfg.Mongo))
		if err != nil {
			return nil, fmt.Errorf("mongo user store: %w", err)
		}
		in.health["mongo"] = func(ctx context.Context) error { return in.mongo.Ping(ctx, nil) }
	case config.StorePostgres:
		if err = in.openPostgres(ctx, cfg.Postgres); err != nil {
			return nil, err
		}
		in.userStore = store.NewPostgres(in.db)
	default:
		in.userStore = store.NewInMemory()
	}

	in.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	switch {
	case in.redis != nil:
		in.revocations = revocation.NewRedisTRL(in.redis.Client, revocation.WithLatencyObserver(m.RevocationObserver()))
		in.health["redis"] = in.redis.Health
	case in.db != nil:
		trl := revocation.NewPostgresTRL(in.db)
		in.revocations = trl
		in.purge = trl.PurgeExpired
	default:
		in.revocations = revocation.NewInMemoryTRL()
	}

	if len(cfg.Kafka.Brokers) > 0 {
		in.kafka, err = auditkafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, err
		}
		in.auditStore = in.kafka
	} else {
		in.auditStore = auditmemory.NewInMemoryStore()
	}

	log.Info("backends ready",
		"user_store", cfg.Store.Backend,
		"revocations", fmt.Sprintf("%T", in.revocations),
		"audit", fmt.Sprintf("%T", in.auditStore),
	)
	return in, nil
}

func (in *infra) openPostgres(ctx context.Context, cfg config.PostgresConfig) error {
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return err
	}
	in.db = db
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	in.health["postgres"] = db.PingContext
	return nil
}

func (in *infra) close(log *slog.Logger) {
	ctx := context.Background()
	if in.kafka != nil {
		if err := in.kafka.Close(ctx); err != nil {
			log.Warn("closing kafka audit store", "error", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
	if in.mongo != nil {
		if err := in.mongo.Disconnect(ctx); err != nil {
			log.Warn("closing mongodb", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			log.Warn("closing postgres", "error", err)
		}
	}
}
