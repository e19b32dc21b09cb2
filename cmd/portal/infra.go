package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/handler"
	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/internal/repository"
	"github.com/noah-isme/sma-portal/pkg/cache"
	"github.com/noah-isme/sma-portal/pkg/config"
	"github.com/noah-isme/sma-portal/pkg/database"
)

type sessionStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, raw []byte) error
	Delete(ctx context.Context) error
}

type overrideStore interface {
	Get(ctx context.Context, assignmentID string) (*models.LocalOverride, error)
	All(ctx context.Context) (map[string]models.LocalOverride, error)
	Put(ctx context.Context, o models.LocalOverride) error
	Delete(ctx context.Context, assignmentID string) error
}

// infra holds the stores selected by configuration and the connections backing them.
type infra struct {
	sessions  sessionStore
	overrides overrideStore
	checks    map[string]handler.ReadinessCheck

	redis *redis.Client
	db    *sqlx.DB
}

func openInfra(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*infra, error) {
	in := &infra{checks: map[string]handler.ReadinessCheck{}}

	needRedis := cfg.Session.Backend == config.SessionBackendRedis || cfg.Overrides.Store == config.OverrideStoreRedis
	if needRedis {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		in.redis = client
		in.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	if cfg.Overrides.Store == config.OverrideStorePostgres {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.db = db
		in.checks["postgres"] = db.PingContext
	}

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		in.sessions = repository.NewRedisSessionRepository(in.redis, "portal:session:", cfg.Session.TTL)
	case config.SessionBackendMemory:
		in.sessions = repository.NewMemorySessionRepository(cfg.Session.TTL)
	case config.SessionBackendCookie, "":
		in.sessions = repository.NewCookieSessionRepository()
	default:
		in.Close()
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	switch cfg.Overrides.Store {
	case config.OverrideStoreMemory, "":
		in.overrides = repository.NewMemoryOverrideRepository()
	case config.OverrideStoreFile:
		in.overrides = repository.NewFileOverrideRepository(cfg.Overrides.File)
	case config.OverrideStoreRedis:
		in.overrides = repository.NewRedisOverrideRepository(in.redis, cfg.Overrides.RedisKey, logr)
	case config.OverrideStorePostgres:
		store := repository.NewPostgresOverrideRepository(in.db)
		if err := store.EnsureSchema(ctx); err != nil {
			in.Close()
			return nil, fmt.Errorf("prepare override table: %w", err)
		}
		in.overrides = store
	default:
		in.Close()
		return nil, fmt.Errorf("unknown override store %q", cfg.Overrides.Store)
	}

	logr.Info("stores ready",
		zap.String("session_backend", cfg.Session.Backend),
		zap.String("override_store", cfg.Overrides.Store),
	)
	return in, nil
}

func (in *infra) Close() {
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}
