package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/apiclient"
	"github.com/noah-isme/sma-portal/internal/repository"
	"github.com/noah-isme/sma-portal/internal/service"
	"github.com/noah-isme/sma-portal/pkg/cache"
	"github.com/noah-isme/sma-portal/pkg/config"
	"github.com/noah-isme/sma-portal/pkg/database"
	"github.com/noah-isme/sma-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logr := logger.NewCLI(os.Getenv("PORTALCTL_LOG_LEVEL"))
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	overrides, closeStore, err := openOverrideStore(ctx, cfg, logr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open override store: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	sessionSvc := service.NewSessionService(repository.NewFileSessionRepository(cfg.Session.File), nil, logr)
	client := apiclient.New(apiclient.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout}, sessionSvc, logr)
	patcher := service.NewOverridePatcher(client, overrides, service.PolicyForMaxAge(cfg.Overrides.MaxAge), nil, logr)

	validate := validator.New()
	attendanceSvc := service.NewAttendanceService(client, client, client, sessionSvc, validate, logr)
	cli := &commandLine{
		auth:        service.NewAuthService(client, sessionSvc, validate, logr),
		schedule:    service.NewScheduleService(client, sessionSvc, validate, logr),
		assignments: service.NewAssignmentService(patcher, client, client, sessionSvc, validate, logr),
		attendance:  attendanceSvc,
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	if err := cli.run(ctx, os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// openOverrideStore keeps overrides in a local file unless a shared redis or postgres store is
// configured.
func openOverrideStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (overrideStore, func(), error) {
	switch cfg.Overrides.Store {
	case config.OverrideStoreRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisOverrideRepository(client, cfg.Overrides.RedisKey, logr), func() { _ = client.Close() }, nil
	case config.OverrideStorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgresOverrideRepository(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil
	default:
		return repository.NewFileOverrideRepository(cfg.Overrides.File), func() {}, nil
	}
}
