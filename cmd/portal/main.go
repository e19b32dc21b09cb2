package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-portal/api/swagger"
	"github.com/noah-isme/sma-portal/internal/apiclient"
	"github.com/noah-isme/sma-portal/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-portal/internal/middleware"
	"github.com/noah-isme/sma-portal/internal/service"
	"github.com/noah-isme/sma-portal/pkg/config"
	"github.com/noah-isme/sma-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-portal/pkg/middleware/requestid"
)

// @title SMA Portal
// @version 1.0.0
// @description Browser-facing portal for schedules, assignments and attendance over the university REST backend.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	infra, err := openInfra(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init stores", "error", err)
	}
	defer infra.Close()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	sessionSvc := service.NewSessionService(infra.sessions, metricsSvc, logr)
	client := apiclient.New(apiclient.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout}, sessionSvc, logr, apiclient.WithMetrics(metricsSvc))
	patcher := service.NewOverridePatcher(client, infra.overrides, service.PolicyForMaxAge(cfg.Overrides.MaxAge), metricsSvc, logr)

	validate := validator.New()
	authSvc := service.NewAuthService(client, sessionSvc, validate, logr)
	scheduleSvc := service.NewScheduleService(client, sessionSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(patcher, client, client, sessionSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(client, client, client, sessionSvc, validate, logr)
	exportSvc := service.NewExportService(attendanceSvc, logr)

	cookieStore, err := internalmiddleware.NewCookieStore(internalmiddleware.CookieStoreOptions{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.SecureCookie,
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to init session cookie", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(sessions.Sessions(cfg.Session.CookieName, cookieStore))
	r.Use(internalmiddleware.BindSession())

	loginLimit := internalmiddleware.NewTokenBucket(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginPerMinute)

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Profile:     handler.NewProfileHandler(authSvc),
		Schedule:    handler.NewScheduleHandler(scheduleSvc),
		Assignments: handler.NewAssignmentHandler(assignmentSvc),
		Attendance:  handler.NewAttendanceHandler(attendanceSvc, exportSvc),
		Groups:      handler.NewGroupHandler(client),
		Metrics:     handler.NewMetricsHandler(metricsSvc, infra.checks),
	}, handler.RouteOptions{
		Guard:         internalmiddleware.RequireSession(sessionSvc),
		LoginLimit:    loginLimit.Middleware(),
		ExposeMetrics: cfg.Metrics.Enabled,
		AuditLogger:   logr.Named("audit"),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"backend", cfg.Backend.BaseURL,
		"session_backend", cfg.Session.Backend,
		"override_store", cfg.Overrides.Store,
	)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
