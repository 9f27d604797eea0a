package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/staffplan-api/api/swagger"
	"github.com/noah-isme/staffplan-api/internal/handler"
	internalmiddleware "github.com/noah-isme/staffplan-api/internal/middleware"
	"github.com/noah-isme/staffplan-api/internal/repository"
	"github.com/noah-isme/staffplan-api/internal/service"
	"github.com/noah-isme/staffplan-api/internal/timeline"
	"github.com/noah-isme/staffplan-api/pkg/cache"
	"github.com/noah-isme/staffplan-api/pkg/config"
	"github.com/noah-isme/staffplan-api/pkg/database"
	"github.com/noah-isme/staffplan-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/staffplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/staffplan-api/pkg/middleware/requestid"
	"github.com/noah-isme/staffplan-api/pkg/storage"
)

// @title Staff Planning API
// @version 1.0.0
// @description Allocation checks, overallocation reports and timeline layout over a read-only staffing snapshot.
// @BasePath /api/v1
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

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "driver", cfg.Database.Driver, "error", err)
	}
	defer db.Close()

	if cfg.Database.Driver == config.DriverSQLite {
		if err := repository.EnsureSchema(ctx, db); err != nil {
			logr.Sugar().Fatalw("failed to apply schema", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	r, exportJobs, err := newRouter(cfg, logr, db, redisClient)
	if err != nil {
		logr.Sugar().Fatalw("failed to build router", "error", err)
	}
	jobsCtx, stopJobs := context.WithCancel(ctx)
	exportJobs.Start(jobsCtx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	logr.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	stopJobs()
	exportJobs.Stop()
}

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) (*gin.Engine, *service.ExportJobService, error) {
	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, "staffplan", logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Planning.CacheTTL, logr, redisClient != nil)
	validate := service.NewValidator()

	people := repository.NewPersonRepository(db)
	projects := repository.NewProjectRepository(db)
	assignments := repository.NewAssignmentRepository(db)

	allocationSvc := service.NewAllocationService(service.AllocationServiceParams{
		People:      people,
		Assignments: assignments,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
		Config: service.AllocationServiceConfig{
			MaxRangeDays: cfg.Planning.MaxRangeDays,
			CacheTTL:     cfg.Planning.CacheTTL,
		},
	})
	timelineSvc := service.NewTimelineService(service.TimelineServiceParams{
		People:      people,
		Projects:    projects,
		Assignments: assignments,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
		Config: service.TimelineServiceConfig{
			Layout:          layoutConfig(cfg.Layout),
			DefaultDayWidth: cfg.Planning.DefaultDayWidth,
			MaxRangeDays:    cfg.Planning.MaxRangeDays,
			CacheTTL:        cfg.Planning.CacheTTL,
		},
	})
	exportSvc := service.NewExportService(allocationSvc, service.ExportConfig{Title: cfg.Exports.Title}, logr)

	disk, err := storage.NewDisk(cfg.Exports.Dir)
	if err != nil {
		return nil, nil, err
	}
	secret := cfg.Exports.SigningSecret
	if secret == "" {
		secret = uuid.NewString()
		logr.Warn("EXPORT_SIGNING_SECRET not set, download links will not survive a restart")
	}
	exportJobs := service.NewExportJobService(service.ExportJobParams{
		Renderer: exportSvc,
		Store:    disk,
		Signer:   storage.NewSigner(secret, cfg.Exports.ResultTTL),
		Logger:   logr,
		Config: service.ExportJobConfig{
			Workers:         cfg.Exports.Workers,
			ResultTTL:       cfg.Exports.ResultTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			DownloadPath:    cfg.APIPrefix + "/reports/overallocation/downloads",
		},
	})

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}

	allocationHandler := handler.NewAllocationHandler(allocationSvc)
	reportHandler := handler.NewReportHandler(allocationSvc, exportSvc)
	exportJobHandler := handler.NewExportJobHandler(exportJobs)
	timelineHandler := handler.NewTimelineHandler(timelineSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.WithResponseMeta())
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/allocations/check", allocationHandler.Check)
	api.GET("/people/:id/allocations", allocationHandler.DailyTotals)
	api.GET("/people/:id/allocations/:day", allocationHandler.Breakdown)

	reports := api.Group("/reports", internalmiddleware.Feature("overallocation_reports", cfg.Planning.ReportsEnabled))
	reports.GET("/overallocation", reportHandler.Overallocation)
	exports := reports.Group("/overallocation", internalmiddleware.Feature("exports", cfg.Exports.Enabled))
	exports.GET("/export", reportHandler.Export)
	exports.POST("/exports", exportJobHandler.Submit)
	exports.GET("/exports/:id", exportJobHandler.Status)
	exports.GET("/downloads/:token", exportJobHandler.Download)

	timelineGroup := api.Group("/timeline", internalmiddleware.Feature("timeline", cfg.Planning.TimelineEnabled))
	timelineGroup.GET("", timelineHandler.Timeline)
	timelineGroup.POST("/layout", timelineHandler.Layout)
	timelineGroup.POST("/snap", timelineHandler.Snap)
	timelineGroup.POST("/selection", timelineHandler.Selection)
	timelineGroup.POST("/expand", timelineHandler.Expand)

	return r, exportJobs, nil
}

func layoutConfig(cfg config.LayoutConfig) timeline.LayoutConfig {
	return timeline.LayoutConfig{
		MinBarWidthPx:     cfg.MinBarWidthPx,
		BarHeightPx:       cfg.BarHeightPx,
		BarSpacingPx:      cfg.BarSpacingPx,
		BasePaddingPx:     cfg.BasePaddingPx,
		MinRowHeightPx:    cfg.MinRowHeightPx,
		MaxLanes:          cfg.MaxLanes,
		VisibleMarginPx:   cfg.VisibleMarginPx,
		StickyLookaheadPx: cfg.StickyLookaheadPx,
		StickyOffsetPx:    cfg.StickyOffsetPx,
		MinLabelWidthPx:   cfg.MinLabelWidthPx,
	}
}
