package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/intern-rotation-api/api/swagger"
	"github.com/noah-isme/intern-rotation-api/internal/handler"
	"github.com/noah-isme/intern-rotation-api/internal/middleware"
	"github.com/noah-isme/intern-rotation-api/internal/models"
	"github.com/noah-isme/intern-rotation-api/internal/repository"
	"github.com/noah-isme/intern-rotation-api/internal/service"
	"github.com/noah-isme/intern-rotation-api/pkg/cache"
	"github.com/noah-isme/intern-rotation-api/pkg/config"
	"github.com/noah-isme/intern-rotation-api/pkg/database"
	"github.com/noah-isme/intern-rotation-api/pkg/jobs"
	"github.com/noah-isme/intern-rotation-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/intern-rotation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/intern-rotation-api/pkg/middleware/requestid"
	"github.com/noah-isme/intern-rotation-api/pkg/storage"
)

// @title Intern Rotation API
// @version 1.0.0
// @description Scheduling engine for laboratory intern rotations
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional: with a nil client the cache repository degrades to
	// a no-op miss on every read.
	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, schedule caching disabled", "error", err)
	} else {
		redisClient = client
	}
	scheduleCache := repository.NewCacheRepository(redisClient, logr)
	defer scheduleCache.Close() //nolint:errcheck

	unitRepo := repository.NewUnitRepository(db)
	internRepo := repository.NewInternRepository(db)
	rotationRepo := repository.NewRotationRepository(db)
	reasonRepo := repository.NewExtensionReasonRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	userRepo := repository.NewUserRepository(db)

	metricsSvc := service.NewMetricsService()
	settingSvc := service.NewSettingService(settingRepo, logr)
	locks := service.NewInternLocks()

	// Rotation and extension services share the per-intern locks so an
	// extension resize never races a concurrent advance.
	rotationSvc := service.NewRotationService(internRepo, unitRepo, rotationRepo, settingSvc, scheduleCache, metricsSvc, locks, nil, logr, cfg.Rotation)
	extensionSvc := service.NewExtensionService(internRepo, unitRepo, rotationRepo, reasonRepo, scheduleCache, metricsSvc, locks, nil, logr, cfg.Rotation)
	internSvc := service.NewInternService(internRepo, rotationSvc, scheduleCache, nil, logr, cfg.Rotation)
	unitSvc := service.NewUnitService(unitRepo, rotationRepo, nil, logr)
	authSvc := service.NewAuthService(userRepo, nil, logr, cfg.JWT)

	var exportArchive *storage.Archive
	var downloadSigner *storage.DownloadSigner
	if cfg.Export.Enabled {
		if archive, err := storage.NewArchive(cfg.Export.ArchiveDir); err != nil {
			logr.Sugar().Warnw("export archive unavailable", "error", err)
		} else {
			exportArchive = archive
			downloadSigner = storage.NewDownloadSigner(cfg.JWT.Secret, cfg.Export.DownloadTTL)
		}
	}
	exportSvc := service.NewExportService(internRepo, unitRepo, rotationRepo, exportArchive, downloadSigner, logr)

	advanceQueue := jobs.NewQueue("advance", func(ctx context.Context, job jobs.Job) error {
		result := rotationSvc.AdvanceAll(ctx)
		logr.Sugar().Infow("batch advance finished",
			"job_id", job.ID,
			"succeeded", result.Succeeded,
			"created", result.Created,
			"failed", len(result.Failed))
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Advance.Workers,
		MaxRetries: cfg.Advance.MaxRetries,
		RetryDelay: cfg.Advance.RetryDelay,
		Logger:     logr,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	unitHandler := handler.NewUnitHandler(unitSvc)
	internHandler := handler.NewInternHandler(internSvc, rotationSvc, extensionSvc)
	rotationHandler := handler.NewRotationHandler(rotationSvc, advanceQueue)
	exportHandler := handler.NewExportHandler(exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator)

	units := protected.Group("/units")
	units.GET("", unitHandler.List)
	units.GET("/coverage", unitHandler.Coverage)
	units.GET("/:id", unitHandler.Get)
	units.POST("", admin, middleware.Audit(userRepo, "create", "unit"), unitHandler.Create)
	units.PUT("/:id", admin, middleware.Audit(userRepo, "update", "unit"), unitHandler.Update)
	units.DELETE("/:id", admin, middleware.Audit(userRepo, "delete", "unit"), unitHandler.Delete)

	interns := protected.Group("/interns")
	interns.GET("", internHandler.List)
	interns.GET("/:id", internHandler.Get)
	interns.GET("/:id/schedule", internHandler.Schedule)
	interns.GET("/:id/status", internHandler.Status)
	interns.GET("/:id/extension", internHandler.ExtensionHistory)
	interns.POST("", staff, middleware.Audit(userRepo, "create", "intern"), internHandler.Create)
	interns.PUT("/:id", staff, middleware.Audit(userRepo, "update", "intern"), internHandler.Update)
	interns.DELETE("/:id", admin, middleware.Audit(userRepo, "delete", "intern"), internHandler.Delete)
	interns.POST("/:id/advance", staff, internHandler.Advance)
	interns.PUT("/:id/extension", staff, middleware.Audit(userRepo, "extend", "intern"), internHandler.ApplyExtension)
	interns.POST("/:id/rotations/generate", staff, middleware.Audit(userRepo, "generate", "intern"), internHandler.GenerateRotations)

	rotations := protected.Group("/rotations")
	rotations.POST("", staff, middleware.Audit(userRepo, "create", "rotation"), rotationHandler.Create)
	rotations.POST("/advance", staff, rotationHandler.AdvanceAll)
	rotations.PUT("/:id/unit", staff, middleware.Audit(userRepo, "reassign", "rotation"), rotationHandler.Reassign)
	rotations.DELETE("/:id", staff, middleware.Audit(userRepo, "delete", "rotation"), rotationHandler.Delete)

	if cfg.Export.Enabled {
		protected.GET("/exports/roster", exportHandler.Roster)
		protected.POST("/exports/roster/archive", staff, exportHandler.Archive)
		// Download is authenticated by its signed token alone.
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	advanceQueue.Start(ctx)
	defer advanceQueue.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
