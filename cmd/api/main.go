package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hari13172/alumni-portal-api/api/swagger"
	"github.com/hari13172/alumni-portal-api/internal/handler"
	"github.com/hari13172/alumni-portal-api/internal/middleware"
	"github.com/hari13172/alumni-portal-api/internal/repository"
	"github.com/hari13172/alumni-portal-api/internal/service"
	"github.com/hari13172/alumni-portal-api/pkg/cache"
	"github.com/hari13172/alumni-portal-api/pkg/config"
	"github.com/hari13172/alumni-portal-api/pkg/database"
	"github.com/hari13172/alumni-portal-api/pkg/jobs"
	"github.com/hari13172/alumni-portal-api/pkg/logger"
	corsmiddleware "github.com/hari13172/alumni-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hari13172/alumni-portal-api/pkg/middleware/requestid"
	"github.com/hari13172/alumni-portal-api/pkg/storage"
)

// @title Alumni Portal API
// @version 1.0.0
// @description Registration wizard, public profiles and admin roster for the alumni portal
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	selfieStore, err := storage.NewLocalStorage(cfg.Selfies.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init selfie storage", "error", err)
	}

	alumniRepo := repository.NewAlumniRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	draftRepo := repository.NewDraftRepository(redisClient, cfg.Drafts.TTL, logr)

	validate := validator.New()
	service.RegisterProfileValidations(validate)

	metricsSvc := service.NewMetricsService()
	selfieSvc := service.NewSelfieService(selfieStore, logr, service.SelfieConfig{
		MaxFileSize:     cfg.Selfies.MaxFileSizeBytes,
		JPEGQuality:     cfg.Selfies.JPEGQuality,
		CleanupInterval: cfg.Selfies.CleanupInterval,
	})
	alumniSvc := service.NewAlumniService(alumniRepo, selfieSvc, validate, logr, cfg.PublicOrigin, cfg.Selfies.PlaceholderPath)
	authSvc := service.NewAuthService(adminRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "alumni-portal-api",
	})
	qrSvc := service.NewQRService(service.QRConfig{PublicOrigin: cfg.PublicOrigin, Size: cfg.QR.Size})
	wizardSvc := service.NewWizardService(draftRepo, selfieSvc, alumniSvc, logr)

	purgeQueue := jobs.NewQueue("selfie-purge", func(ctx context.Context, job jobs.Job) error {
		key, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		if err := selfieSvc.Remove(key); err != nil {
			return err
		}
		metricsSvc.RecordSelfiePurge()
		return nil
	}, jobs.QueueConfig{Workers: 2, Logger: logr})
	purgeQueue.Start()
	defer purgeQueue.Stop()

	// Drafts expire out of Redis without a callback, so their selfies are
	// reclaimed from disk periodically instead.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	selfieSvc.StartCleanup(cleanupCtx, cfg.Drafts.TTL, alumniRepo.SelfieKeys)

	dashboardSvc := service.NewDashboardService(alumniRepo, adminRepo, selfieSvc, alumniSvc, purgeQueue, metricsSvc, logr)

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
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "postgres"})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "redis"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Wizard:    handler.NewWizardHandler(wizardSvc, metricsSvc),
		Alumni:    handler.NewAlumniHandler(alumniSvc, selfieSvc, qrSvc, metricsSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc, metricsSvc),
		QR:        handler.NewQRHandler(qrSvc, metricsSvc),
		Metrics:   handler.NewMetricsHandler(metricsSvc),
	}, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
