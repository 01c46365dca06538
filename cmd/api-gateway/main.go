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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/flexfit/gym-api/api/swagger"
	"github.com/flexfit/gym-api/internal/handler"
	"github.com/flexfit/gym-api/internal/middleware"
	"github.com/flexfit/gym-api/internal/models"
	"github.com/flexfit/gym-api/internal/repository"
	"github.com/flexfit/gym-api/internal/service"
	"github.com/flexfit/gym-api/pkg/cache"
	"github.com/flexfit/gym-api/pkg/config"
	"github.com/flexfit/gym-api/pkg/database"
	"github.com/flexfit/gym-api/pkg/logger"
	corsmiddleware "github.com/flexfit/gym-api/pkg/middleware/cors"
	reqidmiddleware "github.com/flexfit/gym-api/pkg/middleware/requestid"
	"github.com/flexfit/gym-api/pkg/storage"
)

// @title FlexFit Gym API
// @version 1.0.0
// @description Class scheduling, member check-ins and attendance reporting for gyms
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, occurrence cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	checkinRepo := repository.NewCheckinRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "flexfit-gym-api",
		Audience:           []string{"flexfit-clients"},
	})

	classSvc := service.NewClassService(classRepo, cacheRepo, validate, logr, service.ClassConfig{
		HorizonDays:  cfg.Schedule.HorizonDays,
		CacheEnabled: cfg.Schedule.CacheEnabled && redisClient != nil,
		CacheTTL:     cfg.Schedule.CacheTTL,
	}).WithMetrics(metricsSvc)

	checkinSvc := service.NewCheckinService(checkinRepo, memberRepo, classRepo, validate, logr).
		WithMetrics(metricsSvc)

	memberSvc := service.NewMemberService(memberRepo, validate, logr)

	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Fatal("failed to prepare report storage", zap.Error(err))
		}
		reportSvc = service.NewReportService(reportRepo, checkinRepo, store, signer, validate, logr, service.ReportConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
		}).WithMetrics(metricsSvc)
	}

	feedSvc := service.NewFeedService(classRepo, signer, logr, service.FeedConfig{
		Enabled:     cfg.Feed.Enabled,
		HorizonDays: cfg.Schedule.HorizonDays,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	classHandler := handler.NewClassHandler(classSvc)
	memberHandler := handler.NewMemberHandler(memberSvc)
	checkinHandler := handler.NewCheckinHandler(checkinSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	feedHandler := handler.NewFeedHandler(feedSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/healthz", metricsHandler.Health)
	r.GET("/readyz", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
			auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		{
			classes := protected.Group("/classes")
			{
				classes.GET("", classHandler.ListOccurrences)
				classes.GET("/templates", classHandler.ListTemplates)
				classes.GET("/:id", classHandler.Get)
				classes.POST("", middleware.RequireRoles(models.RoleOwner, models.RoleStaff), classHandler.Create)
				classes.DELETE("/:id", middleware.RequireRoles(models.RoleOwner, models.RoleStaff), classHandler.Delete)
				classes.DELETE("/series/:parentId", middleware.RequireRoles(models.RoleOwner, models.RoleStaff), classHandler.DeleteSeries)
			}

			members := protected.Group("/members")
			{
				members.GET("", memberHandler.List)
				members.GET("/:id", memberHandler.Get)
				members.POST("", middleware.RequireRoles(models.RoleOwner, models.RoleStaff), memberHandler.Create)
				members.POST("/:id/waiver", memberHandler.SignWaiver)
			}

			if cfg.Checkins.Enabled {
				checkins := protected.Group("/checkins")
				{
					checkins.POST("", checkinHandler.Create)
					checkins.GET("", checkinHandler.List)
				}
			}

			if cfg.Reports.Enabled {
				reports := protected.Group("/reports")
				reports.Use(middleware.RequireRoles(models.RoleOwner, models.RoleStaff))
				{
					reports.POST("", reportHandler.Create)
					reports.GET("", reportHandler.List)
					reports.GET("/:id", reportHandler.Get)
				}
			}

			protected.GET("/feed/token", feedHandler.Token)
			protected.GET("/metrics/summary", metricsHandler.Snapshot)
		}

		// Token-authenticated, no JWT: calendar apps and report download
		// links cannot send Authorization headers.
		api.GET("/feed/calendar.ics", feedHandler.Calendar)
		if cfg.Reports.Enabled {
			api.GET("/reports/download", reportHandler.Download)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if reportSvc != nil {
		reportSvc.Start(ctx)
		defer reportSvc.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
