package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dentallab/backend/internal/di"
	"github.com/dentallab/backend/internal/domain"
	"github.com/dentallab/backend/internal/middleware"
	"github.com/dentallab/backend/pkg/config"
	"github.com/dentallab/backend/pkg/database"
	"github.com/dentallab/backend/pkg/logger"
	"github.com/dentallab/backend/pkg/mailer"
	pkgredis "github.com/dentallab/backend/pkg/redis"
	"github.com/dentallab/backend/pkg/response"
	"github.com/dentallab/backend/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting dental lab API",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version))

	response.SetDebug(cfg.IsDevelopment())

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	db, err := database.NewPostgres(ctx, &cfg.Database)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	var rdb *pkgredis.Client
	if cfg.RateLimit.Enabled {
		rdb, err = pkgredis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			// The limiter fails open; start without it rather than refusing traffic.
			appLog.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		smtp, err := mailer.NewSMTPMailer(&cfg.SMTP)
		if err != nil {
			appLog.Warn("SMTP client init failed, outbound mail disabled", zap.Error(err))
		} else {
			mail = smtp
		}
	}

	container := di.NewContainer(&di.ContainerConfig{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Mailer: mail,
	})

	router := buildRouter(cfg, rdb, container)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		appLog.Info("Listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}

func buildRouter(cfg *config.Config, rdb *pkgredis.Client, c *di.Container) *gin.Engine {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.SMTP.BaseURL))

	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	authLimit := middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, "auth")

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimit, c.AuthHandler.Register)
			auth.POST("/login", authLimit, c.AuthHandler.Login)
			auth.POST("/refresh-token", c.AuthHandler.RefreshToken)
			auth.POST("/forgot-password", authLimit, c.AuthHandler.ForgotPassword)
			auth.POST("/reset-password", c.AuthHandler.ResetPassword)

			protected := auth.Group("")
			protected.Use(middleware.Authenticate(c.Issuer), middleware.RequireAuth())
			{
				protected.GET("/me", c.AuthHandler.Me)
				protected.POST("/logout", c.AuthHandler.Logout)
				protected.POST("/update-password", c.AuthHandler.UpdatePassword)
			}
		}

		admin := v1.Group("/users")
		admin.Use(middleware.Authenticate(c.Issuer), middleware.RequireAuth(), middleware.RequireRole(domain.RoleAdmin))
		{
			admin.PATCH("/:id/active", c.AuthHandler.SetActive)
		}

		lab := v1.Group("")
		lab.Use(middleware.Authenticate(c.Issuer), middleware.RequireAuth())
		{
			lab.GET("/dentists", c.CaseHandler.ListDentists)
			lab.GET("/dentists/:id", c.CaseHandler.GetDentist)
			lab.GET("/cases", c.CaseHandler.ListCases)
			lab.GET("/cases/:id", c.CaseHandler.GetCase)

			writes := lab.Group("")
			writes.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleStaff))
			{
				writes.POST("/dentists", c.CaseHandler.CreateDentist)
				writes.POST("/cases", c.CaseHandler.CreateCase)
				writes.PATCH("/cases/:id/status", c.CaseHandler.UpdateCaseStatus)
			}
		}
	}

	return router
}
