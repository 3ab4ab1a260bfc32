package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency-contact-api/config"
	_ "agency-contact-api/docs" // Important for Swagger
	v1 "agency-contact-api/internal/delivery/http/v1"
	redisrepo "agency-contact-api/internal/repository/redis"
	"agency-contact-api/internal/usecase"
	"agency-contact-api/pkg/database"
	"agency-contact-api/pkg/email"
	"agency-contact-api/pkg/logger"
	"agency-contact-api/pkg/redis"
	"agency-contact-api/pkg/security"
	"agency-contact-api/pkg/validation"

	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceName = "agency-contact-api"

// @title           Agency Contact API
// @version         1.0
// @description     Contact form submission service for the agency website.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	var sinks []io.Writer
	if cfg.GELFAddr != "" {
		gelf, err := logger.NewGELFWriter(cfg.GELFAddr, serviceName)
		if err != nil {
			log.Printf("WARNING: GELF sink disabled: %v", err)
		} else {
			defer gelf.Close()
			sinks = append(sinks, gelf)
		}
	}
	logger.Init(cfg.LogLevel, sinks...)
	logger.Log.Info("Starting contact service", "port", cfg.Port, "provider", cfg.ContactProvider)

	// 3. Setup Transports (fails fast on missing provider configuration)
	httpClient := email.NewHTTPClient(cfg.ContactTimeout)
	transports, err := email.NewTransports(cfg, httpClient, logger.Log)
	if err != nil {
		logger.Log.Error("Contact provider not configured", "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional)
	var redisCheck usecase.HealthCheck
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable - using in-memory rate limiting and duplicate guard", "error", err)
	} else {
		defer redis.Close()
		redisCheck = redis.HealthCheck
	}

	// 5. Setup Audit Logger (optionally persisted)
	audit := security.InitSecurityLogger(serviceName, cfg.Environment)
	var dbPool *pgxpool.Pool
	if cfg.SecurityLogToDB && cfg.DBUrl != "" {
		dbPool, err = database.NewPostgresConnection(context.Background(), cfg.DBUrl)
		if err != nil {
			logger.Log.Warn("Audit database unavailable - audit events go to stdout only", "error", err)
		} else {
			defer dbPool.Close()
			repo := security.NewSecurityEventRepository(dbPool)
			if err := repo.EnsureSchema(context.Background()); err != nil {
				logger.Log.Warn("Failed to ensure audit schema", "error", err)
			}
			audit.SetPersistFunc(repo.CreatePersistFunc())
		}
	}

	var dbCheck usecase.HealthCheck
	if dbPool != nil {
		dbCheck = database.HealthCheck(dbPool)
	}

	// 6. Setup UseCases
	contactUC := usecase.NewContactUsecase(transports.Notify, validation.New(), usecase.ContactOptions{
		AutoReply:         transports.AutoReply,
		AutoReplyRequired: cfg.ContactAutoReplyRequired,
		Timeout:           cfg.ContactTimeout,
		Logger:            logger.Log,
	})
	healthUC := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
		"redis":    redisCheck,
		"database": dbCheck,
	})

	// 7. Setup Router
	guard := redisrepo.NewInFlightGuard(redis.Client(), cfg.ContactTimeout+5*time.Second)
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		HealthUC:  healthUC,
		Guard:     guard,
		GuardKey:  redisrepo.SubmissionKey,
		Audit:     audit,
		Provider:  transports.Notify.Name(),
		Config:    cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// In-flight submissions get their full timeout to finish
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ContactTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	// Flush pending audit writes before the pool closes
	_ = audit.Sync()

	logger.Log.Info("Server exiting")
}
