package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"handyman-recruitment-backend/config"
	_ "handyman-recruitment-backend/docs" // Important for Swagger
	v1 "handyman-recruitment-backend/internal/delivery/http/v1"
	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/internal/repository/memory"
	"handyman-recruitment-backend/internal/repository/postgres"
	"handyman-recruitment-backend/internal/usecase"
	"handyman-recruitment-backend/pkg/auth"
	"handyman-recruitment-backend/pkg/blobstore"
	"handyman-recruitment-backend/pkg/database"
	"handyman-recruitment-backend/pkg/email"
	"handyman-recruitment-backend/pkg/logger"
	"handyman-recruitment-backend/pkg/redis"
	"handyman-recruitment-backend/pkg/security"
	"handyman-recruitment-backend/pkg/security/antivirus"
	"handyman-recruitment-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

type repositories struct {
	candidates domain.CandidateRepository
	enquiries  domain.EnquiryRepository
	contacts   domain.ContactRepository
	users      domain.UserRepository
	// nil for in-memory storage
	events     security.EventStore
}

// @title           Handyman Recruitment Agency API
// @version         1.0
// @description     Candidate, enquiry and contact intake plus the admin dashboard backend.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.Environment, cfg.LogLevel)
	logger.Log.Info("Starting handyman recruitment backend", "port", cfg.Port, "env", cfg.Environment)
	secLogger := security.InitSecurityLogger("handyman-recruitment-backend", cfg.Environment)
	defer secLogger.Sync()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	checks := map[string]usecase.HealthCheck{}

	// 3. Setup Storage
	repos, closeDB, err := setupRepositories(ctx, cfg, checks)
	if err != nil {
		logger.Log.Error("Failed to set up storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeDB()
	if repos.events != nil {
		secLogger.SetStore(repos.events)
	}

	blobs, err := setupBlobStore(ctx, cfg, checks)
	if err != nil {
		logger.Log.Error("Failed to set up blob store", "provider", cfg.BlobProvider, "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional; limiters fall back to memory)
	if err := redis.Initialize(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		if errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Warn("Redis not configured - rate limiting is per instance")
		} else {
			logger.Log.Error("Redis unavailable - rate limiting is per instance", "error", err)
		}
	} else {
		checks["redis"] = redis.HealthCheck
		defer redis.Close()
	}

	// 5. Setup Malware Scanner
	var scanner antivirus.Scanner = antivirus.NewNoOpScanner()
	if cfg.ClamdAddress != "" {
		clamd := antivirus.NewClamdScanner(cfg.ClamdAddress)
		scanner = antivirus.NewChainScanner(clamd)
		checks["clamd"] = func(ctx context.Context) error {
			if !clamd.Available(ctx) {
				return errors.New("clamd not responding")
			}
			return nil
		}
	} else {
		logger.Log.Warn("CLAMD_ADDRESS not set - uploads are not scanned for malware")
	}

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - notifications are disabled")
	}

	// 7. Setup UseCases
	validate := validation.New()
	accessUC := usecase.NewAccessUsecase(repos.users, validate)
	candidateUC := usecase.NewCandidateUsecase(repos.candidates, blobs, accessUC, scanner, validate)
	enquiryUC := usecase.NewEnquiryUsecase(repos.enquiries, accessUC, emailService, validate)
	contactUC := usecase.NewContactUsecase(repos.contacts, accessUC, emailService, validate)
	healthUC := usecase.NewHealthUsecase(checks)

	if p := strings.TrimSpace(cfg.BootstrapAdminPrincipal); p != "" {
		if err := repos.users.UpsertRole(ctx, domain.Principal(p), domain.RoleAdmin); err != nil {
			logger.Log.Error("Failed to bootstrap admin", "error", err)
			os.Exit(1)
		}
		logger.Log.Info("Bootstrap admin ensured")
	}

	// 8. Setup Identity Provider (HS256 secret and/or JWKS)
	var keys *auth.KeySet
	if cfg.SupabaseUrl != "" {
		keys = auth.NewKeySet(cfg.JWKSURL())
	}
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, keys)
	if !verifier.Configured() {
		logger.Log.Warn("No identity provider configured - admin routes will reject every request")
	}

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		CandidateUC:   candidateUC,
		EnquiryUC:     enquiryUC,
		ContactUC:     contactUC,
		AccessUC:      accessUC,
		HealthUC:      healthUC,
		Verifier:      verifier,
		UploadLimiter: security.NewUploadLimiter(cfg.UploadsPerMinute, cfg.UploadsPerDay),
		Config:        cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func setupRepositories(ctx context.Context, cfg *config.Config, checks map[string]usecase.HealthCheck) (repositories, func(), error) {
	if cfg.StorageDriver == "memory" {
		logger.Log.Warn("Using in-memory storage - records are lost on restart")
		return repositories{
			candidates: memory.NewCandidateRepository(),
			enquiries:  memory.NewEnquiryRepository(),
			contacts:   memory.NewContactRepository(),
			users:      memory.NewUserRepository(),
		}, func() {}, nil
	}

	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		return repositories{}, nil, err
	}
	if err := database.EnsureSchema(ctx, dbPool); err != nil {
		dbPool.Close()
		return repositories{}, nil, err
	}
	checks["database"] = dbPool.Ping

	return repositories{
		candidates: postgres.NewCandidateRepository(dbPool),
		enquiries:  postgres.NewEnquiryRepository(dbPool),
		contacts:   postgres.NewContactRepository(dbPool),
		users:      postgres.NewUserRepository(dbPool),
		events:     security.NewPostgresEventStore(dbPool),
	}, dbPool.Close, nil
}

func setupBlobStore(ctx context.Context, cfg *config.Config, checks map[string]usecase.HealthCheck) (domain.BlobStore, error) {
	switch cfg.BlobProvider {
	case "s3":
		store, err := blobstore.NewS3(ctx, blobstore.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			URLTTL:          cfg.DocumentURLTTL,
		})
		if err != nil {
			return nil, err
		}
		checks["blobstore"] = store.Ping
		return store, nil
	case "minio":
		store, err := blobstore.NewMinIO(ctx, blobstore.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			URLTTL:    cfg.DocumentURLTTL,
		})
		if err != nil {
			return nil, err
		}
		checks["blobstore"] = store.Ping
		return store, nil
	default:
		logger.Log.Warn("Using in-memory blob store - documents are lost on restart")
		return blobstore.NewMemory(""), nil
	}
}
