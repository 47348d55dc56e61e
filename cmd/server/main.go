package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stablepay.backend/internal/config"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	domainRepos "stablepay.backend/internal/domain/repositories"
	"stablepay.backend/internal/infrastructure/blockchain"
	"stablepay.backend/internal/infrastructure/jobs"
	"stablepay.backend/internal/infrastructure/models"
	"stablepay.backend/internal/infrastructure/ofac"
	"stablepay.backend/internal/infrastructure/repositories"
	"stablepay.backend/internal/interfaces/http/handlers"
	"stablepay.backend/internal/interfaces/http/middleware"
	"stablepay.backend/internal/usecases"
	"stablepay.backend/pkg/crypto"
	"stablepay.backend/pkg/logger"
	"stablepay.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := loadCfg()
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if cfg.Security.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Plan{},
		&models.Payment{},
		&models.Subscription{},
		&models.WebhookLog{},
		&models.OfacSanctionedAddress{},
		&models.OfacUpdateLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	// AutoMigrate cannot express a partial index, so the guard that allows
	// at most one in-flight payment per user is created by hand.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_payments_one_inflight
		ON payments (tenant_id, external_user_id)
		WHERE status IN ('pending', 'awaiting_confirmation')`).Error; err != nil {
		return fmt.Errorf("failed to create in-flight payment index: %w", err)
	}

	cipher, err := crypto.NewAddressCipher(cfg.Security.SessionSecret)
	if err != nil {
		return fmt.Errorf("failed to derive address cipher key: %w", err)
	}

	// Repositories
	tenantRepo := repositories.NewTenantRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	webhookLogRepo := repositories.NewWebhookLogRepository(db)
	ofacRepo := repositories.NewOfacRepository(db)
	uow := repositories.NewUnitOfWork(db)

	if err := ensureDefaultTenant(ctx, tenantRepo, cfg); err != nil {
		return fmt.Errorf("failed to provision default tenant: %w", err)
	}

	// Chain adapters
	registry := blockchain.NewRegistry(
		blockchain.NewEVMAdapter(entities.NetworkArbitrum, cfg.Blockchain.AlchemyAPIKey),
		blockchain.NewEVMAdapter(entities.NetworkEthereum, cfg.Blockchain.AlchemyAPIKey),
		blockchain.NewTronAdapter(cfg.Blockchain.TronBaseURL, cfg.Blockchain.TronGridAPIKey),
	)

	// Usecases
	webhookUsecase := usecases.NewWebhookUsecase(tenantRepo, webhookLogRepo)
	ofacUsecase := usecases.NewOfacUsecase(ofacRepo, ofac.NewFetcher(ofac.DefaultFeedURL))
	subscriptionUsecase := usecases.NewSubscriptionUsecase(subscriptionRepo, planRepo, webhookUsecase)
	paymentUsecase := usecases.NewPaymentUsecase(
		tenantRepo, planRepo, paymentRepo, uow,
		ofacUsecase, subscriptionUsecase, webhookUsecase, cipher,
		cfg.Security.SessionSecret,
		cfg.Blockchain.PaymentAddressEVM,
		cfg.Blockchain.PaymentAddressTron,
	)
	monitor := usecases.NewMonitorUsecase(paymentRepo, registry, paymentUsecase, webhookUsecase, cipher)
	paymentUsecase.SetEnroller(monitor)

	if err := monitor.StartMonitoring(ctx); err != nil {
		return fmt.Errorf("failed to start payment monitor: %w", err)
	}

	// First boot on an empty database pulls the sanctions list before
	// any payment can be screened.
	go func() {
		if err := ofacUsecase.RefreshIfEmpty(ctx); err != nil {
			logger.Error(ctx, "initial sanctions load failed", zap.Error(err))
		}
	}()

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	scheduler := jobs.NewScheduler(paymentRepo, webhookUsecase, subscriptionUsecase, webhookUsecase, ofacUsecase, monitor)
	scheduler.Start(jobCtx)

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	registerAPIRoutes(r, routeDeps{
		healthHandler:       handlers.NewHealthHandler(monitor),
		networkHandler:      handlers.NewNetworkHandler(),
		planHandler:         handlers.NewPlanHandler(paymentUsecase),
		paymentHandler:      handlers.NewPaymentHandler(paymentUsecase),
		subscriptionHandler: handlers.NewSubscriptionHandler(subscriptionUsecase),
		ofacHandler:         handlers.NewOfacHandler(ofacUsecase),
		authMiddleware:      middleware.AuthMiddleware(tenantRepo),
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(ctx, "shutting down")
		scheduler.Stop()
		monitor.StopMonitoring()
		cancel()
	}()

	logger.Info(ctx, "server starting", zap.String("port", cfg.Server.Port))
	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// ensureDefaultTenant provisions the single-tenant row on first boot. The
// generated API key is printed once; only its digest is stored.
func ensureDefaultTenant(ctx context.Context, tenantRepo domainRepos.TenantRepository, cfg *config.Config) error {
	_, err := tenantRepo.GetByID(ctx, entities.DefaultTenantID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}

	apiKey, err := crypto.GenerateAPIKey()
	if err != nil {
		return err
	}
	tenant := &entities.Tenant{
		ID:            entities.DefaultTenantID,
		Name:          "Default",
		APIKeyHash:    crypto.HashAPIKey(apiKey),
		WebhookURL:    null.NewString(cfg.Webhook.URL, cfg.Webhook.URL != ""),
		WebhookSecret: cfg.Webhook.Secret,
		IsActive:      true,
	}
	if err := tenantRepo.Create(ctx, tenant); err != nil {
		return err
	}
	log.Printf("default tenant created; API key (store it now, shown once): %s", apiKey)
	return nil
}
