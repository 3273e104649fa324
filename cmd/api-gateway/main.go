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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/church-events-api/internal/handler"
	"github.com/noah-isme/church-events-api/internal/repository"
	"github.com/noah-isme/church-events-api/internal/service"
	"github.com/noah-isme/church-events-api/pkg/cache"
	"github.com/noah-isme/church-events-api/pkg/config"
	"github.com/noah-isme/church-events-api/pkg/database"
	"github.com/noah-isme/church-events-api/pkg/logger"
	"github.com/noah-isme/church-events-api/pkg/mailer"
	"github.com/noah-isme/church-events-api/pkg/otp"
	"github.com/noah-isme/church-events-api/pkg/storage"
	"github.com/noah-isme/church-events-api/pkg/webhook"
)

// @title Church Events API
// @version 1.0.0
// @description Bible quiz group registration, event sign-up and the admin back office.
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.URL(), cfg.Database.MigrationsDir, logr); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	metricsSvc := service.NewMetricsService()

	var counter cache.Counter
	if redisClient != nil {
		counter = cache.NewRedisCounter(redisClient, "church-events:")
	} else {
		logr.Warn("redis disabled, verification attempts are tracked in process memory")
		counter = cache.NewMemoryCounter(time.Minute)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, time.Minute, logr, true)

	notifier := service.NewNotificationService(
		mailer.New(cfg.SMTP),
		webhook.New(cfg.Webhook, logr),
		metricsSvc,
		logr,
		service.NotificationConfig{
			EventName: cfg.Registration.EventName,
			Async:     cfg.Notifications.Async,
			Workers:   cfg.Notifications.Workers,
		},
	)

	documents, err := newDocumentService(cfg, metricsSvc, logr)
	if err != nil {
		return err
	}

	validate := service.NewValidator()
	quizRepo := repository.NewQuizRegistrationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	userRepo := repository.NewUserRepository(db)

	otpSvc := service.NewOTPService(otp.NewSigner(cfg.OTP.Secret), counter, notifier, validate, metricsSvc, logr, service.OTPConfig{
		TTL:             cfg.OTP.TTL,
		MaxAttempts:     cfg.OTP.MaxAttempts,
		ResendInterval:  cfg.OTP.ResendInterval,
		VerificationTTL: cfg.Registration.VerificationTTL,
		ExposeCode:      cfg.OTP.ExposeCode,
	})
	registrationSvc := service.NewRegistrationService(
		quizRepo,
		service.NewRegistrationValidator(validate, service.ParticipantLimits{
			Min: cfg.Registration.MinParticipants,
			Max: cfg.Registration.MaxParticipants,
		}),
		documents,
		notifier,
		otpSvc,
		cacheSvc,
		metricsSvc,
		logr,
		service.RegistrationConfig{
			SequenceScanLimit:     cfg.Registration.SequenceScanLimit,
			GroupNumberMaxRetries: cfg.Registration.GroupNumberMaxRetries,
			RequireVerifiedEmail:  cfg.Registration.RequireVerifiedEmail,
		},
	)
	eventSvc := service.NewEventService(eventRepo, notifier, validate, metricsSvc, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	quizAdminSvc := service.NewQuizAdminService(quizRepo, documents, cacheSvc, time.Minute, logr)
	exportSvc := service.NewExportService(quizRepo, cfg.Registration.EventName, logr, nil, nil)

	readiness := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := newRouter(cfg, logr, routerDeps{
		auth:          authSvc,
		metrics:       metricsSvc,
		metricsH:      handler.NewMetricsHandler(metricsSvc, readiness),
		authH:         handler.NewAuthHandler(authSvc),
		registrationH: handler.NewRegistrationHandler(registrationSvc),
		otpH:          handler.NewOTPHandler(otpSvc),
		eventH:        handler.NewEventHandler(eventSvc),
		documentH:     handler.NewDocumentHandler(documents),
		quizAdminH:    handler.NewQuizAdminHandler(quizAdminSvc, exportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return notifier.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logr.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newDocumentService(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*service.DocumentService, error) {
	docCfg := service.DocumentConfig{
		Organization: cfg.Registration.Organization,
		EventName:    cfg.Registration.EventName,
		DownloadPath: cfg.APIPrefix + "/documents/",
	}
	if cfg.Documents.StorageDir == "" {
		return service.NewDocumentService(nil, nil, metrics, logr, docCfg), nil
	}
	store, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("open document storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)
	return service.NewDocumentService(store, signer, metrics, logr, docCfg), nil
}
