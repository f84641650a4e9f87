package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"churrasco/internal/config"
	"churrasco/internal/database"
	"churrasco/internal/jobs"
	"churrasco/internal/middleware"
	"churrasco/internal/modules/auth"
	"churrasco/internal/modules/booking"
	"churrasco/internal/modules/catalog"
	"churrasco/internal/modules/chat"
	"churrasco/internal/modules/profile"
	"churrasco/internal/modules/review"
	"churrasco/internal/modules/storage"
	"churrasco/internal/modules/subscription"
	jwtsvc "churrasco/internal/pkg/jwt"
	"churrasco/internal/pkg/logger"
	"churrasco/internal/pkg/response"
	"churrasco/internal/realtime"
	"churrasco/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("api: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := repository.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := subscription.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate subscriptions: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	chatRepo := repository.NewChatRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	subscriptionRepo := subscription.NewRepository(db)

	// Realtime
	hub := realtime.NewHub(zl)
	defer hub.Close()
	publisher, err := newPublisher(ctx, cfg, hub, zl)
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	// Services
	authService := auth.NewService(userRepo, tokenRepo, j, newMailer(cfg, zl), cfg.ResetTokenTTL, cfg.PublicBaseURL, zl)
	profileService := profile.NewService(userRepo, reviewRepo, serviceRepo, store, zl)
	catalogService := catalog.NewService(serviceRepo, userRepo, reviewRepo, store, zl)
	bookingService := booking.NewService(bookingRepo, serviceRepo, userRepo, reviewRepo, publisher, zl).WithLocation(cfg.Location())
	reviewService := review.NewService(reviewRepo, bookingRepo, publisher, zl)
	chatService := chat.NewService(chatRepo, userRepo, publisher, zl)
	subscriptionService := subscription.NewService(subscriptionRepo, newGateway(cfg, zl), publisher, zl)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, zl)
	metrics := middleware.NewMetrics()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(zl),
		middleware.RequestLogger(zl),
		middleware.CORS(cfg.AllowedOrigins()),
		metrics.Middleware(),
		limiter.Middleware(),
	)

	r.GET("/health", healthHandler(db))
	r.GET("/metrics", metrics.Handler())
	if local, ok := store.(*storage.LocalStore); ok {
		r.Static(cfg.StaticURLBase, local.Dir())
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", healthHandler(db))
	realtime.NewHandler(hub, j, tokenRepo, cfg.AllowedOrigins(), zl).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuthWithRevocation(j, tokenRepo))

	professional := protected.Group("")
	professional.Use(middleware.ProfessionalOnly())

	auth.NewHandler(authService).RegisterRoutes(v1, protected)
	profile.NewHandler(profileService).RegisterRoutes(v1, protected)
	catalog.NewHandler(catalogService).RegisterRoutes(v1, professional)
	booking.NewHandler(bookingService).RegisterRoutes(protected)
	review.NewHandler(reviewService).RegisterRoutes(v1, protected)
	chat.NewHandler(chatService).RegisterRoutes(protected)

	subscriptionHandler := subscription.NewHandler(subscriptionService)
	subscription.RegisterPublicRoutes(v1, subscriptionHandler)
	subscription.RegisterProfessionalRoutes(protected, subscriptionHandler)

	scheduler := jobs.NewScheduler(zl)
	if err := jobs.Register(scheduler, cfg.SubscriptionExpirySchedule, subscriptionService, tokenRepo, limiter); err != nil {
		return err
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zl.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		zl.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	return nil
}

// newPublisher fans realtime events out through Redis when configured, and
// straight into the local hub otherwise.
func newPublisher(ctx context.Context, cfg *config.Config, hub *realtime.Hub, zl *zap.Logger) (realtime.Publisher, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		zl.Info("realtime: in-process broker")
		return realtime.NewLocalBroker(hub), nil
	}

	client, err := realtime.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	broker := realtime.NewRedisBroker(client, "", hub, zl)
	go func() {
		defer client.Close()
		if err := broker.Run(ctx); err != nil {
			zl.Error("realtime: redis relay stopped", zap.Error(err))
		}
	}()
	return broker, nil
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageDriver == "cloudinary" {
		return storage.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	}
	base := strings.TrimRight(cfg.PublicBaseURL, "/") + cfg.StaticURLBase
	return storage.NewLocalStore(cfg.UploadDir, base)
}

func newGateway(cfg *config.Config, zl *zap.Logger) subscription.PaymentGateway {
	if cfg.StripeSecretKey != "" {
		zl.Info("payments: stripe")
		return subscription.NewStripeGateway(cfg.StripeSecretKey)
	}
	zl.Info("payments: simulated")
	return subscription.NewSimulatedGateway()
}

func newMailer(cfg *config.Config, zl *zap.Logger) auth.Mailer {
	if cfg.MailEnabled() {
		return auth.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}
	return auth.NewNopMailer(zl)
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
