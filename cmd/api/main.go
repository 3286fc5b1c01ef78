package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mechanix-app/mechanix-backend/api/controllers"
	"github.com/mechanix-app/mechanix-backend/api/routes"
	"github.com/mechanix-app/mechanix-backend/internal/auth"
	"github.com/mechanix-app/mechanix-backend/internal/cars"
	"github.com/mechanix-app/mechanix-backend/internal/comments"
	"github.com/mechanix-app/mechanix-backend/internal/mechanics"
	"github.com/mechanix-app/mechanix-backend/internal/permissions"
	"github.com/mechanix-app/mechanix-backend/internal/requests"
	"github.com/mechanix-app/mechanix-backend/internal/sms"
	"github.com/mechanix-app/mechanix-backend/internal/users"
	"github.com/mechanix-app/mechanix-backend/pkg/config"
	"github.com/mechanix-app/mechanix-backend/pkg/db"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
	"github.com/mechanix-app/mechanix-backend/pkg/migrate"
	"github.com/mechanix-app/mechanix-backend/pkg/pubsub"
	"github.com/mechanix-app/mechanix-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "mechanix-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api terminated", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return err
	}
	defer func() { _ = dbClient.Close() }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	// The SMS pipeline is optional in dev; auth still works, codes just stay
	// in Redis.
	var smsPublisher *sms.Publisher
	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		if cfg.App.IsProd() {
			return err
		}
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "pubsub unavailable, sms delivery disabled")
	} else {
		defer func() { _ = pubsubClient.Close() }()
		smsPublisher, err = sms.NewPublisher(pubsubClient.SMSPublisher(), logg)
		if err != nil {
			return err
		}
	}

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	revocationRepo := auth.NewRepository(conn)
	carRepo := cars.NewRepository(conn)
	mechanicRepo := mechanics.NewRepository(conn)
	requestRepo := requests.NewRepository(conn)
	commentRepo := comments.NewRepository(conn)
	permissionRepo := permissions.NewRepository(conn)

	var otpPublisher interface {
		PublishOTP(ctx context.Context, kind, phone, code string) error
	}
	var statusNotifier interface {
		NotifyStatusChange(ctx context.Context, carID int64, status enums.RequestStatus)
	}
	if smsPublisher != nil {
		otpPublisher = smsPublisher
		notifier, err := sms.NewStatusNotifier(carRepo, userRepo, smsPublisher, logg)
		if err != nil {
			return err
		}
		statusNotifier = notifier
	}

	authSvc, err := auth.NewService(
		userRepo, revocationRepo, redisClient, otpPublisher,
		cfg.JWT, cfg.OTP, cfg.Password, logg,
	)
	if err != nil {
		return err
	}
	carSvc, err := cars.NewService(carRepo)
	if err != nil {
		return err
	}
	mechanicSvc, err := mechanics.NewService(mechanicRepo, permissionRepo, userRepo, dbClient)
	if err != nil {
		return err
	}
	requestSvc, err := requests.NewService(requestRepo, carRepo, mechanicRepo, statusNotifier, dbClient)
	if err != nil {
		return err
	}
	commentSvc, err := comments.NewService(commentRepo, requestRepo, carRepo)
	if err != nil {
		return err
	}
	permissionSvc, err := permissions.NewService(permissionRepo, userRepo)
	if err != nil {
		return err
	}

	router := routes.New(routes.Deps{
		Logger:        logg,
		JWT:           cfg.JWT,
		AuthRateLimit: cfg.AuthRateLimit,
		Limiter:       redisClient,

		Health:      controllers.NewHealthController(dbClient, redisClient, logg),
		Auth:        controllers.NewAuthController(authSvc, logg),
		Cars:        controllers.NewCarController(carSvc, logg),
		Mechanics:   controllers.NewMechanicController(mechanicSvc, commentSvc, logg),
		Requests:    controllers.NewRequestController(requestSvc, logg),
		Comments:    controllers.NewCommentController(commentSvc, logg),
		Permissions: controllers.NewPermissionController(permissionSvc, logg),
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
