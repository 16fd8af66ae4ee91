// cmd/club-gateway/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"club-la-victoria/internal/accessqr"
	"club-la-victoria/internal/common/config"
	"club-la-victoria/internal/common/database"
	"club-la-victoria/internal/common/logger"
	"club-la-victoria/internal/common/observability"
	"club-la-victoria/internal/gateway"
	"club-la-victoria/internal/membership"
	"club-la-victoria/internal/reservation"
	"club-la-victoria/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// connectRedis builds one client and retries only its Ping. The client is
// closed when every attempt fails.
func connectRedis(ctx context.Context, cfg config.RedisConfig, attempts int, delay time.Duration, log *zap.Logger) (*database.RedisClient, error) {
	redis, err := database.NewRedis(cfg)
	if err != nil {
		return nil, err
	}
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, attempts, delay, log, "Redis connection")
	if err != nil {
		_ = redis.Close()
		return nil, err
	}
	return redis, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console", "stderr").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := cfg.ValidateGateway(); err != nil {
		zapLog.Fatal("invalid gateway configuration", zap.Error(err))
	}
	gin.SetMode(cfg.Server.GinMode)

	zapLog.Info("Starting club gateway...",
		zap.String("environment", cfg.App.Environment),
		zap.String("address", cfg.Server.Address),
	)

	obs := observability.New("club-gateway")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Optional Redis cache for membership lookups ---
	membershipCfg := membership.FromAppConfig(cfg.Membership)
	deps := membership.ServiceDependencies{Logger: log}
	ready := func(context.Context) error { return nil }

	if cfg.Database.Redis.Enabled() && membershipCfg.CacheTTL > 0 {
		redis, err := connectRedis(ctx, cfg.Database.Redis, 5, time.Second, zapLog)
		if err != nil {
			zapLog.Warn("redis unavailable, membership cache disabled", zap.Error(err))
		} else {
			defer redis.Close()
			deps.Cache = membership.NewRedisCache(redis.GetClient(), membershipCfg.CacheTTL)
			ready = redis.Ping
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Services ---
	if err := membershipCfg.Validate(); err != nil {
		zapLog.Fatal("invalid membership configuration", zap.Error(err))
	}
	verifier := membership.NewService(deps, membershipCfg)

	reservationCfg := &reservation.Config{RedirectURL: cfg.Reservation.RedirectURL}
	if err := reservationCfg.Validate(); err != nil {
		zapLog.Fatal("invalid reservation configuration", zap.Error(err))
	}

	activities := registry.Default()
	if cfg.Reservation.ActivitiesFile != "" {
		activities, err = registry.LoadRegistry(cfg.Reservation.ActivitiesFile)
		if err != nil {
			zapLog.Fatal("activity registry load failed", zap.Error(err))
		}
	}

	qrCfg := accessqr.FromAppConfig(cfg.QR)
	if err := qrCfg.Validate(); err != nil {
		zapLog.Fatal("invalid qr configuration", zap.Error(err))
	}

	router := gateway.NewRouter(gateway.Dependencies{
		Reservation:      reservation.NewService(reservationCfg, log),
		AccessQR:         accessqr.NewService(accessqr.ServiceDependencies{Logger: log}, qrCfg),
		ReservationForms: membership.NewFormSet("reservation", verifier),
		QRForms:          membership.NewFormSet("access_qr", verifier),
		Activities:       activities,
		Observability:    obs,
		Logger:           log,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		Ready:            ready,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Club gateway stopped gracefully")
}
