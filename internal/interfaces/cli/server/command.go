package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	executionUsecases "mise/internal/application/execution/usecases"
	intentUsecases "mise/internal/application/intent/usecases"
	"mise/internal/infrastructure/config"
	"mise/internal/infrastructure/ledgergw"
	"mise/internal/infrastructure/store"
	httpRouter "mise/internal/interfaces/http"
	"mise/internal/interfaces/http/handlers"
	"mise/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the mise HTTP server with specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting server",
		"environment", env,
		"store_driver", cfg.Store.Driver)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	log := logger.NewLogger()

	locationStore, err := buildStore(cfg, log)
	if err != nil {
		return err
	}

	ledgerClient := ledgergw.NewGatewayClient(&cfg.Ledger, log)

	buildIntentUC := intentUsecases.NewBuildIntentUseCase(log)
	executeUC := executionUsecases.NewExecuteTransferUseCase(
		ledgerClient,
		executionConfigFrom(cfg),
		log,
	)

	paymentHandler := handlers.NewPaymentHandler(buildIntentUC, executeUC, cfg.Payments.PendingWindowMinutes, log)
	locationHandler := handlers.NewLocationHandler(locationStore, log)

	router := httpRouter.NewRouter(paymentHandler, locationHandler, &cfg.Server, log)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

// buildStore selects the location state store backend. The redis driver is
// pinged at startup so a misconfigured backend fails fast.
func buildStore(cfg *config.Config, log logger.Interface) (store.Store, error) {
	switch cfg.Store.Driver {
	case "redis":
		redisStore := store.NewRedisStore(&cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisStore.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Infow("using redis location store", "addr", cfg.Redis.GetAddr())
		return redisStore, nil
	case "memory", "":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func executionConfigFrom(cfg *config.Config) executionUsecases.ExecutionConfig {
	return executionUsecases.ExecutionConfig{
		AllowedEnv:     cfg.Ledger.AllowedEnv,
		SubmitTimeout:  time.Duration(cfg.Ledger.SubmitTimeout) * time.Second,
		ConfirmTimeout: time.Duration(cfg.Ledger.ConfirmTimeout) * time.Second,
		MaxAttempts:    cfg.Ledger.MaxAttempts,
		BackoffStep:    time.Duration(cfg.Ledger.BackoffStepMS) * time.Millisecond,
	}
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
