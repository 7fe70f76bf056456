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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/pallab-BJIT/mid-term-project/api/routes"
	"github.com/pallab-BJIT/mid-term-project/internal/auth"
	"github.com/pallab-BJIT/mid-term-project/internal/books"
	"github.com/pallab-BJIT/mid-term-project/internal/cart"
	"github.com/pallab-BJIT/mid-term-project/internal/checkout"
	"github.com/pallab-BJIT/mid-term-project/internal/discounts"
	"github.com/pallab-BJIT/mid-term-project/internal/reviews"
	"github.com/pallab-BJIT/mid-term-project/internal/transactions"
	"github.com/pallab-BJIT/mid-term-project/internal/users"
	"github.com/pallab-BJIT/mid-term-project/pkg/auth/session"
	"github.com/pallab-BJIT/mid-term-project/pkg/config"
	"github.com/pallab-BJIT/mid-term-project/pkg/db"
	"github.com/pallab-BJIT/mid-term-project/pkg/instance"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/metrics"
	"github.com/pallab-BJIT/mid-term-project/pkg/migrate"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox"
	"github.com/pallab-BJIT/mid-term-project/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	services, err := buildServices(cfg, logg, dbClient, sessionManager, promRegistry)
	if err != nil {
		logg.Error(context.Background(), "failed to create services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Infra{
			DB:       dbClient,
			Redis:    redisClient,
			Sessions: sessionManager,
			Gatherer: promRegistry,
		}, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	cancel()
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		exitCode = 1
	}
	logg.Info(ctx, "api server stopped")
	os.Exit(exitCode)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessions *session.Manager, reg prometheus.Registerer) (routes.Services, error) {
	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	bookRepo := books.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	campaignRepo := discounts.NewRepository(conn)
	txnRepo := transactions.NewRepository(conn)
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	var out routes.Services
	var err error

	if out.Auth, err = auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	}); err != nil {
		return out, fmt.Errorf("auth service: %w", err)
	}
	if out.Register, err = auth.NewRegisterService(auth.RegisterServiceParams{
		Users:          userRepo,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}); err != nil {
		return out, fmt.Errorf("register service: %w", err)
	}
	if out.Users, err = users.NewService(userRepo, logg); err != nil {
		return out, fmt.Errorf("user service: %w", err)
	}
	if out.Books, err = books.NewService(bookRepo, logg); err != nil {
		return out, fmt.Errorf("book service: %w", err)
	}
	if out.Reviews, err = reviews.NewService(dbClient, reviews.NewRepository(conn), bookRepo, emitter, logg); err != nil {
		return out, fmt.Errorf("review service: %w", err)
	}
	if out.Cart, err = cart.NewService(dbClient, cartRepo, bookRepo, campaignRepo, logg); err != nil {
		return out, fmt.Errorf("cart service: %w", err)
	}
	if out.Checkout, err = checkout.NewService(checkout.Deps{
		Tx:           dbClient,
		Users:        userRepo,
		Carts:        cartRepo,
		Books:        bookRepo,
		Campaigns:    campaignRepo,
		Stock:        checkout.NewRepository(conn),
		Transactions: txnRepo,
		Outbox:       emitter,
		Metrics:      metrics.NewCheckoutMetrics(reg),
		Logger:       logg,
	}); err != nil {
		return out, fmt.Errorf("checkout service: %w", err)
	}
	if out.Transactions, err = transactions.NewService(txnRepo, logg); err != nil {
		return out, fmt.Errorf("transaction service: %w", err)
	}
	if out.Discounts, err = discounts.NewService(dbClient, campaignRepo, bookRepo, emitter, discounts.RulesFromConfig(cfg.Discount), logg); err != nil {
		return out, fmt.Errorf("discount service: %w", err)
	}
	return out, nil
}
