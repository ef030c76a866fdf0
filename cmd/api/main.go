package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bidhouse-app/bidhouse-backend/api/routes"
	"github.com/bidhouse-app/bidhouse-backend/internal/auctions"
	"github.com/bidhouse-app/bidhouse-backend/internal/checkout"
	"github.com/bidhouse-app/bidhouse-backend/internal/payments"
	"github.com/bidhouse-app/bidhouse-backend/internal/realtime"
	stripewebhook "github.com/bidhouse-app/bidhouse-backend/internal/webhooks/stripe"
	"github.com/bidhouse-app/bidhouse-backend/pkg/config"
	"github.com/bidhouse-app/bidhouse-backend/pkg/db"
	"github.com/bidhouse-app/bidhouse-backend/pkg/email"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
	"github.com/bidhouse-app/bidhouse-backend/pkg/metrics"
	"github.com/bidhouse-app/bidhouse-backend/pkg/migrate"
	"github.com/bidhouse-app/bidhouse-backend/pkg/redis"
	"github.com/bidhouse-app/bidhouse-backend/pkg/stripe"
)

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	realtimeMetrics := metrics.NewRealtimeMetrics(registry)
	broadcaster := realtime.NewBroadcaster(cfg.Realtime.SubscriberBuffer, logg, realtimeMetrics)

	auctionService, err := auctions.NewService(
		auctions.NewRepository(dbClient.DB()),
		dbClient,
		broadcaster,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create auction service", err)
		os.Exit(1)
	}

	mailClient := email.NewClient(cfg.Sendgrid, logg)

	paymentsService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		dbClient,
		payments.NewStripeReceiptFetcher(stripeClient),
		mailClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		auctions.NewRepository(dbClient.DB()),
		checkout.NewStripeClient(stripeClient),
		cfg.Checkout,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	stripeWebhookService, err := stripewebhook.NewService(paymentsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	stripeWebhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookIdempotencyTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			auctionService,
			checkoutService,
			broadcaster,
			stripeClient,
			stripeWebhookService,
			stripeWebhookGuard,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
