package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bidhouse-app/bidhouse-backend/api/controllers"
	webhookcontrollers "github.com/bidhouse-app/bidhouse-backend/api/controllers/webhooks"
	"github.com/bidhouse-app/bidhouse-backend/api/middleware"
	auctionsvc "github.com/bidhouse-app/bidhouse-backend/internal/auctions"
	checkoutsvc "github.com/bidhouse-app/bidhouse-backend/internal/checkout"
	"github.com/bidhouse-app/bidhouse-backend/internal/realtime"
	stripewebhook "github.com/bidhouse-app/bidhouse-backend/internal/webhooks/stripe"
	"github.com/bidhouse-app/bidhouse-backend/pkg/config"
	"github.com/bidhouse-app/bidhouse-backend/pkg/db"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
	"github.com/bidhouse-app/bidhouse-backend/pkg/redis"
	"github.com/bidhouse-app/bidhouse-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	auctionService auctionsvc.Service,
	checkoutService checkoutsvc.Service,
	broadcaster *realtime.Broadcaster,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
	metricsRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public reads. The SSE feed stays open because EventSource cannot
		// attach an Authorization header.
		r.Get("/auctions/{auctionId}", controllers.GetAuction(auctionService, logg))
		r.Get("/realtime/bids", controllers.BidStream(broadcaster, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/auctions", controllers.CreateAuction(auctionService, logg))
			r.Post("/auctions/{auctionId}/bids", controllers.PlaceBid(auctionService, logg))
			r.Post("/checkout", controllers.StartCheckout(checkoutService, logg))
		})
	})

	return r
}
