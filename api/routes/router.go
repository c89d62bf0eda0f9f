package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/promocart-backend/api/controllers"
	"github.com/angelmondragon/promocart-backend/api/middleware"
	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/internal/cartitems"
	"github.com/angelmondragon/promocart-backend/internal/inventory"
	"github.com/angelmondragon/promocart-backend/pkg/config"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
	"github.com/angelmondragon/promocart-backend/pkg/redis"
)

// InventoryService is the inventory surface the HTTP layer needs.
type InventoryService interface {
	States(ctx context.Context, skus []string) (map[string]inventory.State, error)
	CommitLineItemStockUsage(ctx context.Context, items []cart.LineItem) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	cartItems cartitems.Service,
	inventoryService InventoryService,
) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	deps := map[string]controllers.Pinger{"db": dbP}
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		deps["redis"] = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/carts", func(r chi.Router) {
			r.Post("/resolve", controllers.CartResolve(cartItems, logg))
			r.Post("/validate", controllers.CartValidate(cartItems, logg))
			r.Post("/{cartId}/items", controllers.CartApplyChange(cartItems, logg))
			r.Post("/{cartId}/product-groups/reset", controllers.CartResetProductGroups(cartItems, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryStates(inventoryService, logg))
			r.Post("/commit", controllers.InventoryCommit(inventoryService, logg))
		})
	})

	return r
}
