package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pawmart/storefront-backend/api/controllers"
	"github.com/pawmart/storefront-backend/api/middleware"
	"github.com/pawmart/storefront-backend/internal/auth"
	"github.com/pawmart/storefront-backend/pkg/config"
	"github.com/pawmart/storefront-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Verifier    *auth.Verifier
	CartFactory controllers.CartFactory
	Catalog     controllers.CatalogService
	Chat        controllers.ChatService
	SessionAPI  controllers.SessionAPI
	Health      map[string]controllers.Pinger
	Registry    *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Session(deps.Verifier, cfg.Upstream.SessionCookie, logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartFactory, logg))
			r.Delete("/", controllers.CartClear(deps.CartFactory, logg))
			r.Post("/items", controllers.CartAdd(deps.CartFactory, logg))
			r.Put("/items", controllers.CartUpdateQuantity(deps.CartFactory, logg))
			r.Delete("/items/{productID}", controllers.CartRemove(deps.CartFactory, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.CartFactory, logg))
		r.Get("/orders", controllers.OrderHistory(deps.CartFactory, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Catalog, logg))
			r.Get("/lookup", controllers.ProductsLookup(deps.Catalog, logg))
			r.Get("/{productID}", controllers.ProductDetail(deps.Catalog, logg))
			r.Get("/{productID}/reviews", controllers.ProductReviews(deps.Catalog, logg))
		})
		r.Post("/reviews", controllers.ReviewCreate(deps.Catalog, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(deps.SessionAPI, logg))
			r.Get("/session", controllers.AuthSession(deps.SessionAPI, logg))
			r.Post("/logout", controllers.AuthLogout(deps.SessionAPI, cfg.Upstream.SessionCookie, logg))
		})

		r.Post("/chat", controllers.ChatSend(deps.Chat, logg))
	})

	return r
}
