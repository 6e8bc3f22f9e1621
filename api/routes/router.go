package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/cinecart/api/controllers"
	"github.com/angelmondragon/cinecart/api/middleware"
	"github.com/angelmondragon/cinecart/internal/address"
	"github.com/angelmondragon/cinecart/internal/cart"
	"github.com/angelmondragon/cinecart/internal/catalog"
	"github.com/angelmondragon/cinecart/internal/checkout"
	"github.com/angelmondragon/cinecart/internal/favorites"
	"github.com/angelmondragon/cinecart/pkg/config"
	"github.com/angelmondragon/cinecart/pkg/logger"
)

// Dependencies carries everything the router wires into handlers. Pingers with
// a nil value are skipped by the readiness probe; a nil RateLimiter disables
// lookup throttling.
type Dependencies struct {
	Catalog   catalog.Service
	Cart      cart.Service
	Favorites favorites.Service
	Address   address.Service
	Checkout  checkout.Service

	Pingers     map[string]controllers.Pinger
	RateLimiter middleware.RateLimiter
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	lookupPolicy := middleware.NewRateLimitPolicy(
		"cep",
		cfg.LookupRateLimit.Window,
		cfg.LookupRateLimit.Limit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Route("/movies", func(r chi.Router) {
			r.Get("/popular", controllers.MoviesPopular(deps.Catalog, logg))
			r.Get("/search", controllers.MoviesSearch(deps.Catalog, logg))
			r.Get("/{movieId}", controllers.MovieDetails(deps.Catalog, logg))
		})
		r.Get("/genres", controllers.Genres(deps.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Put("/items/{movieId}", controllers.CartSetQuantity(deps.Cart, logg))
			r.Delete("/items/{movieId}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(deps.Favorites, logg))
			r.Post("/{movieId}/toggle", controllers.FavoritesToggle(deps.Favorites, logg))
		})

		r.With(middleware.RateLimit(lookupPolicy, deps.RateLimiter, logg)).
			Get("/address/{cep}", controllers.AddressLookup(deps.Address, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutSubmit(deps.Checkout, logg))
			r.Post("/mask", controllers.CheckoutMask(logg))
			r.Post("/validate", controllers.CheckoutValidateField(logg))
			r.With(middleware.RateLimit(lookupPolicy, deps.RateLimiter, logg)).
				Post("/autofill", controllers.CheckoutAutofill(deps.Checkout, logg))
			r.Post("/complete", controllers.CheckoutComplete(deps.Checkout, logg))
		})
	})

	return r
}
