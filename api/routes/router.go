package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweetorder/sweetorder-backend/api/controllers"
	ordercontrollers "github.com/sweetorder/sweetorder-backend/api/controllers/orders"
	"github.com/sweetorder/sweetorder-backend/api/middleware"
	"github.com/sweetorder/sweetorder-backend/internal/auth"
	"github.com/sweetorder/sweetorder-backend/internal/feeds"
	"github.com/sweetorder/sweetorder-backend/internal/likes"
	"github.com/sweetorder/sweetorder-backend/internal/orders"
	product "github.com/sweetorder/sweetorder-backend/internal/products"
	"github.com/sweetorder/sweetorder-backend/internal/stores"
	"github.com/sweetorder/sweetorder-backend/internal/users"
	"github.com/sweetorder/sweetorder-backend/pkg/auth/session"
	"github.com/sweetorder/sweetorder-backend/pkg/config"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
	"github.com/sweetorder/sweetorder-backend/pkg/metrics"
	"github.com/sweetorder/sweetorder-backend/pkg/redis"
	"github.com/sweetorder/sweetorder-backend/pkg/telemetry"
)

// Dependencies carries everything the router wires into handlers. Redis, Sessions,
// Reporter and Gatherer are optional; the features backed by them switch off when nil.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	Sessions    *session.Manager
	Reporter    *telemetry.Reporter
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth     auth.Service
	Register auth.RegisterService
	Users    users.Service
	Likes    likes.Service
	Orders   orders.Service
	Stores   stores.Service
	Products product.Service
	Feeds    feeds.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		deps.Reporter.Middleware,
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	// Typed nils must not reach the middlewares as non-nil interfaces.
	var (
		rateStore   middleware.RateLimitStore
		idemStore   middleware.IdempotencyStore
		verifier    session.AccessSessionChecker
		redisPinger controllers.Pinger
	)
	if deps.Redis != nil {
		rateStore = deps.Redis
		idemStore = deps.Redis
		redisPinger = deps.Redis
	}
	if deps.Sessions != nil {
		verifier = deps.Sessions
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": redisPinger,
		}))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), rateStore, logg)).
				Post("/register", controllers.AuthRegister(deps.Register, logg))
			r.With(middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), rateStore, logg)).
				Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, verifier, logg)).
				Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		// public reads
		r.Get("/stores/{storeId}", controllers.StoreDetail(deps.Stores, logg))
		r.Get("/stores/{storeId}/products", controllers.ProductListByStore(deps.Products, logg))
		r.Get("/stores/{storeId}/feeds", controllers.FeedListByStore(deps.Feeds, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, verifier, logg))

			r.Post("/products/{productId}/likes", controllers.LikeAdd(deps.Likes, enums.LikeTargetProduct, logg))
			r.Delete("/products/{productId}/likes", controllers.LikeRemove(deps.Likes, enums.LikeTargetProduct, logg))
			r.Get("/products/{productId}/likes/me", controllers.LikeStatus(deps.Likes, enums.LikeTargetProduct, logg))
			r.Post("/stores/{storeId}/likes", controllers.LikeAdd(deps.Likes, enums.LikeTargetStore, logg))
			r.Delete("/stores/{storeId}/likes", controllers.LikeRemove(deps.Likes, enums.LikeTargetStore, logg))
			r.Get("/stores/{storeId}/likes/me", controllers.LikeStatus(deps.Likes, enums.LikeTargetStore, logg))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.MeProfile(deps.Users, logg))
				r.Get("/likes/products", controllers.LikedProducts(deps.Likes, logg))
				r.Get("/likes/stores", controllers.LikedStores(deps.Likes, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(middleware.Idempotency(idemStore, cfg.Orders.IdempotencyTTL, logg)).
					Post("/", ordercontrollers.Create(deps.Orders, logg))
				r.Get("/", ordercontrollers.List(deps.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			})

			r.Route("/seller", func(r chi.Router) {
				// opening a store is how a buyer becomes a seller
				r.Post("/stores", controllers.StoreCreate(deps.Stores, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.UserRoleSeller, enums.UserRoleAdmin))

					r.Get("/stores", controllers.StoreListMine(deps.Stores, logg))
					r.Get("/stores/{storeId}", controllers.StoreDetail(deps.Stores, logg))
					r.Put("/stores/{storeId}", controllers.StoreUpdate(deps.Stores, logg))
					r.Get("/stores/{storeId}/orders", ordercontrollers.StoreOrders(deps.Orders, logg))
					r.Post("/stores/{storeId}/products", controllers.ProductCreate(deps.Products, logg))
					r.Post("/stores/{storeId}/feeds", controllers.FeedCreate(deps.Feeds, logg))

					r.Patch("/products/{productId}", controllers.ProductUpdate(deps.Products, logg))
					r.Delete("/products/{productId}", controllers.ProductDelete(deps.Products, logg))
					r.Patch("/feeds/{feedId}", controllers.FeedUpdate(deps.Feeds, logg))
					r.Delete("/feeds/{feedId}", controllers.FeedDelete(deps.Feeds, logg))
					r.Patch("/orders/{orderId}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
				})
			})
		})
	})

	return r
}
