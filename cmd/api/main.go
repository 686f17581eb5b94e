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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/sweetorder/sweetorder-backend/api/routes"
	"github.com/sweetorder/sweetorder-backend/internal/auth"
	"github.com/sweetorder/sweetorder-backend/internal/feeds"
	"github.com/sweetorder/sweetorder-backend/internal/likes"
	"github.com/sweetorder/sweetorder-backend/internal/orders"
	"github.com/sweetorder/sweetorder-backend/internal/ownership"
	product "github.com/sweetorder/sweetorder-backend/internal/products"
	"github.com/sweetorder/sweetorder-backend/internal/stores"
	"github.com/sweetorder/sweetorder-backend/internal/users"
	"github.com/sweetorder/sweetorder-backend/pkg/auth/session"
	"github.com/sweetorder/sweetorder-backend/pkg/config"
	"github.com/sweetorder/sweetorder-backend/pkg/db"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
	"github.com/sweetorder/sweetorder-backend/pkg/metrics"
	"github.com/sweetorder/sweetorder-backend/pkg/migrate"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox"
	"github.com/sweetorder/sweetorder-backend/pkg/redis"
	"github.com/sweetorder/sweetorder-backend/pkg/telemetry"
)

const shutdownTimeout = 15 * time.Second

// release is stamped at build time with -ldflags "-X main.release=...".
var release = "dev"

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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api exited with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter, err := telemetry.New(cfg.Sentry, release)
	if err != nil {
		return err
	}
	defer reporter.Flush(2 * time.Second)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		redisClient *redis.Client
		sessions    *session.Manager
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()

		sessions, err = session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			return err
		}
	} else {
		logg.Warn(ctx, "redis disabled: sessions, rate limits and idempotency keys are off")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := buildServices(cfg, logg, dbClient, redisClient, sessions, reg)
	if err != nil {
		return err
	}
	deps.Config = cfg
	deps.Logger = logg
	deps.DB = dbClient
	deps.Redis = redisClient
	deps.Sessions = sessions
	deps.Reporter = reporter
	deps.Gatherer = reg
	deps.HTTPMetrics = metrics.NewHTTPMetrics(reg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   server.Addr,
		"sentry": reporter.Enabled(),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessions *session.Manager,
	reg prometheus.Registerer,
) (routes.Dependencies, error) {
	conn := dbClient.DB()
	guard := ownership.NewGuard(conn)
	events := outbox.NewService(outbox.NewRepository(conn), logg)
	userRepo := users.NewRepository(conn)

	authParams := auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}
	if sessions != nil {
		authParams.SessionManager = sessions
	}
	authService, err := auth.NewService(authParams)
	if err != nil {
		return routes.Dependencies{}, err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		Users:          userRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	userService, err := users.NewService(userRepo)
	if err != nil {
		return routes.Dependencies{}, err
	}

	likeService, err := likes.NewService(likes.ServiceParams{
		DB:      dbClient,
		Config:  cfg.Likes,
		Metrics: metrics.NewLikeMetrics(reg),
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	orderRepo := orders.NewRepository(conn)
	var numbers orders.NumberGenerator
	if redisClient != nil && cfg.Orders.UseRedisSequence {
		numbers = orders.NewNumberGenerator(cfg.Orders.NumberPrefix, redisClient, cfg.Orders.SequenceTTL, orderRepo)
	} else {
		numbers = orders.NewNumberGenerator(cfg.Orders.NumberPrefix, nil, 0, orderRepo)
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:    orderRepo,
		Tx:      dbClient,
		Outbox:  events,
		Guard:   guard,
		Numbers: numbers,
		Config:  cfg.Orders,
		Metrics: metrics.NewOrderMetrics(reg),
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	storeService, err := stores.NewService(stores.ServiceParams{
		Repo:     stores.NewRepository(conn),
		Promoter: stores.UserPromoter{Users: userRepo},
		Guard:    guard,
		Tx:       dbClient,
		Outbox:   events,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	productService, err := product.NewService(product.ServiceParams{
		Repo:   product.NewRepository(conn),
		Tx:     dbClient,
		Guard:  guard,
		Outbox: events,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	feedService, err := feeds.NewService(feeds.NewRepository(conn), guard)
	if err != nil {
		return routes.Dependencies{}, err
	}

	return routes.Dependencies{
		Auth:     authService,
		Register: registerService,
		Users:    userService,
		Likes:    likeService,
		Orders:   orderService,
		Stores:   storeService,
		Products: productService,
		Feeds:    feedService,
	}, nil
}
