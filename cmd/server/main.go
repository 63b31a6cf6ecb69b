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

	carthandler "karigari/internal/cart/handler"
	cartservice "karigari/internal/cart/service"
	cartstore "karigari/internal/cart/store"
	cataloghandler "karigari/internal/catalog/handler"
	"karigari/internal/catalog/resolver"
	catalogservice "karigari/internal/catalog/service"
	catalogstore "karigari/internal/catalog/store"
	checkouthandler "karigari/internal/checkout/handler"
	checkoutservice "karigari/internal/checkout/service"
	"karigari/internal/events"
	httprouter "karigari/internal/http"
	identitystore "karigari/internal/identity/store"
	"karigari/internal/jwttoken"
	ordershandler "karigari/internal/orders/handler"
	ordersservice "karigari/internal/orders/service"
	"karigari/internal/orders/store/buyerorders"
	"karigari/internal/orders/store/sellerorders"
	"karigari/internal/platform/config"
	"karigari/internal/platform/httpserver"
	"karigari/internal/platform/logger"
	"karigari/internal/platform/metrics"
	"karigari/internal/platform/postgres"
	"karigari/internal/platform/redis"
)

type sellerOrderStore interface {
	ordersservice.SellerOrderStore
	checkoutservice.SellerOrderWriter
}

type buyerOrderStore interface {
	ordersservice.BuyerOrderStore
	checkoutservice.BuyerOrderWriter
}

// main wires stores, services and transport, then runs until interrupted.
// Business logic lives in the internal service packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		users        resolver.Directory
		products     catalogservice.Store
		sellerOrders sellerOrderStore
		buyerOrders  buyerOrderStore
	)
	if cfg.PostgresDSN != "" {
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Error("postgres migrate failed", "error", err)
			os.Exit(1)
		}
		users = identitystore.NewPostgres(pool)
		products = catalogstore.NewPostgres(pool)
		sellerOrders = sellerorders.NewPostgres(pool)
		buyerOrders = buyerorders.NewPostgres(pool)
		log.Info("using postgres stores")
	} else {
		users = identitystore.NewMemory()
		products = catalogstore.NewMemory()
		sellerOrders = sellerorders.NewMemory()
		buyerOrders = buyerorders.NewMemory()
		log.Warn("no POSTGRES_DSN set, using in-memory stores")
	}

	cache, err := redis.New(cfg.Redis())
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	var carts cartservice.Store
	if cache != nil {
		carts = cartstore.NewRedis(cache.Client)
		defer cache.Close()
		log.Info("using redis cart store")
	} else {
		carts = cartstore.NewMemory()
		log.Warn("no REDIS_URL set, using in-memory cart store")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer kp.Close()
		publisher = kp
		log.Info("publishing order events", "topic", cfg.KafkaTopic)
	}

	m := metrics.New()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "karigari", "karigari")
	validator := jwttoken.NewMiddlewareAdapter(jwtService)

	res := resolver.New(users)
	catalogSvc, err := catalogservice.New(products, res, catalogservice.WithLogger(log))
	if err != nil {
		log.Error("catalog service init failed", "error", err)
		os.Exit(1)
	}
	cartSvc, err := cartservice.New(carts, cartservice.WithLogger(log))
	if err != nil {
		log.Error("cart service init failed", "error", err)
		os.Exit(1)
	}
	ordersSvc, err := ordersservice.New(sellerOrders, buyerOrders,
		ordersservice.WithLogger(log),
		ordersservice.WithMetrics(m),
		ordersservice.WithPublisher(publisher),
	)
	if err != nil {
		log.Error("orders service init failed", "error", err)
		os.Exit(1)
	}
	checkoutSvc, err := checkoutservice.New(cartSvc, users, sellerOrders, buyerOrders,
		checkoutservice.WithLogger(log),
		checkoutservice.WithMetrics(m),
		checkoutservice.WithPublisher(publisher),
	)
	if err != nil {
		log.Error("checkout service init failed", "error", err)
		os.Exit(1)
	}

	router := httprouter.NewRouter(log, cache,
		cataloghandler.New(catalogSvc, log),
		carthandler.New(cartSvc, catalogSvc, log, validator),
		checkouthandler.New(checkoutSvc, log, validator),
		ordershandler.New(ordersSvc, log, validator),
	)

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("starting karigari", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
