package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/r-sadik/deliverywindow/internal/handlers"
	"github.com/r-sadik/deliverywindow/internal/inbox"
	"github.com/r-sadik/deliverywindow/internal/outbox"
	"github.com/r-sadik/deliverywindow/internal/storage"
	"github.com/r-sadik/deliverywindow/libs/config"
	"github.com/r-sadik/deliverywindow/libs/db"
	"github.com/r-sadik/deliverywindow/libs/httpx"
	"github.com/r-sadik/deliverywindow/libs/kafkax"
	otelx "github.com/r-sadik/deliverywindow/libs/otel"
	"github.com/r-sadik/deliverywindow/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "deliverywindow")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	apiSecret, err := config.RequiredString("SHOPIFY_API_SECRET")
	if err != nil {
		panic(err)
	}
	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, int32(config.Int("DB_MAX_CONNS", 10)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	store := storage.New(pool)

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
	}
	overrideCache := storage.NewOverrideCache(store, rdb, logger)

	inboxRepo := inbox.NewRepository()
	outboxRepo := outbox.NewRepository(pool)
	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	proxyHandler := handlers.NewProxyHandler(store, overrideCache, logger, apiSecret)
	validateHandler := handlers.NewValidateHandler(store, overrideCache, logger)
	adminHandler := handlers.NewAdminHandler(store, outboxRepo, logger, apiSecret)
	webhookHandler := handlers.NewWebhookHandler(store, inboxRepo, outboxRepo, overrideCache, logger,
		config.String("SHOPIFY_WEBHOOK_SECRET", apiSecret))

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	if rdb != nil {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)

	mux.HandleFunc("/apps/delivery/available-dates", proxyHandler.AvailableDates)
	mux.HandleFunc("/apps/delivery/validate-date", proxyHandler.ValidateDate)
	mux.HandleFunc("/apps/delivery/add-ons", proxyHandler.AddOns)

	mux.HandleFunc("/api/v1/validate-date", validateHandler.ValidateDate)
	mux.Handle("/api/v1/settings", adminHandler.RequireSessionToken(http.HandlerFunc(adminHandler.Settings)))
	mux.Handle("/api/v1/blackouts", adminHandler.RequireSessionToken(http.HandlerFunc(adminHandler.Blackouts)))
	mux.Handle("/api/v1/blackouts/", adminHandler.RequireSessionToken(http.HandlerFunc(adminHandler.BlackoutByID)))
	mux.Handle("/api/v1/addons", adminHandler.RequireSessionToken(http.HandlerFunc(adminHandler.AddOns)))
	mux.Handle("/api/v1/addons/", adminHandler.RequireSessionToken(http.HandlerFunc(adminHandler.AddOnByID)))

	mux.HandleFunc("/webhooks/orders/create", webhookHandler.OrdersCreate)
	mux.HandleFunc("/webhooks/products/update", webhookHandler.ProductsUpdate)
	mux.HandleFunc("/webhooks/app/uninstalled", webhookHandler.AppUninstalled)

	middlewares := []httpx.Middleware{
		httpx.WithRequestID,
		httpx.WithRecover(logger),
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1 << 20),
		httpx.WithTimeout(15 * time.Second),
		httpx.WithCORS(httpx.CORSPolicy{AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS")}),
	}
	if limit := config.Int("RATE_LIMIT_PER_MINUTE", 120); limit > 0 {
		if rdb != nil {
			rrl := httpx.NewRedisRateLimiter(rdb, limit, time.Minute, service)
			middlewares = append(middlewares, rrl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true)))
		} else {
			middlewares = append(middlewares, httpx.NewRateLimiter(limit, time.Minute).Middleware())
		}
	}
	httpHandler := httpx.Chain(mux, middlewares...)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
