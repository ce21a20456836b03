package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pcastano/order-intake/internal/analytics"
	"github.com/pcastano/order-intake/internal/config"
	"github.com/pcastano/order-intake/internal/downstream"
	"github.com/pcastano/order-intake/internal/httpx"
	"github.com/pcastano/order-intake/internal/order"
	"github.com/pcastano/order-intake/internal/orderlog"
	logsqlite "github.com/pcastano/order-intake/internal/orderlog/sqlite"
	"github.com/pcastano/order-intake/internal/pkg/cache"
	"github.com/pcastano/order-intake/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	var orderCache cache.Cache
	if cfg.RedisAddr != "" {
		orderCache = cache.NewRedisCache(cfg.RedisAddr, "order-intake")
	}

	var audit orderlog.Repository
	if cfg.OrderLogPath != "" {
		repo, err := logsqlite.Open(cfg.OrderLogPath)
		if err != nil {
			slog.Error("failed to open order audit log", "path", cfg.OrderLogPath, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		audit = repo
	}

	notifier := downstream.NewNotifier(cfg.PaymentServiceURL, cfg.ShippingServiceURL, cfg.DownstreamTimeout)
	publisher := analytics.NewPublisher(cfg.BrokerURL, cfg.NotificationTopic,
		analytics.WithDeadline(cfg.PublishDeadline))

	store := order.NewStore()
	service := order.NewService(store, notifier, publisher, orderCache, audit)

	handler := httpx.NewHandler(service)
	router := httpx.NewRouter(handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", "error", err)
		}
	}()

	slog.Info("order intake service running", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
