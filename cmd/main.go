package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Dang-Huynh/FoodOrderingService/internal/api"
	"github.com/Dang-Huynh/FoodOrderingService/internal/auth"
	"github.com/Dang-Huynh/FoodOrderingService/internal/cart"
	"github.com/Dang-Huynh/FoodOrderingService/internal/catalog"
	"github.com/Dang-Huynh/FoodOrderingService/internal/checkout"
	"github.com/Dang-Huynh/FoodOrderingService/internal/config"
	"github.com/Dang-Huynh/FoodOrderingService/internal/database"
	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/messaging"
	"github.com/Dang-Huynh/FoodOrderingService/internal/pricing"
	"github.com/Dang-Huynh/FoodOrderingService/internal/profile"
	"github.com/Dang-Huynh/FoodOrderingService/internal/promo"
	"github.com/Dang-Huynh/FoodOrderingService/internal/services/notification"
	"github.com/Dang-Huynh/FoodOrderingService/internal/services/order"
	"github.com/Dang-Huynh/FoodOrderingService/internal/services/tracking"
	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
	"github.com/Dang-Huynh/FoodOrderingService/migrations"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (cart-service, order-notifier, migrate)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		port       = flag.Int("port", 0, "HTTP port (defaults to server.port)")
		notify     = flag.Bool("notify", false, "Publish placed orders to RabbitMQ (cart-service)")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count (order-notifier)")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port == 0 {
		*port = cfg.Server.Port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":   *mode,
		"port":   *port,
		"config": *configPath,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	gin.SetMode(gin.ReleaseMode)

	switch *mode {
	case "cart-service":
		if err := runCartService(ctx, cfg, log, *port, *notify); err != nil {
			log.Error("service_failed", "Cart service failed", requestID, err, nil)
			os.Exit(1)
		}
	case "order-notifier":
		if err := runOrderNotifier(ctx, cfg, log, *port, *prefetch); err != nil {
			log.Error("service_failed", "Order notifier failed", requestID, err, nil)
			os.Exit(1)
		}
	case "migrate":
		if err := runMigrations(ctx, cfg, log); err != nil {
			log.Error("service_failed", "Migrations failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runCartService serves the client core over HTTP until ctx is done
func runCartService(ctx context.Context, cfg *config.Config, log *logger.Logger, port int, notify bool) error {
	requestID := logger.GenerateRequestID()

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	log.Info("storage_opened", fmt.Sprintf("Using %s storage", cfg.Storage.Driver), requestID, map[string]interface{}{
		"driver": cfg.Storage.Driver,
		"path":   cfg.Storage.Path,
	})

	writer := storage.NewWriter(store, log)
	shoppingCart := cart.Load(ctx, writer)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	session := auth.NewSession(ctx, client, writer, log)
	client.WithTokens(session)

	profiles := profile.Load(ctx, writer)
	calc := pricing.NewCalculator(pricing.RatesFromConfig(cfg.Pricing))
	orchestrator := checkout.New(shoppingCart, writer, calc, promo.NewSelection(promo.Default()), client, log)
	orchestrator.UseProfile(profiles.Get())

	if notify {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			log.Error("rabbitmq_unavailable", "Order events will not be published", requestID, err, nil)
		} else {
			defer conn.Close()
			orchestrator.WithNotifier(messaging.NewPublisher(conn, log))
			log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)
		}
	}

	handler := order.NewHandler(order.Deps{
		Cart:     shoppingCart,
		Browser:  catalog.NewBrowser(client, shoppingCart, writer, log),
		Checkout: orchestrator,
		Session:  session,
		Profiles: profiles,
		Tracking: tracking.NewHandler(tracking.NewService(client, log), log),
		Writer:   writer,
	}, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler.SetupRoutes(cfg.Server.AllowedOrigins),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Cart service started on port %d", port), requestID, map[string]interface{}{
			"port":     port,
			"api":      cfg.API.BaseURL,
			"notifier": notify,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

// runOrderNotifier consumes order notifications, records them and pushes
// them to WebSocket clients on /ws
func runOrderNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger, port, prefetch int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "order-notifier", prefetch)
	hub := notification.NewHub(log)
	subscriber := notification.NewSubscriber(consumer, db, hub, log)

	router := notification.NewRouter(hub, db, func(ctx context.Context) bool {
		return db.Ping(ctx) == nil && !conn.IsClosed()
	}, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return subscriber.Start(gctx)
	})

	g.Go(func() error {
		log.Info("service_started", fmt.Sprintf("Notification socket listening on port %d", port), requestID, nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runMigrations applies the embedded schema and exits
func runMigrations(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("migrations_applied", "Database schema is up to date", "", nil)
	return nil
}

