package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"portalConsole/internal/config"
	handler "portalConsole/internal/modules/portal/application/handler"
	"portalConsole/internal/modules/portal/application/port"
	usecase "portalConsole/internal/modules/portal/application/usecase"
	"portalConsole/internal/modules/portal/infrastructure"
	transport "portalConsole/internal/modules/portal/interface"
	"portalConsole/internal/platform/broker"
	"portalConsole/internal/platform/metrics"
	"portalConsole/internal/shared/auth"
	"portalConsole/internal/shared/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env so local runs pick up configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("portal config resolved", slog.String("baseUrl", cfg.Portal.BaseURL), slog.String("queryPath", cfg.Portal.QueryPath), slog.String("commandPath", cfg.Portal.CommandPath), slog.Duration("timeout", cfg.Portal.Timeout))
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID), slog.Any("topics", cfg.Kafka.Topics))

	if err := run(cfg); err != nil {
		slog.Error("portal console stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	validator, err := auth.NewJWTValidatorWithPublicKey(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)
	if err != nil {
		return err
	}
	views, err := usecase.NewViewRegistry(cfg.Views.MaxViews)
	if err != nil {
		return err
	}

	hub := infrastructure.NewHub()
	registry := infrastructure.NewHandlerRegistry()
	recorder := metrics.NewRecorder()
	recorder.Gauge("live_views", "Open list views.", views.Len)
	recorder.Gauge("ws_clients", "Connected websocket clients.", hub.Len)

	broadcastUC := usecase.NewBroadcastUseCase(hub)
	connectUC := usecase.NewConnectViewUseCase(validator, usecase.DefaultCatalog())

	// One handler per configured topic; each event fans out to /ws/events and
	// refreshes live views of the entity.
	for entity, topics := range cfg.Kafka.Topics {
		for _, topic := range topics {
			registry.Register(handler.NewEntityStreamHandler(entity, topic, cfg.Websocket.AllowedActions, broadcastUC, views))
		}
	}

	portals := func(r *http.Request) (port.Portal, error) {
		client, err := infrastructure.NewSessionHTTPClient(cfg.Portal.BaseURL, r.Cookies())
		if err != nil {
			return nil, err
		}
		return infrastructure.NewPortalHTTPClient(infrastructure.PortalClientConfig{
			BaseURL:     cfg.Portal.BaseURL,
			QueryPath:   cfg.Portal.QueryPath,
			CommandPath: cfg.Portal.CommandPath,
			CSRFCookie:  cfg.Portal.CSRFCookie,
			Timeout:     cfg.Portal.Timeout,
		}, client), nil
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())

	viewHandler := transport.NewViewWebsocketHandler(transport.ViewSocketDeps{
		Hub:      hub,
		Connect:  connectUC,
		Views:    views,
		Portals:  portals,
		Observer: recorder,
	}, transport.ViewSocketOptions{
		SendBuffer:     cfg.Websocket.SendBuffer,
		ReadLimit:      cfg.Websocket.ReadLimit,
		CommandTimeout: cfg.Websocket.CommandTimeout,
		ConfirmTimeout: cfg.Websocket.ConfirmTimeout,
		Debounce:       cfg.Views.Debounce,
		PageSize:       cfg.Views.PageSize,
		EnvelopeHost:   cfg.Portal.EnvelopeHost,
		Version:        cfg.Portal.Version,
		TokenCookie:    cfg.Security.TokenCookie,
		AllowedOrigins: cfg.Security.AllowedOrigins,
	})
	eventsHandler := transport.NewEventsWebsocketHandler(hub, connectUC, transport.EventsSocketOptions{
		SendBuffer:     cfg.Websocket.SendBuffer,
		AllowedActions: cfg.Websocket.AllowedActions,
		TokenCookie:    cfg.Security.TokenCookie,
		AllowedOrigins: cfg.Security.AllowedOrigins,
	})
	httpEvents := handler.NewEntityStreamHandler("", "http", cfg.Websocket.AllowedActions, broadcastUC, views)

	// Token in the path or via header/query/cookie fallback.
	e.GET("/ws/views/:entity/:token", viewHandler)
	e.GET("/ws/views/:entity", viewHandler)
	e.GET("/ws/events", eventsHandler)
	e.POST("/api/events", transport.NewEventsHTTPHandler(connectUC, httpEvents, cfg.Security.TokenCookie))
	e.GET("/api/catalog", transport.NewCatalogHTTPHandler(connectUC.Catalog))
	e.GET("/api/catalog/:entity", transport.NewCatalogHTTPHandler(connectUC.Catalog))
	e.GET("/healthz", transport.NewHealthHTTPHandler(views, hub))
	e.GET("/metrics", echo.WrapHandler(recorder.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	broker.StartKafkaConsumers(ctx, group, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.AllTopics())

	group.Go(func() error {
		slog.Info("http server listening", slog.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := e.Shutdown(shutdownCtx)
		views.Close()
		hub.Close()
		return err
	})

	return group.Wait()
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
