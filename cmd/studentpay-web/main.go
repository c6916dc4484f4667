package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studentpay/config"
	adaptergateway "studentpay/internal/adapter/gateway"
	adapterhandler "studentpay/internal/adapter/handler"
	"studentpay/internal/domain"
	infrasession "studentpay/internal/infrastructure/session"
	infrastore "studentpay/internal/infrastructure/store"
	"studentpay/internal/usecase"
	appmiddleware "studentpay/middleware"
	"studentpay/utils/logger"
	"studentpay/utils/otel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	logger.Init(otelCfg.Enabled)

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"api_base_url", cfg.APIBaseURL,
		"port", cfg.Port,
		"verification_ttl", cfg.VerificationTTL,
		"store_backend", cfg.StoreBackend)

	// Infrastructure
	kv, closeKV, err := openStore(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open credential store", "error", err)
		os.Exit(1)
	}
	defer closeKV()

	api := adaptergateway.NewStudentPayAPI(cfg.APIBaseURL, cfg.HTTPTimeout)
	var registryOpts []infrasession.Option
	if cfg.StoreBackend == config.StoreRedis {
		registryOpts = append(registryOpts, infrasession.WithSharedKV())
	}
	registry := infrasession.NewRegistry(api, kv, cfg.VerificationTTL, cfg.SessionIdleTimeout, slog.Default(), registryOpts...)

	// Usecases
	directory := usecase.NewDirectory(api)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(appmiddleware.SecurityHeaders(cfg.SessionCookieSecure))

	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/health" || p == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	credentialRL := appmiddleware.NewRateLimiter(ctx, 10.0/60.0, 5) // 10 req/min

	adapterhandler.Routes{
		Auth:       adapterhandler.NewAuthHandler(),
		Department: adapterhandler.NewDepartmentHandler(directory),
		Payment:    adapterhandler.NewPaymentHandler(directory),
		Health:     adapterhandler.NewHealthHandler(registry.Len),
		Navigator:  adapterhandler.NewNavigator(slog.Default()),
		Sessions:   registry,
		Cookie: adapterhandler.CookieConfig{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionCookieSecure,
			MaxAge: cfg.SessionIdleTimeout,
		},
		Limit: credentialRL.Middleware(),
	}.Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting studentpay gateway", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return registry.Run(gCtx, time.Minute)
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// openStore opens the KV visitor credentials are kept in.
func openStore(ctx context.Context, cfg *config.Config) (domain.KV, func(), error) {
	if cfg.StoreBackend != config.StoreRedis {
		return infrastore.NewMemoryKV(), func() {}, nil
	}

	kv, err := infrastore.NewRedisKV(cfg.RedisURL, "studentpay:", cfg.SessionIdleTimeout)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := kv.Ping(pingCtx); err != nil {
		_ = kv.Close()
		return nil, nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return kv, func() { _ = kv.Close() }, nil
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
