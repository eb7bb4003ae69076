package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"oddscli/internal/config"
	"oddscli/internal/services"
	handlers "oddscli/internal/transport/http"
)

// Application is the read-only HTTP view over the stored series
type Application struct {
	Runtime *Runtime
	Series  *services.SeriesService
	Health  *services.HealthService
	Router  http.Handler
	Server  *http.Server

	addr net.Addr
}

// NewApplication wires the services and the router
func NewApplication(rt *Runtime) *Application {
	series := services.NewSeriesService(rt.Paths, rt.Logger)
	health := services.NewHealthService(config.AppVersion, rt.Paths, series, rt.Logger)

	router := handlers.NewRouter(handlers.RouterDeps{
		Series:         series,
		Health:         health,
		Tracer:         rt.OTel.Tracer,
		Metrics:        rt.Metrics,
		MetricsHandler: rt.OTel.MetricsHandler(),
		RateLimit:      rt.Config.Server.RateLimit,
		RateBurst:      rt.Config.Server.RateBurst,
		IncludeStack:   rt.Config.Telemetry.Environment == "development",
		Logger:         rt.Logger,
	})

	return &Application{
		Runtime: rt,
		Series:  series,
		Health:  health,
		Router:  router,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", rt.Config.Server.Port),
			Handler:      router,
			ReadTimeout:  rt.Config.Server.ReadTimeout,
			WriteTimeout: rt.Config.Server.WriteTimeout,
			IdleTimeout:  rt.Config.Server.IdleTimeout,
		},
	}
}

// Start listens and serves in the background. A serve failure cancels the application.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.addr = ln.Addr()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Runtime.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	readiness := a.Health.ReadinessCheck(ctx)
	if !readiness.Ready() {
		a.Runtime.Logger.WarnContext(ctx, "Starting while not ready", slog.Any("services", readiness.Services))
	}

	a.Runtime.Logger.InfoContext(ctx, "Server started",
		slog.String("address", ln.Addr().String()),
		slog.String("series", a.Runtime.Paths.SeriesName))
	return nil
}

// Addr returns the listening address once started
func (a *Application) Addr() net.Addr {
	return a.addr
}

// Stop gracefully stops the server
func (a *Application) Stop(ctx context.Context) error {
	a.Runtime.Logger.InfoContext(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Runtime.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	a.Runtime.Logger.InfoContext(ctx, "Server shutdown complete")
	return nil
}

// Run serves until SIGINT or SIGTERM
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(runCtx, cancel); err != nil {
		return err
	}
	<-runCtx.Done()
	return a.Stop(context.Background())
}
