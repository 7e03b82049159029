// Command gateway serves the prediction gateway.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/repronet/predict-gateway/bootstrap"
	"github.com/repronet/predict-gateway/config"
	"github.com/repronet/predict-gateway/gateway"
	"github.com/repronet/predict-gateway/logger"
	"github.com/repronet/predict-gateway/observability"
	"github.com/repronet/predict-gateway/server"
	"github.com/repronet/predict-gateway/version"
)

const serviceName = "predict-gateway"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg gateway.Config
	if err := config.LoadConfig(serviceName, &cfg, config.WithEnvPrefix("GATEWAY")); err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.Short()
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	providers, err := observability.Setup(ctx, cfg.Observability, app.Name, app.Version, app.Environment)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}

	gw, err := gateway.New(&cfg,
		gateway.WithLogger(app.Logger),
		gateway.WithMetrics(providers.Metrics),
	)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, app.Logger)
	gw.RegisterRoutes(srv.GinEngine())
	srv.RegisterDefaultEndpoints(app.Name, app.Environment, gw.HealthCheckers)

	if err := app.RegisterComponent(gw); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	app.OnReady(func(context.Context) error {
		app.Logger.Info("Gateway listening", logger.Fields(
			"port", cfg.Server.Port,
			"environment", app.Environment,
			"backends", len(cfg.Backends),
		))
		return nil
	})
	app.OnStop(func(context.Context) error {
		app.Logger.Info("Draining in-flight requests")
		return nil
	})

	runErr := app.Run(ctx)
	// Flushed after the server has drained.
	if err := providers.Shutdown(context.Background()); err != nil {
		app.Logger.Warn("Telemetry shutdown failed", logger.Fields("error", err.Error()))
	}
	return runErr
}
