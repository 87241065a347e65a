package main

/*
Risk Calculator API Server
==========================

Serves the position sizing engine over HTTP:

- POST /api/v1/calculate   typed JSON body, or raw form strings with ?mode=form
- GET  /api/v1/defaults    starting values for a form
- GET  /api/v1/health      liveness and exchange lookup status
- GET  /metrics            Prometheus metrics

Configuration comes from RISK_* environment variables, optionally loaded from a
.env file. Set RISK_EXCHANGE_ENABLED=true to cap leverage at Bybit instrument
limits when a request names a symbol.
*/

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ducminhle1904/crypto-risk-calculator/cmd/common"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/api"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/config"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/exchange/adapters"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/logger"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/monitoring"
)

const appName = "risk-server"

func main() {
	fs := flag.NewFlagSet(appName, flag.ExitOnError)
	flags := common.RegisterCommonFlags(fs)
	fs.Parse(os.Args[1:])

	if *flags.Version {
		common.PrintVersion(os.Stdout, appName)
		return
	}

	cli := flags.NewCLILogger(os.Stdout)
	cli.Header(common.ProjectName + " API")

	cfg, err := config.LoadConfig(*flags.EnvFile)
	if err != nil {
		cli.Error("Failed to load configuration: %v", err)
		os.Exit(2)
	}

	level := cfg.Logging.Level
	if *flags.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, Production: cfg.IsProduction(), File: cfg.Logging.File})
	if err != nil {
		cli.Error("Failed to initialize logger: %v", err)
		os.Exit(2)
	}
	defer log.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := buildServer(cfg, log)
	if err != nil {
		log.Error("failed to build server", zap.Error(err))
		os.Exit(2)
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", cfg.Addr()),
			zap.String("environment", cfg.Environment),
			zap.Bool("exchange_enabled", cfg.Exchange.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	cli.Success("Listening on %s", cfg.Addr())

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("HTTP server failed", zap.Error(err))
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

// buildServer wires the calculator, optional exchange lookup and HTTP routes
func buildServer(cfg *config.Config, log *zap.Logger) (*http.Server, error) {
	health := monitoring.NewHealthChecker(cfg.Exchange.Enabled)

	opts := []calculator.Option{
		calculator.WithLogger(log.Named("calculator")),
		calculator.WithMetrics(monitoring.NewRecorder(health)),
	}

	if cfg.Exchange.Enabled {
		factory := adapters.NewFactory()
		adapterCfg := cfg.ExchangeAdapterConfig()
		provider, err := factory.CreateLimitsProvider(adapterCfg)
		if err != nil {
			return nil, err
		}
		log.Info("exchange leverage limits enabled",
			zap.String("exchange", adapterCfg.Name),
			zap.String("environment", factory.Environment(adapterCfg)),
			zap.String("category", adapterCfg.Category),
			zap.Duration("cache_ttl", adapterCfg.CacheTTL))

		opts = append(opts, calculator.WithLimitsProvider(provider))
	}

	server := api.NewServer(log.Named("http"), calculator.New(opts...), health, api.Options{
		Defaults:       cfg.DefaultFields(),
		CORSOrigins:    cfg.Server.CORSOrigins,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	})

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     zap.NewStdLog(log.Named("http")),
	}, nil
}
