package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/paw-chain/swap/api"
	"github.com/paw-chain/swap/app"
	"github.com/paw-chain/swap/app/health"
	"github.com/paw-chain/swap/app/telemetry"
	swapkeeper "github.com/paw-chain/swap/x/swap/keeper"
)

// StartCmd runs the pool with its API, health and metrics servers until
// interrupted.
func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the swap pool daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return Run(cmd.Context(), logger, homeDir(cmd), cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
		},
	}

	addNodeFlags(cmd)
	return cmd
}

func addNodeFlags(cmd *cobra.Command) {
	def := app.DefaultConfig()
	f := cmd.Flags()
	f.String(app.FlagLogLevel, def.Log.Level, "log level (trace|debug|info|warn|error)")
	f.String(app.FlagLogFormat, def.Log.Format, "log format (json|plain)")
	f.String(app.FlagDBBackend, def.DB.Backend, "state backend (goleveldb|memdb)")
	f.String(app.FlagDBDir, def.DB.Dir, "state directory, relative to --home")
	f.String(app.FlagAPIAddress, def.API.Address, "API listen address")
	f.StringSlice(app.FlagAPICORSOrigins, def.API.CORSOrigins, "allowed CORS origins")
	f.Float64(app.FlagAPIRateLimitRPS, def.API.RateLimitRPS, "per-client request rate")
	f.Int(app.FlagAPIRateLimitBurst, def.API.RateLimitBurst, "per-client request burst")
	f.Int(app.FlagMetricsPort, def.Telemetry.MetricsPort, "Prometheus metrics port")
	f.Int(app.FlagHealthPort, def.Telemetry.HealthPort, "health check port")
	f.Bool(app.FlagTracingEnabled, def.Telemetry.TracingEnabled, "export OpenTelemetry traces")
	f.String(app.FlagOTLPEndpoint, def.Telemetry.OTLPEndpoint, "OTLP/HTTP collector endpoint")
}

// Run opens the state under home, imports genesis on first start and serves
// until ctx is cancelled.
func Run(ctx context.Context, logger log.Logger, home string, cfg app.Config, reg prometheus.Registerer, gatherer prometheus.Gatherer) error {
	db, err := app.OpenDB(cfg.DB)
	if err != nil {
		return err
	}
	swapApp, err := app.NewSwapApp(logger, db, cfg, reg)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() {
		if err := swapApp.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	imported, err := swapApp.HasGenesis()
	if err != nil {
		return fmt.Errorf("failed to read genesis marker: %w", err)
	}
	if !imported {
		gs, err := app.ReadGenesisFile(GenesisPath(home))
		if err != nil {
			return fmt.Errorf("%w (run `%s init` first)", err, app.AppName)
		}
		if err := swapApp.InitGenesis(ctx, gs); err != nil {
			return fmt.Errorf("failed to import genesis: %w", err)
		}
	}

	tracing, err := telemetry.NewProvider(cfg.TracingConfig())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	checkerCfg := health.DefaultConfig()
	checkerCfg.Version = Version
	checker, err := health.NewChecker(logger, checkerCfg, db, swapApp.SwapKeeper, tracing)
	if err != nil {
		return err
	}
	swapkeeper.RegisterInvariants(checker, swapApp.SwapKeeper)

	apiServer, err := api.NewServer(logger, apiConfig(cfg.API), swapApp.SwapKeeper, swapApp.TokenKeepers[0], swapApp.TokenKeepers[1])
	if err != nil {
		return err
	}

	servers := []func(context.Context) error{
		apiServer.Start,
		serveHTTP(logger, "metrics", cfg.Telemetry.MetricsPort, metricsHandler(gatherer)),
		serveHTTP(logger, "health", cfg.Telemetry.HealthPort, checker.Handler()),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for _, serve := range servers {
		wg.Add(1)
		go func(serve func(context.Context) error) {
			defer wg.Done()
			if err := serve(ctx); err != nil {
				once.Do(func() { firstErr = err })
				cancel()
			}
		}(serve)
	}

	logger.Info("swapd started", "version", Version, "home", home)
	wg.Wait()
	logger.Info("swapd stopped")
	return firstErr
}

func apiConfig(cfg app.APIConfig) api.Config {
	out := api.DefaultConfig()
	out.Address = cfg.Address
	out.CORSOrigins = cfg.CORSOrigins
	out.RateLimitRPS = cfg.RateLimitRPS
	out.RateLimitBurst = cfg.RateLimitBurst
	out.ReadTimeout = cfg.ReadTimeout
	out.WriteTimeout = cfg.WriteTimeout
	out.ShutdownTimeout = cfg.ShutdownTimeout
	return out
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// serveHTTP returns a runner serving handler on port until ctx is done.
func serveHTTP(logger log.Logger, name string, port int, handler http.Handler) func(context.Context) error {
	return func(ctx context.Context) error {
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting server", "server", name, "port", port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("%s server: %w", name, err)
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
