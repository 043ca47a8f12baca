package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pifpchain/config"
	"pifpchain/core/events"
	"pifpchain/core/genesis"
	"pifpchain/core/state"
	"pifpchain/native/escrow"
	"pifpchain/native/roles"
	"pifpchain/observability/logging"
	"pifpchain/storage"
)

const envVar = "PIFP_ENV"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis JSON file (overrides config GenesisFile)")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envVar))
	logger := logging.Setup("pifpd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	manager := state.NewManager(db)
	emitter := events.SlogEmitter{Logger: logger}

	registry := roles.NewRegistry(manager)
	registry.SetEmitter(emitter)

	if err := seedGenesis(registry, cfg, *genesisFlag, logger); err != nil {
		logger.Error("Failed to apply genesis", slog.Any("error", err))
		os.Exit(1)
	}

	engine := escrow.NewEngine(manager)
	engine.SetGate(roles.NewPolicy(registry))
	engine.SetEmitter(emitter)
	logger.Info("escrow engine initialized; mutating entry points stay disabled until a host call surface wires the authorizer, transferrer and vault")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddress, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	logger.Info("node started",
		slog.String("network", cfg.NetworkName),
		slog.String("dataDir", cfg.DataDir),
		slog.String("metrics", cfg.MetricsAddress),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Metrics server shutdown", slog.Any("error", err))
	}
	logger.Info("node stopped")
}

// seedGenesis applies the genesis document on first boot. A registry that
// already has a super admin is left untouched.
func seedGenesis(registry *roles.Registry, cfg *config.Config, override string, logger *slog.Logger) error {
	_, initialized, err := registry.SuperAdmin()
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}

	path := cfg.GenesisFile
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		path = trimmed
	}
	spec, err := genesis.LoadGenesisSpec(path)
	if err != nil {
		return err
	}
	if err := genesis.Apply(spec, registry); err != nil {
		return err
	}
	logger.Info("genesis applied",
		slog.String("path", path),
		slog.String("superAdmin", spec.SuperAdmin),
	)
	return nil
}
