// Command agerun runs the AgeRun agent system: it loads a methodology
// and agency snapshot from disk, runs the scheduler to idle, then
// serves the read-only introspection API until interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/quenio/agerun/pkg/agent"
	"github.com/quenio/agerun/pkg/config"
	"github.com/quenio/agerun/pkg/delegate"
	filedelegate "github.com/quenio/agerun/pkg/delegate/file"
	logdelegate "github.com/quenio/agerun/pkg/delegate/log"
	networkdelegate "github.com/quenio/agerun/pkg/delegate/network"
	"github.com/quenio/agerun/pkg/eventlog"
	"github.com/quenio/agerun/pkg/httpapi"
	"github.com/quenio/agerun/pkg/logger"
	"github.com/quenio/agerun/pkg/metrics"
	"github.com/quenio/agerun/pkg/method"
	"github.com/quenio/agerun/pkg/persistence"
	"github.com/quenio/agerun/pkg/system"
)

const (
	fileDelegateID    = -1
	networkDelegateID = -2
	logDelegateID     = -3
)

// CLI defines the four flags SPEC_FULL.md section 13 names — this
// driver is wiring, not a CLI feature surface.
type CLI struct {
	Methodology string `help:"Path to the methodology YAML file." default:"methodology.yaml"`
	Agency      string `help:"Path to the agency YAML file." default:"agency.yaml"`
	Config      string `help:"Path to the runtime config YAML file." type:"path"`
	HTTPAddr    string `name:"http-addr" help:"Address to serve the introspection API on (empty disables it)."`
}

func main() {
	_ = config.LoadEnvFiles()

	cli := CLI{}
	kong.Parse(&cli,
		kong.Name("agerun"),
		kong.Description("AgeRun agent system"),
		kong.UsageOnError(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cli CLI) error {
	cfg := &config.Config{}
	if cli.Config != "" {
		loaded, loader, err := config.LoadConfigFile(ctx, cli.Config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		defer loader.Close()
		cfg = loaded
	} else {
		cfg.SetDefaults()
	}

	if cli.Methodology != "" {
		cfg.Persistence.MethodologyPath = cli.Methodology
	}
	if cli.Agency != "" {
		cfg.Persistence.AgencyPath = cli.Agency
	}
	if cli.HTTPAddr != "" {
		cfg.HTTP.Addr = cli.HTTPAddr
	}

	level, err := logger.ParseLevel(cfg.Logger.Level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	output := os.Stderr
	if cfg.Logger.File != "" {
		f, cleanup, err := logger.OpenLogFile(cfg.Logger.File)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer cleanup()
		output = f
	}
	logger.Init(level, output, cfg.Logger.Format)

	log := eventlog.New(logger.Component("eventlog"), eventlog.DefaultCapacity)
	defer log.Close()

	var m *metrics.Metrics
	if cfg.MetricsEnabled() {
		m = metrics.New()
	}

	methodology := method.NewMethodology()
	if _, err := os.Stat(cfg.Persistence.MethodologyPath); err == nil {
		if err := persistence.LoadMethodology(cfg.Persistence.MethodologyPath, methodology, log); err != nil {
			return fmt.Errorf("load methodology: %w", err)
		}
		slog.Info("loaded methodology", "path", cfg.Persistence.MethodologyPath)
	}

	agents := agent.NewRegistry()
	if _, err := os.Stat(cfg.Persistence.AgencyPath); err == nil {
		if err := persistence.LoadAgency(cfg.Persistence.AgencyPath, methodology, agents); err != nil {
			return fmt.Errorf("load agency: %w", err)
		}
		slog.Info("loaded agency", "path", cfg.Persistence.AgencyPath, "agents", agents.Count())
	}

	delegateRegistry := delegate.NewRegistry()
	if err := registerDelegates(delegateRegistry, log); err != nil {
		return fmt.Errorf("register delegates: %w", err)
	}
	delegates := delegate.NewFacade(delegateRegistry)

	sys := system.New(methodology, agents, delegates, log, m)

	var watcher *persistence.Watcher
	if cfg.Persistence.Watch {
		w, err := persistence.WatchMethodology(ctx, cfg.Persistence.MethodologyPath, methodology, log)
		if err != nil {
			slog.Warn("methodology watch failed to start", "error", err)
		} else {
			watcher = w
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	sys.RunUntilIdle()

	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		srv = &http.Server{Addr: cfg.HTTP.Addr, Handler: httpapi.Router(sys, m)}
		go func() {
			slog.Info("introspection API listening", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("introspection API error", "error", err)
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("introspection API shutdown error", "error", err)
		}
	}

	if err := sys.Shutdown(shutdownCtx); err != nil {
		slog.Error("agent shutdown error", "error", err)
	}

	if err := persistence.SaveAgency(cfg.Persistence.AgencyPath, agents); err != nil {
		slog.Error("save agency failed", "error", err)
	}

	return nil
}

// registerDelegates wires up the three built-in delegates at their
// conventional ids (section 8's "Register file delegate at id -1 with
// allowed_path = cwd" example, extended to the network and log
// delegates alongside it).
func registerDelegates(reg *delegate.Registry, log *eventlog.Log) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}

	fileHandler := filedelegate.New(filedelegate.Config{AllowedPath: cwd})
	if err := reg.Register(delegate.New(fileDelegateID, fileHandler)); err != nil {
		return err
	}

	networkHandler := networkdelegate.New(networkdelegate.Config{})
	if err := reg.Register(delegate.New(networkDelegateID, networkHandler)); err != nil {
		return err
	}

	logHandler := logdelegate.New(logdelegate.Config{MinLevel: "info"}, log)
	if err := reg.Register(delegate.New(logDelegateID, logHandler)); err != nil {
		return err
	}

	return nil
}
