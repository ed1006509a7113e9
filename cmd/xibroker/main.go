// Package main is the entry point for the xibroker bridge between terminal
// clients and a line-delimited JSON-RPC editing engine.
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

	"golang.org/x/sync/errgroup"

	"github.com/dshills/xiview/internal/app"
	"github.com/dshills/xiview/internal/broker"
	"github.com/dshills/xiview/internal/config"
	"github.com/dshills/xiview/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const shutdownTimeout = 5 * time.Second

var errEngineExited = errors.New("engine exited")

type flags struct {
	configPath string
	logLevel   string
	listen     string
	corePath   string
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.listen != "" {
		cfg.Broker.Listen = f.listen
	}
	if f.corePath != "" {
		cfg.Broker.CorePath = f.corePath
	}

	logger, closer, err := app.OpenLog(cfg.Log, "xibroker", os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("%v", err)
		return 1
	}
	return 0
}

// serve runs the engine and the HTTP listener until either stops or ctx
// is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	core, err := broker.StartCore(ctx, cfg.Broker.CorePath, cfg.Broker.CoreArgs, logger.WithComponent("core"))
	if err != nil {
		return fmt.Errorf("start engine %q: %w", cfg.Broker.CorePath, err)
	}
	defer core.Close()

	b := broker.New(core,
		broker.WithLogger(logger.WithComponent("broker")),
		broker.WithCallTimeout(cfg.Broker.CallTimeout.Std()),
		broker.WithOriginPatterns(cfg.Broker.OriginPatterns...))

	srv := &http.Server{
		Addr:              cfg.Broker.Listen,
		Handler:           b.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := b.Run(gctx); err != nil {
			return err
		}
		if gctx.Err() != nil {
			return nil
		}
		return errEngineExited
	})
	g.Go(func() error {
		logger.Info("xibroker %s listening on %s", version, cfg.Broker.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", cfg.Broker.Listen, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func parseFlags() flags {
	var f flags
	var showVersion bool

	flag.StringVar(&f.configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&f.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.listen, "listen", "", "Address to listen on")
	flag.StringVar(&f.corePath, "core", "", "Path to the engine executable")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "xibroker - WebSocket bridge to an editing engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: xibroker [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("xibroker %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if f.logLevel != "" && !logging.ValidLevel(f.logLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", f.logLevel)
		os.Exit(1)
	}
	return f
}
