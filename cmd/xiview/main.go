// Package main is the entry point for the xiview terminal client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/dshills/xiview/internal/app"
	"github.com/dshills/xiview/internal/config"
	"github.com/dshills/xiview/internal/logging"
	"github.com/dshills/xiview/internal/renderer/backend"
	"github.com/dshills/xiview/internal/transport"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// dialTimeout bounds the initial connection to the broker.
const dialTimeout = 5 * time.Second

type flags struct {
	configPath string
	logLevel   string
	brokerURL  string
	file       string
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: xiview needs an interactive terminal")
		return 1
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.brokerURL != "" {
		cfg.Engine.BrokerURL = f.brokerURL
	}

	// Log lines on stderr would corrupt the screen; without a log file
	// they are dropped.
	logger, closer, err := app.OpenLog(cfg.Log, "xiview", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, err := transport.Dial(dialCtx, cfg.Engine.BrokerURL)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to reach broker: %v\n", err)
		return 1
	}

	screen, err := backend.NewTerminal(cfg.View.CellWidth, cfg.View.LineHeight)
	if err != nil {
		conn.Close()
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	application, err := app.New(cfg, screen, conn, logger, app.Options{
		ConfigPath: f.configPath,
		File:       f.file,
	})
	if err != nil {
		conn.Close()
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	logger.Info("xiview %s connecting to %s", version, cfg.Engine.BrokerURL)
	if err := application.Run(ctx); err != nil && !errors.Is(err, app.ErrQuit) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := application.View().Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() flags {
	var f flags
	var showVersion bool

	flag.StringVar(&f.configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&f.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.brokerURL, "broker", "", "Broker WebSocket URL")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "xiview - terminal client for a remote editing engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: xiview [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+S  save    Ctrl+F  find    Ctrl+Q  quit\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("xiview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if f.logLevel != "" && !logging.ValidLevel(f.logLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", f.logLevel)
		os.Exit(1)
	}

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: xiview opens one file at a time")
		os.Exit(1)
	}
	f.file = flag.Arg(0)
	return f
}
