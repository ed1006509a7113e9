// Package app wires the xiview client together: the protocol client, the
// document view loop, terminal input and live configuration.
package app

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/xiview/internal/config"
	"github.com/dshills/xiview/internal/input/keymap"
	"github.com/dshills/xiview/internal/logging"
	"github.com/dshills/xiview/internal/protocol"
	"github.com/dshills/xiview/internal/renderer/backend"
	"github.com/dshills/xiview/internal/renderer/linecache"
	"github.com/dshills/xiview/internal/renderer/statusline"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file to watch for changes. Empty
	// disables live reload.
	ConfigPath string

	// File is the file to open. It overrides engine.file.
	File string
}

// Application runs one document view against the engine.
type Application struct {
	cfg     *config.Config
	opts    Options
	backend backend.Backend
	client  *protocol.Client
	view    *View
	logger  *logging.Logger
	metrics *Metrics

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
}

// New creates an application talking to the broker over conn and drawing
// to b.
func New(cfg *config.Config, b backend.Backend, conn protocol.Conn, logger *logging.Logger, opts Options) (*Application, error) {
	if logger == nil {
		logger = logging.Null()
	}
	if opts.File == "" {
		opts.File = cfg.Engine.File
	}

	app := &Application{
		cfg:     cfg,
		opts:    opts,
		backend: b,
		logger:  logger,
		metrics: NewMetrics(),
	}
	app.client = protocol.NewClient(conn,
		protocol.WithLogger(logger.WithComponent("protocol")),
		protocol.WithRequestTimeout(cfg.Engine.RequestTimeout.Std()))

	table, err := loadKeymap(context.Background(), cfg.Input.KeymapScript)
	if err != nil {
		return nil, &InitError{Component: "keymap", Err: err}
	}

	app.view, err = NewView(app.client, b, cfg,
		WithViewLogger(logger.WithComponent("view")),
		WithViewMetrics(app.metrics),
		WithKeymap(table))
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Run starts the session and blocks until Shutdown is called or ctx is
// cancelled. Transport failures are shown on the status line and do not
// end the run.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()

	app.view.Resize(app.backend.Size())
	app.view.SetFilename(app.opts.File)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.client.Run(gctx); err != nil {
			app.logger.Warn("protocol client stopped: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		return app.view.Run(gctx, app.client.Events())
	})
	g.Go(func() error {
		return app.pollInput(gctx)
	})
	g.Go(func() error {
		if err := app.startSession(gctx); err != nil {
			app.logger.Error("%v", err)
			app.view.Post(func() { app.view.ShowMessage(err.Error(), statusline.MessageError) })
		}
		return nil
	})
	if app.opts.ConfigPath != "" {
		g.Go(func() error {
			if err := config.Watch(gctx, app.opts.ConfigPath, app.reload, app.logger.WithComponent("config")); err != nil {
				app.logger.Warn("config watch: %v", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		<-app.view.Done()
		app.backend.Shutdown()
		if err := app.client.Close(); err != nil {
			app.logger.Debug("close connection: %v", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown stops a running application.
func (app *Application) Shutdown() {
	app.mu.Lock()
	cancel := app.cancel
	app.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// IsRunning returns true while Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// View returns the document view.
func (app *Application) View() *View {
	return app.view
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// startSession writes the engine preferences, announces the client and
// opens the file.
func (app *Application) startSession(ctx context.Context) error {
	dir := app.cfg.Engine.ConfigDir
	if dir != "" {
		if _, err := config.WritePreferences(dir, app.cfg.Preferences); err != nil {
			app.logger.Warn("write preferences: %v", err)
		}
	}
	if err := app.client.ClientStarted(dir); err != nil {
		return &OperationError{Op: protocol.OperationClientStarted, Err: err}
	}

	id, err := app.client.NewView(ctx, app.opts.File)
	if err != nil {
		return &OperationError{Op: protocol.OperationNewView, Target: app.opts.File, Err: err}
	}
	app.logger.Info("opened %q as view %s", app.opts.File, id)
	return nil
}

// save writes the document. It blocks until the engine replies.
func (app *Application) save(ctx context.Context) {
	err := app.client.Save(ctx, app.opts.File)
	if err != nil {
		err = &OperationError{Op: protocol.OperationSave, Target: app.opts.File, Err: err}
		app.logger.Warn("%v", err)
		app.view.Post(func() { app.view.ShowMessage(err.Error(), statusline.MessageError) })
		return
	}
	name := filepath.Base(app.opts.File)
	app.view.Post(func() { app.view.ShowMessage("saved "+name, statusline.MessageInfo) })
}

// reload applies a changed configuration. The log level applies at once;
// the caret policy and key bindings are handed to the view loop.
func (app *Application) reload(cfg *config.Config) {
	app.logger.SetLevel(logging.ParseLevel(cfg.Log.Level))

	policy, err := linecache.ParseCaretPolicy(cfg.View.CaretPolicy)
	if err != nil {
		app.logger.Warn("config reload: %v", err)
		return
	}
	table, err := loadKeymap(context.Background(), cfg.Input.KeymapScript)
	if err != nil {
		app.logger.Warn("config reload: %v", err)
		table = nil
	}

	app.view.Post(func() {
		app.view.SetCaretPolicy(policy)
		if table != nil {
			app.view.SetKeymap(table)
		}
	})
	app.logger.Info("configuration reloaded")
}

// loadKeymap returns the default table extended by the bindings of the
// Lua script at path. An empty path yields the default table.
func loadKeymap(ctx context.Context, path string) (*keymap.Table, error) {
	table := keymap.DefaultTable()
	if path == "" {
		return table, nil
	}
	actions, err := keymap.LoadScript(ctx, path)
	if err != nil {
		return nil, err
	}
	return table.Extend(actions...)
}
