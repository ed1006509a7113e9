package app

import (
	"context"
	"errors"

	"github.com/dshills/xiview/internal/input/key"
	"github.com/dshills/xiview/internal/renderer/backend"
)

// Application-level bindings, checked before the view sees a key.
var (
	quitKey = key.NewRuneEvent('q', key.ModCtrl)
	saveKey = key.NewRuneEvent('s', key.ModCtrl)
)

// pollInput reads backend events and posts them to the view loop until the
// backend closes. PollEvent blocks; shutting the backend down unblocks it.
func (app *Application) pollInput(ctx context.Context) error {
	defer app.Shutdown()

	for {
		ev := app.backend.PollEvent()
		if ev.Type == backend.EventClosed || ctx.Err() != nil {
			return nil
		}
		if err := app.handleBackendEvent(ctx, ev); errors.Is(err, ErrQuit) {
			return nil
		}
	}
}

// handleBackendEvent routes one backend event. It returns ErrQuit if the
// application should exit.
func (app *Application) handleBackendEvent(ctx context.Context, ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		w, h := ev.Width, ev.Height
		app.view.Post(func() { app.view.Resize(w, h) })
	case backend.EventKey:
		return app.handleKeyEvent(ctx, ev.Key)
	case backend.EventMouse:
		m := ev.Mouse
		app.view.Post(func() { app.view.HandleMouse(m) })
	}
	return nil
}

func (app *Application) handleKeyEvent(ctx context.Context, k key.Event) error {
	switch {
	case k.Equals(quitKey):
		return ErrQuit
	case k.Equals(saveKey):
		go app.save(ctx)
		return nil
	}
	app.view.Post(func() { app.view.HandleKey(k) })
	return nil
}
