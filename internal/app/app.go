package app

import (
	"context"
	"fmt"

	"corewindow/internal/bridge"
	"corewindow/internal/chain"
	"corewindow/internal/config"
	"corewindow/internal/gpu"
	"corewindow/internal/graphics"
	"corewindow/internal/loop"
	"corewindow/internal/wgpudrv"
	"corewindow/internal/window"
)

// App owns the window, the device, the presentation chain and the loop.
// Everything runs on the goroutine that called New.
type App struct {
	cfg *config.Config

	window *window.Window
	driver *wgpudrv.Driver
	device *graphics.Device
	chain  *chain.Chain
	bridge *bridge.Bridge
	loop   *loop.Loop

	events *bridge.Queue
	stop   context.CancelFunc
}

// New creates the window and the device, then creates the chain for the
// window and activates it. Any failure aborts startup.
func New(cfg *config.Config) (*App, error) {
	levels, err := cfg.Levels()
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:    cfg,
		chain:  chain.New(),
		events: &bridge.Queue{},
	}

	app.window, err = window.New(window.Options{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
	}, app.events)
	if err != nil {
		return nil, err
	}

	app.driver, err = wgpudrv.New(cfg.Rendering.Backend)
	if err != nil {
		app.Cleanup()
		return nil, err
	}

	app.device, err = graphics.Create(app.driver, levels, cfg.DebugLayer(graphics.DebugBuild))
	if err != nil {
		app.Cleanup()
		return nil, err
	}

	app.bridge = bridge.New(app.window, app.device, app.chain)
	app.events.Post(bridge.Event{Kind: bridge.SurfaceReady, Surface: app.window})
	app.events.Post(bridge.Event{Kind: bridge.Activated})
	if err := app.events.Drain(app.bridge); err != nil {
		app.Cleanup()
		return nil, fmt.Errorf("window setup: %w", err)
	}

	app.loop = loop.New(app, app.chain, app.device.Context())
	app.loop.ClearColor = cfg.Clear()
	app.loop.OnSecond = func(s loop.Stats) {
		app.window.SetTitle(fmt.Sprintf("%s | FPS: %d", cfg.Window.Title, s.FPS))
	}

	return app, nil
}

// Pump pumps window events and applies the resulting transitions. Events
// posted by GLFW callbacks are drained within the same call. A close
// request stops the loop before its next frame.
func (app *App) Pump() error {
	if err := app.bridge.Pump(); err != nil {
		return err
	}
	if app.stop != nil && app.window.ShouldClose() {
		app.stop()
	}
	return nil
}

// Run renders until the window is closed, ctx is done, or frames frames
// have been presented (0 means no limit).
func (app *App) Run(ctx context.Context, frames int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.stop = cancel
	defer func() { app.stop = nil }()

	err := app.loop.RunFrames(ctx, frames)
	stats := app.loop.Stats()
	gpu.Logger().Info("render loop stopped", "frames", stats.Frames)
	return err
}

// Cleanup releases the chain, then the device, then the driver and the
// window.
func (app *App) Cleanup() {
	if app.bridge != nil {
		app.bridge.OnTeardown()
	} else {
		app.chain.Release()
		if app.device != nil {
			app.device.Release()
		}
	}
	if app.driver != nil {
		app.driver.Release()
	}
	if app.window != nil {
		app.window.Destroy()
	}
}
