package app

import (
	"io"
	"log/slog"

	"github.com/courseforge/adaptivity/internal/bus"
	"github.com/courseforge/adaptivity/internal/partreg"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *partreg.Registry
	events   *bus.Bus
	config   *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and part
// registry populated with the built-in part definitions.
func NewApp(outW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := partreg.New()
	partreg.RegisterBuiltins(reg)
	logger.Debug("Built-in part definitions registered.", "count", reg.Count())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		events:   bus.New(),
		config:   config,
	}
}

// Registry returns the application's part registry. This is primarily
// for testing.
func (a *App) Registry() *partreg.Registry {
	return a.registry
}

// Events returns the application's event bus.
func (a *App) Events() *bus.Bus {
	return a.events
}
