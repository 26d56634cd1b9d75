package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"corewindow/internal/gpu"
)

// Config holds the host application's configuration. The rendering core
// never reads it; the app passes plain values down.
type Config struct {
	Window    Window    `json:"window"`
	Rendering Rendering `json:"rendering"`
	Logging   Logging   `json:"logging"`
}

// Window contains the initial window parameters.
type Window struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`
}

// Rendering contains device and presentation parameters.
type Rendering struct {
	// ClearColor is the RGBA color every frame starts from.
	ClearColor [4]float32 `json:"clear_color"`

	// FeatureLevels in preference order, highest first ("11.1", "11.0").
	FeatureLevels []string `json:"feature_levels"`

	// Debug overrides the build default for the driver debug layer.
	Debug *bool `json:"debug,omitempty"`

	// Backend selects the WebGPU backend: "", "vulkan", "metal", "dx12", "gl".
	Backend string `json:"backend"`
}

// Logging controls the process logger.
type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "CoreWindow",
		},
		Rendering: Rendering{
			ClearColor:    [4]float32{0.071, 0.04, 0.561, 1.0},
			FeatureLevels: []string{"11.1", "11.0"},
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Get returns the global configuration instance, read from config.json in
// the working directory if present.
func Get() *Config {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if instance == nil {
			instance = DefaultConfig()
		}
		if data, err := os.ReadFile("config.json"); err == nil {
			json.Unmarshal(data, instance)
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Load loads configuration from a file over the current values. After a
// successful Load, Get no longer reads config.json from the working
// directory.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	once.Do(func() {})

	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		instance = DefaultConfig()
	}

	if err := json.Unmarshal(data, instance); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return instance.Validate()
}

// Save saves configuration to a file
func Save(path string) error {
	mu.RLock()
	defer mu.RUnlock()

	if instance == nil {
		instance = DefaultConfig()
	}

	data, err := json.MarshalIndent(instance, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail late, at device or
// window creation.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if _, err := c.Levels(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// Levels parses the configured feature levels.
func (c *Config) Levels() ([]gpu.FeatureLevel, error) {
	if len(c.Rendering.FeatureLevels) == 0 {
		return gpu.DefaultFeatureLevels, nil
	}
	levels := make([]gpu.FeatureLevel, 0, len(c.Rendering.FeatureLevels))
	for _, s := range c.Rendering.FeatureLevels {
		l, err := gpu.ParseFeatureLevel(s)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, nil
}

// DebugLayer reports whether the debug layer should be on, given the
// build default.
func (c *Config) DebugLayer(buildDefault bool) bool {
	if c.Rendering.Debug != nil {
		return *c.Rendering.Debug
	}
	return buildDefault
}

// Clear returns the clear color.
func (c *Config) Clear() gpu.Color {
	cc := c.Rendering.ClearColor
	return gpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}
}

// LogLevel parses the logging level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging level: %w", err)
	}
	return l, nil
}
