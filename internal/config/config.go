// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid marks a configuration value outside its allowed range.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Culling  CullingConfig  `yaml:"culling"`
	Scene    SceneConfig    `yaml:"scene"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	// Screenshot is the capture file format: png, bmp or tiff.
	Screenshot string `yaml:"screenshot"`
}

// CameraConfig holds projection and navigation settings.
type CameraConfig struct {
	Mode  string  `yaml:"mode"` // first_person, player or debug
	FOV   float32 `yaml:"fov"`  // vertical, degrees
	Near  float32 `yaml:"near"`
	Far   float32 `yaml:"far"`
	Speed float32 `yaml:"speed"` // world units per second
}

// CullingConfig holds visibility settings.
type CullingConfig struct {
	Enabled       bool `yaml:"enabled"`
	PruneSubtrees bool `yaml:"prune_subtrees"`
	Workers       int  `yaml:"workers"` // > 1 builds subtrees in parallel
	ShowBounds    bool `yaml:"show_bounds"`
}

// SceneConfig holds the scene file settings.
type SceneConfig struct {
	Path      string        `yaml:"path"`
	HotReload bool          `yaml:"hot_reload"`
	Debounce  time.Duration `yaml:"debounce"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			VSync:      true,
			Screenshot: "png",
		},
		Camera: CameraConfig{
			Mode:  "first_person",
			FOV:   60,
			Near:  0.1,
			Far:   1000,
			Speed: 10,
		},
		Culling: CullingConfig{
			Enabled: true,
			Workers: 1,
		},
		Scene: SceneConfig{
			Path:      "scene.yaml",
			HotReload: true,
			Debounce:  200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values the viewer cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width <= 0 || c.Graphics.Height <= 0:
		return fmt.Errorf("graphics size %dx%d: %w", c.Graphics.Width, c.Graphics.Height, ErrInvalid)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("camera fov %g: %w", c.Camera.FOV, ErrInvalid)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera clip range [%g, %g]: %w", c.Camera.Near, c.Camera.Far, ErrInvalid)
	case c.Culling.Workers < 0:
		return fmt.Errorf("culling workers %d: %w", c.Culling.Workers, ErrInvalid)
	case c.Graphics.Screenshot != "png" && c.Graphics.Screenshot != "bmp" && c.Graphics.Screenshot != "tiff":
		return fmt.Errorf("screenshot format %q: %w", c.Graphics.Screenshot, ErrInvalid)
	case c.Scene.Path == "":
		return fmt.Errorf("scene path is empty: %w", ErrInvalid)
	}
	return nil
}
