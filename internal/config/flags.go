package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and bounds overlay")
	flagScene      = flag.String("scene", "", "Scene file to load")
	flagCamera     = flag.String("camera", "", "Camera mode: first_person, player or debug")
	flagNoCull     = flag.Bool("nocull", false, "Disable frustum culling")
	flagWorkers    = flag.Int("workers", 0, "Batch build workers")
	flagMetrics    = flag.String("metrics", "", "Metrics listen address")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Culling.ShowBounds = true
	}
	if *flagScene != "" {
		cfg.Scene.Path = *flagScene
	}
	if *flagCamera != "" {
		cfg.Camera.Mode = *flagCamera
	}
	if *flagNoCull {
		cfg.Culling.Enabled = false
	}
	if *flagWorkers > 0 {
		cfg.Culling.Workers = *flagWorkers
	}
	if *flagMetrics != "" {
		cfg.Metrics.Addr = *flagMetrics
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
