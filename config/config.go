// Package config loads the small set of host-facing knobs the capture
// core exposes beyond the tray host's own "copy to clipboard" preference:
// a paper-white override for headless/CI runs where the display-config
// query is unavailable, the per-output acquire timeout, and the
// thumbnail's temp directory and max dimension. It wraps
// github.com/spf13/viper the same way LanternOps-breeze's agent config
// package does, rather than hand-rolling flag or env parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the capture core's tunables. Zero values are invalid for
// DupAcquireTimeout/WindowCaptureTimeout/ThumbnailMaxDim/ThumbnailBasename;
// Load and Default fill them in.
type Config struct {
	// PaperWhiteOverrideNits, when > 0, replaces the per-monitor display
	// config query in tonemap.QueryPrimaryPaperWhiteNits. Zero means "use
	// the real query", matching §4.4.1's fallback story.
	PaperWhiteOverrideNits float32 `mapstructure:"paper_white_override_nits"`

	// DupAcquireTimeout bounds a single per-output duplication
	// AcquireNextFrame call (§4.3); WindowCaptureTimeout bounds the
	// window-capture adapter's first-frame wait (§4.5).
	DupAcquireTimeout    time.Duration `mapstructure:"dup_acquire_timeout"`
	WindowCaptureTimeout time.Duration `mapstructure:"window_capture_timeout"`

	// ThumbnailDir overrides the process temp path the thumbnail PNG is
	// written to (§6, "Thumbnail PNG"). Empty means os.TempDir().
	ThumbnailDir      string `mapstructure:"thumbnail_dir"`
	ThumbnailMaxDim   int    `mapstructure:"thumbnail_max_dim"`
	ThumbnailBasename string `mapstructure:"thumbnail_basename"`

	// GDIFallbackDrawCursor controls whether the Desktop Duplicator's GDI
	// BitBlt fallback (only ever reached when every DXGI output fails to
	// open) composites the OS cursor into its capture. Off by default,
	// matching the DXGI path's own cursor exclusion.
	GDIFallbackDrawCursor bool `mapstructure:"gdi_fallback_draw_cursor"`
}

// Default returns the configuration matching the spec's built-in
// constants: no paper-white override, 1s/2s acquire timeouts, 360px
// thumbnail, temp-dir default.
func Default() Config {
	return Config{
		DupAcquireTimeout:    1 * time.Second,
		WindowCaptureTimeout: 2 * time.Second,
		ThumbnailMaxDim:      360,
		ThumbnailBasename:    "hdrcap-thumb.png",
	}
}

// Load reads an optional TOML config file (path may be empty, in which
// case only defaults and HDRCAP_-prefixed environment variables apply),
// following the viper wiring pattern in LanternOps-breeze's agent config
// package. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("HDRCAP")
	v.AutomaticEnv()

	v.SetDefault("paper_white_override_nits", cfg.PaperWhiteOverrideNits)
	v.SetDefault("dup_acquire_timeout", cfg.DupAcquireTimeout)
	v.SetDefault("window_capture_timeout", cfg.WindowCaptureTimeout)
	v.SetDefault("thumbnail_dir", cfg.ThumbnailDir)
	v.SetDefault("thumbnail_max_dim", cfg.ThumbnailMaxDim)
	v.SetDefault("thumbnail_basename", cfg.ThumbnailBasename)
	v.SetDefault("gdi_fallback_draw_cursor", cfg.GDIFallbackDrawCursor)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.DupAcquireTimeout <= 0 {
		cfg.DupAcquireTimeout = 1 * time.Second
	}
	if cfg.WindowCaptureTimeout <= 0 {
		cfg.WindowCaptureTimeout = 2 * time.Second
	}
	if cfg.ThumbnailMaxDim <= 0 {
		cfg.ThumbnailMaxDim = 360
	}
	if cfg.ThumbnailBasename == "" {
		cfg.ThumbnailBasename = "hdrcap-thumb.png"
	}
	return cfg, nil
}

// ThumbnailPath resolves the full path the thumbnail is written to,
// defaulting to os.TempDir() when ThumbnailDir is unset.
func (c Config) ThumbnailPath() string {
	dir := c.ThumbnailDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, c.ThumbnailBasename)
}
