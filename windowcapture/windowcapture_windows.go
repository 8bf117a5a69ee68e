//go:build windows

// Package windowcapture implements the Window-Capture Adapter (§4.5): a
// per-window alternative to the Desktop Duplicator built on
// Windows.Graphics.Capture, for callers that want a single window's
// pixels rather than the whole virtual desktop.
package windowcapture

import (
	"errors"
	"fmt"
	"time"

	"github.com/lxn/win"

	"hdrcap/frame"
	"hdrcap/internal/d3dcap"
	"hdrcap/internal/winrt"
)

// ErrInvalidWindowSize is returned when the target window reports a
// non-positive width or height (§4.5 step 2).
var ErrInvalidWindowSize = errors.New("windowcapture: window has non-positive size")

// Capture drives one full cycle of §4.5's adapter: derive a capture item
// from hwnd, size a single-buffer frame pool to the window's native
// dimensions (preferring RGBA16F), start the session and block up to
// timeout for the first frame, then extract its GPU texture into a
// frame.Frame. Every resource opened along the way is closed before
// returning, on both the success and failure paths.
func Capture(device *d3dcap.Device, hwnd win.HWND, timeout time.Duration) (frame.Frame, error) {
	if err := winrt.Init(); err != nil {
		return frame.Frame{}, fmt.Errorf("windowcapture: %w", err)
	}
	defer winrt.Uninit()

	item, err := winrt.FromWindow(hwnd)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("windowcapture: %w", err)
	}
	defer item.Release()

	width, height, err := item.Size()
	if err != nil {
		return frame.Frame{}, fmt.Errorf("windowcapture: %w", err)
	}
	if width <= 0 || height <= 0 {
		return frame.Frame{}, ErrInvalidWindowSize
	}

	pool, err := winrt.NewFramePool(device, item, width, height)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("windowcapture: %w", err)
	}
	defer pool.Close()

	if err := pool.Start(timeout); err != nil {
		return frame.Frame{}, fmt.Errorf("windowcapture: %w", err)
	}

	surface, err := pool.Surface()
	if err != nil {
		return frame.Frame{}, fmt.Errorf("windowcapture: %w", err)
	}

	tex := d3dcap.WrapExternalTexture(surface)
	return frame.New(tex)
}
