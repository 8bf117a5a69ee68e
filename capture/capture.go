//go:build windows

// Package capture exposes the host-facing operations (§6): full-desktop,
// region and window capture, each taking a composite already acquired
// through Host.AcquireComposite, letting the user confirm it through the
// Interactive Preview, tone-mapping the result, and handing it to the
// file/clipboard saver. It is the wiring layer every other package in this
// module feeds into.
package capture

import (
	"errors"
	"fmt"
	"os"

	"hdrcap/config"
	"hdrcap/duplicator"
	"hdrcap/frame"
	"hdrcap/internal/d3dcap"
	"hdrcap/log"
	"hdrcap/preview"
	"hdrcap/save"
	"hdrcap/tonemap"
)

func writeFile(f frame.Frame, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return save.EncodePNG(out, f)
}

// Host owns the shared GPU device and duplicator for the process's
// lifetime (§5 "Shared resources"). One Host is created at startup and
// reused across capture invocations.
type Host struct {
	device     *d3dcap.Device
	duplicator *duplicator.Duplicator
	cfg        config.Config
	logger     log.Logger
}

// NewHost creates the shared D3D11 device and an initialized duplicator.
// Initialization failure here is fatal per §7 ("Initialization failure:
// fatal to the duplicator; the host surfaces a modal error and exits").
func NewHost(cfg config.Config, logger log.Logger) (*Host, error) {
	if logger == nil {
		logger = log.Default
	}
	device, err := d3dcap.NewDevice()
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	dup := duplicator.New(device, cfg.DupAcquireTimeout, cfg.GDIFallbackDrawCursor, logger)
	if err := dup.Init(); err != nil {
		device.Release()
		return nil, fmt.Errorf("capture: %w", err)
	}
	return &Host{device: device, duplicator: dup, cfg: cfg, logger: logger}, nil
}

// Close releases the duplicator and the shared device, in that order.
func (h *Host) Close() {
	h.duplicator.Release()
	h.device.Release()
}

// Device returns the shared GPU device backing this host's duplicator, for
// callers that drive AcquireComposite/CaptureFullDesktop/CaptureRegion/
// CaptureWindow's "GPU device handle" parameter (§6).
func (h *Host) Device() *d3dcap.Device { return h.device }

// AcquireComposite is the trigger layer's entry point: it captures once,
// and on failure re-initializes the duplicator and retries exactly once
// (§7 "Acquisition failure ... the duplicator is rebuilt once and capture
// is retried ... A second failure is reported to the user and the capture
// cycle is abandoned"). §4.3 is explicit that "the duplicator itself does
// not retry; the trigger layer retries once" — this method is that trigger
// layer, kept separate from the three §6 host operations below, which take
// an already-captured composite rather than performing acquisition
// themselves.
func (h *Host) AcquireComposite() (frame.Frame, error) {
	composite, err := h.duplicator.Capture()
	if err == nil {
		return composite, nil
	}
	h.logger.Warnf("capture: initial acquire failed, re-initializing: %v", err)

	if reErr := h.duplicator.Init(); reErr != nil {
		return frame.Frame{}, fmt.Errorf("re-init after acquisition failure: %w", reErr)
	}
	composite, err = h.duplicator.Capture()
	if err != nil {
		return frame.Frame{}, fmt.Errorf("acquisition failed after re-init: %w", err)
	}
	return composite, nil
}

func toPreviewRect(r d3dcap.Rect) preview.Rect {
	return preview.Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
}

func toPreviewRects(rs []d3dcap.Rect) []preview.Rect {
	out := make([]preview.Rect, len(rs))
	for i, r := range rs {
		out[i] = toPreviewRect(r)
	}
	return out
}

func paperWhiteNits(cfg config.Config) float32 {
	if cfg.PaperWhiteOverrideNits > 0 {
		return cfg.PaperWhiteOverrideNits
	}
	return tonemap.QueryPrimaryPaperWhiteNits()
}

// runCycle drives one preview -> tone-map -> save cycle for mode over an
// already-captured composite, returning (false, nil) on user cancellation
// per §7's "no error surfaced" contract.
func (h *Host) runCycle(mode preview.Mode, composite frame.Frame, device *d3dcap.Device, copyToClipboard bool, savePath string) (bool, error) {
	result, err := preview.Run(mode, composite, toPreviewRect(h.duplicator.Bounds()), toPreviewRects(h.duplicator.OutputRects()),
		h.duplicator.Reader(), device, h.cfg.WindowCaptureTimeout, paperWhiteNits(h.cfg), h.logger)
	if err != nil {
		if errors.Is(err, preview.ErrCancelled) {
			return false, nil
		}
		return false, fmt.Errorf("capture: %w", err)
	}

	if err := result.Frame.Materialize(h.duplicator.Reader()); err != nil {
		return false, fmt.Errorf("capture: %w", err)
	}
	sdr, err := tonemap.ToneMap(result.Frame, paperWhiteNits(h.cfg))
	if err != nil {
		return false, fmt.Errorf("capture: %w", err)
	}

	if savePath != "" {
		if err := writeFile(sdr, savePath); err != nil {
			return false, fmt.Errorf("capture: %w", err)
		}
	}
	if copyToClipboard {
		if err := save.CopyToClipboard(sdr); err != nil {
			return false, fmt.Errorf("capture: %w", err)
		}
	}
	if err := save.WriteThumbnail(sdr, h.cfg.ThumbnailPath(), h.cfg.ThumbnailMaxDim); err != nil {
		h.logger.Warnf("capture: thumbnail write failed: %v", err)
	}

	return true, nil
}

// CaptureFullDesktop implements §6's full-desktop host operation: given a
// pre-captured composite and the GPU device it was captured with, drives
// the full-desktop preview through to save/clipboard.
func (h *Host) CaptureFullDesktop(composite frame.Frame, device *d3dcap.Device, copyToClipboard bool, savePath string) (bool, error) {
	return h.runCycle(preview.ModeFullDesktop, composite, device, copyToClipboard, savePath)
}

// CaptureRegion implements §6's region-capture host operation: given a
// pre-captured composite and the GPU device it was captured with, drives
// the region-selection preview through to save/clipboard.
func (h *Host) CaptureRegion(composite frame.Frame, device *d3dcap.Device, copyToClipboard bool, savePath string) (bool, error) {
	return h.runCycle(preview.ModeRegion, composite, device, copyToClipboard, savePath)
}

// CaptureWindow implements §6's window-capture host operation: given a
// pre-captured composite and the GPU device it was captured with, drives
// the window-picker preview through to save/clipboard.
func (h *Host) CaptureWindow(composite frame.Frame, device *d3dcap.Device, copyToClipboard bool, savePath string) (bool, error) {
	return h.runCycle(preview.ModeWindowPicker, composite, device, copyToClipboard, savePath)
}
