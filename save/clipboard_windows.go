//go:build windows

package save

import (
	"fmt"
	"unsafe"

	"github.com/lxn/win"

	"hdrcap/frame"
)

// CopyToClipboard hands f's CF_DIB block to the system clipboard, using
// GlobalAlloc'd movable memory the way the teacher's GDI capture path
// allocates its bitmap buffer (`ghp3000-screenshot/screenshot_windows.go`
// GlobalAlloc/GlobalLock pattern), since the clipboard API takes ownership
// of a moveable global handle rather than a Go-managed slice (§6 "System
// takes ownership on successful hand-off").
func CopyToClipboard(f frame.Frame) error {
	block, err := BuildDIB(f)
	if err != nil {
		return err
	}

	if !win.OpenClipboard(0) {
		return fmt.Errorf("save: OpenClipboard failed")
	}
	defer win.CloseClipboard()

	if !win.EmptyClipboard() {
		return fmt.Errorf("save: EmptyClipboard failed")
	}

	hMem := win.GlobalAlloc(win.GMEM_MOVEABLE, uintptr(len(block)))
	if hMem == 0 {
		return fmt.Errorf("save: GlobalAlloc failed")
	}
	ptr := win.GlobalLock(hMem)
	if ptr == nil {
		win.GlobalFree(hMem)
		return fmt.Errorf("save: GlobalLock failed")
	}
	dst := unsafe.Slice((*byte)(ptr), len(block))
	copy(dst, block)
	win.GlobalUnlock(hMem)

	if win.SetClipboardData(win.CF_DIB, win.HANDLE(hMem)) == 0 {
		win.GlobalFree(hMem)
		return fmt.Errorf("save: SetClipboardData failed")
	}
	// Ownership of hMem has transferred to the system; it must not be freed.
	return nil
}
