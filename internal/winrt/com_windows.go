// Package winrt holds the minimal WinRT COM interop the Window-Capture
// Adapter needs (§4.5): activating Windows.Graphics.Capture.
// GraphicsCaptureItem from a window handle via the OS interop factory,
// and driving a Direct3D11CaptureFramePool. None of the retrieval corpus
// covers WinRT activation directly (the closest is
// LanternOps-breeze's notify_windows.go, which shells out to
// PowerShell rather than activating WinRT types in-process), so this
// package follows the standard RoInitialize/RoGetActivationFactory/HSTRING
// activation sequence any in-process WinRT interop uses, with its own
// small vtable-call helper mirroring hdrcap/internal/d3dcap's.
package winrt

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modCombase                 = windows.NewLazySystemDLL("combase.dll")
	procRoInitialize           = modCombase.NewProc("RoInitialize")
	procRoUninitialize         = modCombase.NewProc("RoUninitialize")
	procRoGetActivationFactory = modCombase.NewProc("RoGetActivationFactory")
	procWindowsCreateString    = modCombase.NewProc("WindowsCreateString")
	procWindowsDeleteString    = modCombase.NewProc("WindowsDeleteString")
)

const roInitMultiThreaded = 1

// Init calls RoInitialize once for the calling thread. The core is
// single-threaded cooperative (§5), so this is called once at host
// startup alongside COM apartment init (out of scope, §1) and Uninit at
// shutdown.
func Init() error {
	hr, _, _ := procRoInitialize.Call(uintptr(roInitMultiThreaded))
	if failed(hr) && uint32(hr) != 0x80010106 { // RPC_E_CHANGED_MODE: already initialized differently, tolerated
		return fmt.Errorf("winrt: RoInitialize failed: 0x%08X", uint32(hr))
	}
	return nil
}

// Uninit balances Init.
func Uninit() {
	procRoUninitialize.Call()
}

func failed(hr uintptr) bool { return int32(hr) < 0 }

type comObject unsafe.Pointer

func vtblCall(obj comObject, index int, args ...uintptr) uintptr {
	vtbl := *(*uintptr)(obj)
	fn := *(*uintptr)(unsafe.Pointer(vtbl + uintptr(index)*unsafe.Sizeof(uintptr(0))))
	all := append([]uintptr{uintptr(obj)}, args...)
	r, _, _ := syscall.SyscallN(fn, all...)
	return r
}

func comRelease(obj comObject) {
	if obj == nil {
		return
	}
	vtblCall(obj, 2)
}

type guid struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// hstring creates a WinRT HSTRING from a Go string. The returned handle
// must be released with deleteHString.
func hstring(s string) (uintptr, error) {
	u16, err := windows.UTF16PtrFromString(s)
	if err != nil {
		return 0, err
	}
	var h uintptr
	hr, _, _ := procWindowsCreateString.Call(uintptr(unsafe.Pointer(u16)), uintptr(len(s)), uintptr(unsafe.Pointer(&h)))
	if failed(hr) {
		return 0, fmt.Errorf("winrt: WindowsCreateString failed: 0x%08X", uint32(hr))
	}
	return h, nil
}

func deleteHString(h uintptr) {
	if h == 0 {
		return
	}
	procWindowsDeleteString.Call(h)
}

// activateFactory resolves the activation factory for a runtime class,
// QueryInterface'd down to iid.
func activateFactory(className string, iid *guid) (comObject, error) {
	cls, err := hstring(className)
	if err != nil {
		return nil, err
	}
	defer deleteHString(cls)

	var factory unsafe.Pointer
	hr, _, _ := procRoGetActivationFactory.Call(cls, uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&factory)))
	if failed(hr) {
		return nil, fmt.Errorf("winrt: RoGetActivationFactory(%s) failed: 0x%08X", className, uint32(hr))
	}
	return comObject(factory), nil
}
