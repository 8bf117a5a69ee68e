package tonemap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// DISPLAYCONFIG_DEVICE_INFO_GET_* constants, matching wingdi.h.
const (
	displayconfigDeviceInfoGetSourceName     = 1
	displayconfigDeviceInfoGetSdrWhiteLevel  = 11
	qdcOnlyActivePaths                       = 0x00000002
	errorSuccess                             = 0
	errorInsufficientBuffer                  = 122
)

var (
	modUser32                           = windows.NewLazySystemDLL("user32.dll")
	procGetDisplayConfigBufferSizes     = modUser32.NewProc("GetDisplayConfigBufferSizes")
	procQueryDisplayConfig              = modUser32.NewProc("QueryDisplayConfig")
	procDisplayConfigGetDeviceInfo      = modUser32.NewProc("DisplayConfigGetDeviceInfo")
	procGetMonitorInfoW                 = modUser32.NewProc("GetMonitorInfoW")
	procMonitorFromPoint                = modUser32.NewProc("MonitorFromPoint")
)

type luid struct {
	LowPart  uint32
	HighPart int32
}

type displayconfigPathSourceInfo struct {
	AdapterId   luid
	Id          uint32
	ModeInfoIdx uint32
	StatusFlags uint32
}

type displayconfigPathTargetInfo struct {
	AdapterId        luid
	Id               uint32
	ModeInfoIdx      uint32
	OutputTechnology uint32
	Rotation         uint32
	Scaling          uint32
	RefreshRate      [2]uint32
	ScanLineOrdering uint32
	TargetAvailable  int32
	StatusFlags      uint32
}

type displayconfigPathInfo struct {
	SourceInfo displayconfigPathSourceInfo
	TargetInfo displayconfigPathTargetInfo
	Flags      uint32
	_          uint32 // padding to match native 8-byte alignment
}

// displayconfigModeInfo is opaque to us; we only need its size to allocate
// the buffer QueryDisplayConfig fills in.
type displayconfigModeInfo [64]byte

type displayconfigDeviceInfoHeader struct {
	Type      uint32
	Size      uint32
	AdapterId luid
	Id        uint32
}

type displayconfigSourceDeviceName struct {
	Header          displayconfigDeviceInfoHeader
	ViewGdiDeviceName [32]uint16
}

type displayconfigSdrWhiteLevel struct {
	Header        displayconfigDeviceInfoHeader
	SDRWhiteLevel uint32
}

type monitorInfoExW struct {
	CbSize    uint32
	RcMonitor windows.Rect
	RcWork    windows.Rect
	DwFlags   uint32
	SzDevice  [32]uint16
}

type point struct {
	X, Y int32
}

const monitorDefaultToPrimary = 1

// primaryMonitorHandle returns the HMONITOR for the monitor containing the
// desktop origin, matching MonitorFromPoint({0,0}, MONITOR_DEFAULTTOPRIMARY).
func primaryMonitorHandle() uintptr {
	pt := point{0, 0}
	h, _, _ := procMonitorFromPoint.Call(
		uintptr(pt.X), uintptr(pt.Y),
		uintptr(monitorDefaultToPrimary),
	)
	return h
}

// QueryPrimaryPaperWhiteNits reads the SDR white level (paper white) of the
// monitor containing the desktop origin, per §4.4.1: it resolves the
// monitor's GDI device name, walks the active display configuration paths
// to find the matching source, and reads that target's SDR white level.
// The OS value is "80-nit multiples scaled by 1000"; nits = value/1000*80.
// Any failure, or a non-positive result, falls back to DefaultPaperWhiteNits.
func QueryPrimaryPaperWhiteNits() float32 {
	return queryPaperWhiteNits(primaryMonitorHandle())
}

func queryPaperWhiteNits(mon uintptr) float32 {
	if mon == 0 {
		return DefaultPaperWhiteNits
	}

	var mi monitorInfoExW
	mi.CbSize = uint32(unsafe.Sizeof(mi))
	ok, _, _ := procGetMonitorInfoW.Call(mon, uintptr(unsafe.Pointer(&mi)))
	if ok == 0 {
		return DefaultPaperWhiteNits
	}

	var pathCount, modeCount uint32
	ret, _, _ := procGetDisplayConfigBufferSizes.Call(
		uintptr(qdcOnlyActivePaths),
		uintptr(unsafe.Pointer(&pathCount)),
		uintptr(unsafe.Pointer(&modeCount)),
	)
	if ret != errorSuccess || pathCount == 0 {
		return DefaultPaperWhiteNits
	}

	paths := make([]displayconfigPathInfo, pathCount)
	modes := make([]displayconfigModeInfo, modeCount)
	ret, _, _ = procQueryDisplayConfig.Call(
		uintptr(qdcOnlyActivePaths),
		uintptr(unsafe.Pointer(&pathCount)),
		uintptr(unsafe.Pointer(&paths[0])),
		uintptr(unsafe.Pointer(&modeCount)),
		uintptr(unsafe.Pointer(&modes[0])),
		0,
	)
	if ret != errorSuccess {
		return DefaultPaperWhiteNits
	}

	for i := uint32(0); i < pathCount; i++ {
		p := &paths[i]

		var srcName displayconfigSourceDeviceName
		srcName.Header.Type = displayconfigDeviceInfoGetSourceName
		srcName.Header.Size = uint32(unsafe.Sizeof(srcName))
		srcName.Header.AdapterId = p.SourceInfo.AdapterId
		srcName.Header.Id = p.SourceInfo.Id

		ret, _, _ = procDisplayConfigGetDeviceInfo.Call(uintptr(unsafe.Pointer(&srcName.Header)))
		if ret != errorSuccess {
			continue
		}

		if !utf16Equal(srcName.ViewGdiDeviceName[:], mi.SzDevice[:]) {
			continue
		}

		var sdr displayconfigSdrWhiteLevel
		sdr.Header.Type = displayconfigDeviceInfoGetSdrWhiteLevel
		sdr.Header.Size = uint32(unsafe.Sizeof(sdr))
		sdr.Header.AdapterId = p.TargetInfo.AdapterId
		sdr.Header.Id = p.TargetInfo.Id

		ret, _, _ = procDisplayConfigGetDeviceInfo.Call(uintptr(unsafe.Pointer(&sdr.Header)))
		if ret != errorSuccess {
			return DefaultPaperWhiteNits
		}

		nits := float32(sdr.SDRWhiteLevel) / 1000.0 * 80.0
		if nits > 0 {
			return nits
		}
		return DefaultPaperWhiteNits
	}

	return DefaultPaperWhiteNits
}

func utf16Equal(a, b []uint16) bool {
	trim := func(s []uint16) []uint16 {
		for i, c := range s {
			if c == 0 {
				return s[:i]
			}
		}
		return s
	}
	a, b = trim(a), trim(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
