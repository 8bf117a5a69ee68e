//go:build windows

package d3dcap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modD3DCompiler = windows.NewLazySystemDLL("d3dcompiler_47.dll")
	procD3DCompile = modD3DCompiler.NewProc("D3DCompile")
)

// compileHLSL compiles source's entryPoint against target (e.g. "cs_5_0")
// and returns the resulting bytecode blob, following the same
// D3DCompile-then-CreateXShader sequence any D3D11 HLSL pipeline uses.
// The two ID3D10Blob outputs (bytecode and error messages) are COM
// objects too; both are released after their bytes are copied out.
func compileHLSL(source, entryPoint, target string) ([]byte, error) {
	srcBytes := append([]byte(source), 0)
	entryBytes := append([]byte(entryPoint), 0)
	targetBytes := append([]byte(target), 0)

	var codeBlob, errBlob unsafe.Pointer
	hr, _, _ := procD3DCompile.Call(
		uintptr(unsafe.Pointer(&srcBytes[0])), uintptr(len(source)),
		0, // source name
		0, // defines
		0, // include handler
		uintptr(unsafe.Pointer(&entryBytes[0])),
		uintptr(unsafe.Pointer(&targetBytes[0])),
		0, // flags1
		0, // flags2
		uintptr(unsafe.Pointer(&codeBlob)),
		uintptr(unsafe.Pointer(&errBlob)),
	)
	if failed(hr) {
		msg := blobString(errBlob)
		comRelease(comObject(errBlob))
		if msg == "" {
			msg = hresultString(hr)
		}
		return nil, fmt.Errorf("d3dcap: D3DCompile: %s", msg)
	}
	defer comRelease(comObject(codeBlob))
	comRelease(comObject(errBlob))

	return append([]byte(nil), blobBytes(codeBlob)...), nil
}

// ID3D10Blob vtable slots: GetBufferPointer, GetBufferSize, past IUnknown.
const (
	slotBlobGetBufferPointer = 3
	slotBlobGetBufferSize    = 4
)

func blobBytes(blob unsafe.Pointer) []byte {
	if blob == nil {
		return nil
	}
	obj := comObject(blob)
	ptrRet := vtblCall(obj, slotBlobGetBufferPointer)
	size := vtblCall(obj, slotBlobGetBufferSize)
	return unsafe.Slice((*byte)(unsafe.Pointer(ptrRet)), int(size))
}

func blobString(blob unsafe.Pointer) string {
	b := blobBytes(blob)
	if len(b) == 0 {
		return ""
	}
	return string(b)
}
