//go:build windows

// Command hdrcap-demo drives one capture cycle from the command line,
// mirroring the teacher's own example/main.go: a thin, unstructured driver
// that prints progress and errors with fmt.Println and exits with status 1
// on failure, while the library packages it calls do proper error returns.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"hdrcap/capture"
	"hdrcap/config"
	"hdrcap/log"
)

func main() {
	// The Win32 message pump the Interactive Preview drives requires the
	// window to be created and pumped from the same OS thread.
	runtime.LockOSThread()

	mode := flag.String("mode", "full", "capture mode: full, region, or window")
	out := flag.String("out", "capture.png", "output PNG path")
	clipboard := flag.Bool("clipboard", false, "also copy the result to the clipboard")
	configPath := flag.String("config", "", "optional TOML config path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	host, err := capture.NewHost(cfg, log.Default)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer host.Close()

	start := time.Now()
	// AcquireComposite is the trigger layer's job (§4.3): it owns the
	// once-only re-init-and-retry on acquisition failure, kept separate
	// from the three host operations below, which just consume the result.
	composite, err := host.AcquireComposite()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var confirmed bool
	switch *mode {
	case "region":
		confirmed, err = host.CaptureRegion(composite, host.Device(), *clipboard, *out)
	case "window":
		confirmed, err = host.CaptureWindow(composite, host.Device(), *clipboard, *out)
	default:
		confirmed, err = host.CaptureFullDesktop(composite, host.Device(), *clipboard, *out)
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if !confirmed {
		fmt.Println("cancelled")
		return
	}
	fmt.Printf("saved %s in %s\n", *out, time.Since(start))
}
