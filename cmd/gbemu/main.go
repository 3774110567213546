package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/debugger"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/log"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ui"
)

type CLIFlags struct {
	ROMPath  string
	Scale    int
	Title    string
	HUD      bool
	Trace    bool
	LogLevel string
	SaveRAM  bool // persist battery RAM next to ROM (.sav)
	Debug    bool

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected frame xxhash hex
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb, .gz, .zip, .7z)")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.BoolVar(&f.HUD, "hud", false, "show PC/LY overlay")
	flag.BoolVar(&f.Trace, "trace", false, "CPU trace log (needs -log-level debug)")
	flag.StringVar(&f.LogLevel, "log-level", "info", "debug, info, warn or error")
	flag.BoolVar(&f.SaveRAM, "save", true, "persist battery RAM to ROM.sav on exit and load on start")
	flag.BoolVar(&f.Debug, "debug", false, "run the step debugger instead of the window")

	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last frame to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert frame xxhash (hex)")
	flag.Parse()
	return f
}

func savPath(rom string) string {
	return strings.TrimSuffix(rom, filepath.Ext(rom)) + ".sav"
}

func runHeadless(m *emu.Machine, l log.Logger, frames int, pngPath, expect string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := m.StepFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	dur := time.Since(start)

	fb := make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4)
	m.Bus().Video().FrameRGBA(fb)
	sum := xxhash.Sum64(fb)

	l.Infof("headless: frames=%d elapsed=%s fps=%.2f frame_xxhash=%016x",
		frames, dur.Truncate(time.Millisecond), float64(frames)/dur.Seconds(), sum)

	if pngPath != "" {
		if err := saveFramePNG(fb, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		l.Infof("wrote %s", pngPath)
	}

	if expect != "" {
		want := strings.TrimPrefix(strings.ToLower(expect), "0x")
		if got := fmt.Sprintf("%016x", sum); got != want {
			return fmt.Errorf("frame hash mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, path string) error {
	img := &image.RGBA{
		Pix:    pix,
		Stride: 4 * ppu.ScreenWidth,
		Rect:   image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func runDebugger(m *emu.Machine) error {
	in, out, restore, err := debugger.OpenTerminal(debugger.Prompt)
	if err != nil {
		return err
	}
	defer restore()
	return debugger.New(m, out).Run(in)
}

func run(f CLIFlags, l log.Logger) error {
	if f.ROMPath == "" {
		return fmt.Errorf("no ROM given; use -rom")
	}

	cfg := emu.DefaultConfig()
	cfg.Trace = f.Trace
	cfg.LogLevel = f.LogLevel
	if f.SaveRAM {
		cfg.BatteryPath = savPath(f.ROMPath)
	}

	m := emu.New(cfg, l)
	if err := m.LoadROMFromFile(f.ROMPath); err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			l.Warnf("%v", err)
		}
	}()

	switch {
	case f.Debug:
		return runDebugger(m)
	case f.Headless:
		return runHeadless(m, l, f.Frames, f.PNGOut, f.Expect)
	}
	app := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale, ShowHUD: f.HUD}, m, l)
	return app.Run()
}

func main() {
	f := parseFlags()
	l := log.New(f.LogLevel)
	if err := run(f, l); err != nil {
		l.Errorf("%v", err)
		os.Exit(1)
	}
}
