// Package ui presents a Machine in an ebiten window: the background and
// window layers as the video registers describe them, and the keyboard as
// the joypad.
package ui

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/log"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type App struct {
	cfg    Config
	m      *emu.Machine
	log    log.Logger
	tex    *ebiten.Image
	fb     []byte
	paused bool
	fast   bool
}

func NewApp(cfg Config, m *emu.Machine, l log.Logger) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(ppu.ScreenWidth*cfg.Scale, ppu.ScreenHeight*cfg.Scale)
	return &App{
		cfg: cfg,
		m:   m,
		log: log.OrNull(l),
		fb:  make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4),
	}
}

func (a *App) Run() error { return ebiten.RunGame(a) }

// Update returns the first fatal emulation error, which ends the game loop.
func (a *App) Update() error {
	var btn emu.Buttons
	btn.Right = ebiten.IsKeyPressed(ebiten.KeyRight)
	btn.Left = ebiten.IsKeyPressed(ebiten.KeyLeft)
	btn.Up = ebiten.IsKeyPressed(ebiten.KeyUp)
	btn.Down = ebiten.IsKeyPressed(ebiten.KeyDown)
	btn.A = ebiten.IsKeyPressed(ebiten.KeyZ)
	btn.B = ebiten.IsKeyPressed(ebiten.KeyX)
	btn.Start = ebiten.IsKeyPressed(ebiten.KeyEnter)
	btn.Select = ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	a.m.SetButtons(btn)

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	// Tab held runs several frames per update
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := a.m.PowerUp(); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		a.cfg.ShowHUD = !a.cfg.ShowHUD
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if err := a.saveScreenshot(); err != nil {
			a.log.Warnf("screenshot: %v", err)
		}
	}

	frames := 0
	switch {
	case a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN):
		frames = 1
	case a.paused:
	case a.fast:
		frames = 5
	default:
		frames = 1
	}
	for i := 0; i < frames; i++ {
		if err := a.m.StepFrame(); err != nil {
			a.log.Errorf("emulation stopped at %04X: %v", a.m.CurrentPC(), err)
			return err
		}
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight)
	}
	if v := a.m.Bus(); v != nil {
		v.Video().FrameRGBA(a.fb)
	}
	a.tex.WritePixels(a.fb)
	screen.DrawImage(a.tex, nil)

	if a.cfg.ShowHUD && a.m.Bus() != nil {
		status := ""
		if a.paused {
			status = " PAUSED"
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("PC %04X LY %3d%s", a.m.CurrentPC(), a.m.Bus().Video().LY(), status), 2, 2)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS %.0f", ebiten.ActualTPS()), 2, 14)
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return ppu.ScreenWidth, ppu.ScreenHeight }

func (a *App) saveScreenshot() error {
	img := &image.RGBA{
		Pix:    make([]byte, len(a.fb)),
		Stride: 4 * ppu.ScreenWidth,
		Rect:   image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight),
	}
	copy(img.Pix, a.fb)
	name := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	a.log.Infof("screenshot saved to %s", name)
	return nil
}
