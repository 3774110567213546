// Package ppu holds the video registers and memories the bus exposes:
// LCDC/STAT, scroll, window, palettes, tile data, background maps and OAM.
// It also sequences scanlines so LY, STAT and the video interrupts move
// with elapsed cycles. Turning the memories into pixels is left to viewers.
package ppu

import (
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/log"
)

const (
	TileDataSize = 0x1800 // 0x8000-0x97FF
	MapSize      = 0x0400 // 0x9800-0x9BFF, 0x9C00-0x9FFF
	OAMSize      = 0x00A0 // 0xFE00-0xFE9F

	MaxWindowX = 166
	MaxWindowY = 143

	dotsPerLine  = 456
	linesPerScan = 154
	visibleLines = 144
	oamScanDots  = 80
	transferDots = 172
)

// Mode is the STAT mode field.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeTransfer
)

// Shade is a 2-bit gray level, 0 lightest.
type Shade uint8

// Palette maps the four color indices to shades.
type Palette [4]Shade

func decodePalette(v byte) Palette {
	var p Palette
	for i := range p {
		p[i] = Shade(v>>(2*i)) & 0x03
	}
	return p
}

func (p Palette) Byte() byte {
	var v byte
	for i, s := range p {
		v |= byte(s&0x03) << (2 * i)
	}
	return v
}

// Control is LCDC (FF40) decoded bit by bit.
type Control struct {
	DisplayEnable bool // bit 7
	WindowMap9C00 bool // bit 6
	WindowEnable  bool // bit 5
	TileData8000  bool // bit 4
	BGMap9C00     bool // bit 3
	TallSprites   bool // bit 2, 8x16
	SpritesEnable bool // bit 1
	BGEnable      bool // bit 0
}

func decodeControl(v byte) Control {
	return Control{
		DisplayEnable: v&0x80 != 0,
		WindowMap9C00: v&0x40 != 0,
		WindowEnable:  v&0x20 != 0,
		TileData8000:  v&0x10 != 0,
		BGMap9C00:     v&0x08 != 0,
		TallSprites:   v&0x04 != 0,
		SpritesEnable: v&0x02 != 0,
		BGEnable:      v&0x01 != 0,
	}
}

func (c Control) Byte() byte {
	var v byte
	for i, on := range [8]bool{c.BGEnable, c.SpritesEnable, c.TallSprites, c.BGMap9C00,
		c.TileData8000, c.WindowEnable, c.WindowMap9C00, c.DisplayEnable} {
		if on {
			v |= 1 << i
		}
	}
	return v
}

// SpriteHeight returns 8 or 16.
func (c Control) SpriteHeight() int {
	if c.TallSprites {
		return 16
	}
	return 8
}

// STAT interrupt selects, bits 3-6.
const (
	statHBlank  = 1 << 3
	statVBlank  = 1 << 4
	statOAM     = 1 << 5
	statCompare = 1 << 6
	statSelects = statHBlank | statVBlank | statOAM | statCompare
)

type Registers struct {
	tileData [TileDataSize]byte
	bgMap1   [MapSize]byte
	bgMap2   [MapSize]byte
	oam      [OAMSize]byte

	control     Control
	selects     byte
	mode        Mode
	coincidence bool

	scy, scx byte
	ly, lyc  byte
	wy, wx   byte

	bgp, obp0, obp1 Palette

	dot int

	irq *interrupt.Latches
	log log.Logger
}

// New returns video registers that raise v-blank and STAT interrupts on irq.
func New(irq *interrupt.Latches, l log.Logger) *Registers {
	return &Registers{irq: irq, log: log.OrNull(l)}
}

func (r *Registers) ReadTileData(off uint16) byte     { return r.tileData[off%TileDataSize] }
func (r *Registers) WriteTileData(off uint16, v byte) { r.tileData[off%TileDataSize] = v }

// ReadMap reads background map 1 (second=false) or 2.
func (r *Registers) ReadMap(second bool, off uint16) byte {
	if second {
		return r.bgMap2[off%MapSize]
	}
	return r.bgMap1[off%MapSize]
}

func (r *Registers) WriteMap(second bool, off uint16, v byte) {
	if second {
		r.bgMap2[off%MapSize] = v
	} else {
		r.bgMap1[off%MapSize] = v
	}
}

func (r *Registers) ReadOAM(off uint16) byte     { return r.oam[off%OAMSize] }
func (r *Registers) WriteOAM(off uint16, v byte) { r.oam[off%OAMSize] = v }

// ReadRegister returns the I/O register at addr (FF40-FF4B, except FF46).
func (r *Registers) ReadRegister(addr uint16) byte {
	switch addr {
	case 0xFF40:
		return r.control.Byte()
	case 0xFF41:
		v := 0x80 | r.selects | byte(r.mode)
		if r.coincidence {
			v |= 0x04
		}
		return v
	case 0xFF42:
		return r.scy
	case 0xFF43:
		return r.scx
	case 0xFF44:
		return r.ly
	case 0xFF45:
		return r.lyc
	case 0xFF47:
		return r.bgp.Byte()
	case 0xFF48:
		return r.obp0.Byte()
	case 0xFF49:
		return r.obp1.Byte()
	case 0xFF4A:
		return r.wy
	case 0xFF4B:
		return r.wx
	}
	return 0xFF
}

func (r *Registers) WriteRegister(addr uint16, v byte) {
	switch addr {
	case 0xFF40:
		was := r.control.DisplayEnable
		r.control = decodeControl(v)
		switch {
		case was && !r.control.DisplayEnable:
			r.ly, r.dot = 0, 0
			r.mode = ModeHBlank
			r.compare()
		case !was && r.control.DisplayEnable:
			r.ly, r.dot = 0, 0
			r.setMode(ModeOAMScan)
			r.compare()
		}
	case 0xFF41:
		r.selects = v & statSelects
	case 0xFF42:
		r.scy = v
	case 0xFF43:
		r.scx = v
	case 0xFF44:
		r.log.Debugf("ppu: write %02X to read-only LY ignored", v)
	case 0xFF45:
		r.lyc = v
		r.compare()
	case 0xFF47:
		r.bgp = decodePalette(v)
	case 0xFF48:
		r.obp0 = decodePalette(v)
	case 0xFF49:
		r.obp1 = decodePalette(v)
	case 0xFF4A:
		if v > MaxWindowY {
			r.log.Debugf("ppu: window y %d clamped to %d", v, MaxWindowY)
			v = MaxWindowY
		}
		r.wy = v
	case 0xFF4B:
		if v > MaxWindowX {
			r.log.Debugf("ppu: window x %d clamped to %d", v, MaxWindowX)
			v = MaxWindowX
		}
		r.wx = v
	}
}

// Tick advances the scanline sequencer by cycles dots.
func (r *Registers) Tick(cycles int) {
	if !r.control.DisplayEnable {
		return
	}
	for ; cycles > 0; cycles-- {
		r.dot++
		if r.dot >= dotsPerLine {
			r.dot = 0
			r.ly++
			if r.ly >= linesPerScan {
				r.ly = 0
			}
			r.compare()
			if r.ly == visibleLines {
				r.request(interrupt.VBlank)
				r.setMode(ModeVBlank)
				continue
			}
		}
		if r.ly >= visibleLines {
			continue
		}
		switch {
		case r.dot < oamScanDots:
			r.setMode(ModeOAMScan)
		case r.dot < oamScanDots+transferDots:
			r.setMode(ModeTransfer)
		default:
			r.setMode(ModeHBlank)
		}
	}
}

func (r *Registers) setMode(m Mode) {
	if r.mode == m {
		return
	}
	r.mode = m
	switch {
	case m == ModeHBlank && r.selects&statHBlank != 0,
		m == ModeVBlank && r.selects&statVBlank != 0,
		m == ModeOAMScan && r.selects&statOAM != 0:
		r.request(interrupt.LCDStat)
	}
}

func (r *Registers) compare() {
	r.coincidence = r.ly == r.lyc
	if r.coincidence && r.selects&statCompare != 0 {
		r.request(interrupt.LCDStat)
	}
}

func (r *Registers) request(s interrupt.Source) {
	if r.irq != nil {
		r.irq.Request(s)
	}
}

func (r *Registers) Control() Control { return r.control }
func (r *Registers) Mode() Mode       { return r.mode }
func (r *Registers) LY() byte         { return r.ly }
func (r *Registers) LYC() byte        { return r.lyc }
func (r *Registers) Coincidence() bool {
	return r.coincidence
}

// Scroll returns SCX and SCY.
func (r *Registers) Scroll() (x, y byte) { return r.scx, r.scy }

// Window returns WX and WY.
func (r *Registers) Window() (x, y byte) { return r.wx, r.wy }

// Palettes returns BGP, OBP0 and OBP1 decoded.
func (r *Registers) Palettes() (bg, obj0, obj1 Palette) { return r.bgp, r.obp0, r.obp1 }
