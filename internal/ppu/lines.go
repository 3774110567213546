package ppu

const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// tileRow decodes one 8-pixel row of a tile into color indices.
func (r *Registers) tileRow(tileNum byte, fineY byte) [8]byte {
	var base uint16
	if r.control.TileData8000 {
		base = uint16(tileNum) * 16
	} else {
		base = uint16(0x1000 + int(int8(tileNum))*16)
	}
	base += uint16(fineY&7) * 2
	lo, hi := r.tileData[base%TileDataSize], r.tileData[(base+1)%TileDataSize]

	var row [8]byte
	for px := range row {
		bit := 7 - uint(px)
		row[px] = (hi>>bit)&1<<1 | (lo>>bit)&1
	}
	return row
}

// mapIndex reads the tile number at column x, row y of one background map.
func (r *Registers) mapIndex(second bool, x, y int) byte {
	return r.ReadMap(second, uint16((y&31)*32+(x&31)))
}

// Line composes the background and window for scanline ly as shades
// through BGP. Sprites are not composed.
func (r *Registers) Line(ly int) [ScreenWidth]Shade {
	var out [ScreenWidth]Shade
	if !r.control.BGEnable {
		return out
	}

	bgY := (ly + int(r.scy)) & 0xFF
	winX := int(r.wx) - 7
	window := r.control.WindowEnable && ly >= int(r.wy)
	winY := ly - int(r.wy)

	for x := 0; x < ScreenWidth; x++ {
		var ci byte
		if window && x >= winX {
			wx := x - winX
			row := r.tileRow(r.mapIndex(r.control.WindowMap9C00, wx>>3, winY>>3), byte(winY))
			ci = row[wx&7]
		} else {
			bgX := (x + int(r.scx)) & 0xFF
			row := r.tileRow(r.mapIndex(r.control.BGMap9C00, bgX>>3, bgY>>3), byte(bgY))
			ci = row[bgX&7]
		}
		out[x] = r.bgp[ci]
	}
	return out
}

// Frame composes all visible lines.
func (r *Registers) Frame() [ScreenHeight][ScreenWidth]Shade {
	var f [ScreenHeight][ScreenWidth]Shade
	for y := range f {
		f[y] = r.Line(y)
	}
	return f
}

var grays = [4]byte{0xFF, 0xC0, 0x60, 0x00}

// Gray is the 8-bit intensity of s.
func (s Shade) Gray() byte { return grays[s&0x03] }

// FrameRGBA composes the frame into dst, 4 bytes per pixel. dst must hold
// ScreenWidth*ScreenHeight*4 bytes.
func (r *Registers) FrameRGBA(dst []byte) {
	for y := 0; y < ScreenHeight; y++ {
		line := r.Line(y)
		for x, s := range line {
			i := (y*ScreenWidth + x) * 4
			g := s.Gray()
			dst[i], dst[i+1], dst[i+2], dst[i+3] = g, g, g, 0xFF
		}
	}
}
