package ppu

import "testing"

func TestTileRowDecode(t *testing.T) {
	r := New(nil, nil)
	r.WriteRegister(0xFF40, 0x91)
	// lo 0x55, hi 0x33: indices 0,1,2,3 repeating
	r.WriteTileData(16*1, 0x55)
	r.WriteTileData(16*1+1, 0x33)
	row := r.tileRow(1, 0)
	want := [8]byte{0, 1, 2, 3, 0, 1, 2, 3}
	if row != want {
		t.Fatalf("row got %v want %v", row, want)
	}
}

func TestSignedTileAddressing(t *testing.T) {
	r := New(nil, nil)
	r.WriteRegister(0xFF40, 0x81)    // 0x8800 addressing
	r.WriteTileData(0x1000-16, 0xFF) // tile -1, row 0 low plane
	row := r.tileRow(0xFF, 0)
	for i, ci := range row {
		if ci != 1 {
			t.Fatalf("px %d got %d want 1", i, ci)
		}
	}
}

func TestLineAppliesScrollAndPalette(t *testing.T) {
	r := New(nil, nil)
	r.WriteRegister(0xFF40, 0x91)
	r.WriteRegister(0xFF47, 0xE4)
	// tile 1 is solid index 3
	for i := 0; i < 16; i++ {
		r.WriteTileData(uint16(16+i), 0xFF)
	}
	r.WriteMap(false, 1, 1) // column 1 of row 0
	line := r.Line(0)
	if line[7] != 0 || line[8] != 3 || line[15] != 3 || line[16] != 0 {
		t.Fatalf("unscrolled line wrong: %v", line[:20])
	}
	r.WriteRegister(0xFF43, 4)
	line = r.Line(0)
	if line[3] != 0 || line[4] != 3 || line[11] != 3 || line[12] != 0 {
		t.Fatalf("scrolled line wrong: %v", line[:20])
	}
}

func TestLineBlankWhenBGDisabled(t *testing.T) {
	r := New(nil, nil)
	r.WriteRegister(0xFF40, 0x90)
	r.WriteRegister(0xFF47, 0xFF)
	for _, s := range r.Line(0) {
		if s != 0 {
			t.Fatalf("BG disabled line has shade %d", s)
		}
	}
}

func TestFrameRGBA(t *testing.T) {
	r := New(nil, nil)
	r.WriteRegister(0xFF40, 0x91)
	r.WriteRegister(0xFF47, 0xE4)
	for i := 0; i < 16; i++ {
		r.WriteTileData(uint16(16+i), 0xFF)
	}
	r.WriteMap(false, 0, 1)
	fb := make([]byte, ScreenWidth*ScreenHeight*4)
	r.FrameRGBA(fb)
	if fb[0] != 0x00 || fb[3] != 0xFF {
		t.Fatalf("pixel 0 got %v want black", fb[:4])
	}
	if i := 8 * 4; fb[i] != 0xFF {
		t.Fatalf("pixel 8 got %02x want white", fb[i])
	}
}
