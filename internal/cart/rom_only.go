package cart

// NoBanking maps the image straight into 0x0000-0x7FFF and has no RAM.
type NoBanking struct {
	rom    []byte
	header *Header
}

// NewNoBanking wraps rom without header validation. Tools and tests use it
// for hand-assembled images; New is the validating path.
func NewNoBanking(rom []byte) *NoBanking {
	h, _ := ParseHeader(rom)
	return newNoBanking(rom, h)
}

func newNoBanking(rom []byte, h *Header) *NoBanking {
	return &NoBanking{rom: rom, header: h}
}

func (c *NoBanking) ReadROM(offset uint16) byte {
	if int(offset) < len(c.rom) {
		return c.rom[offset]
	}
	return 0xFF
}

func (c *NoBanking) WriteROMControl(offset uint16, value byte) {}

func (c *NoBanking) ReadRAM(offset uint16) byte         { return 0 }
func (c *NoBanking) WriteRAM(offset uint16, value byte) {}

// Header may be nil for images shorter than a header.
func (c *NoBanking) Header() *Header { return c.header }
