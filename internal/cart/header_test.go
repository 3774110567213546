package cart

import (
	"encoding/binary"
	"errors"
	"testing"
)

// buildROM makes a synthetic ROM with a valid header & checksums.
// size should match the ROM size code (e.g. 64*1024 for code 0x01).
func buildROM(title string, cartType, romSizeCode, ramSizeCode byte, size int) []byte {
	rom := make([]byte, size)
	copy(rom[0x0104:0x0104+len(nintendoLogo)], nintendoLogo[:])

	tbytes := []byte(title)
	if len(tbytes) > 16 {
		tbytes = tbytes[:16]
	}
	copy(rom[0x0134:0x0144], tbytes)

	rom[0x0147] = cartType
	rom[0x0148] = romSizeCode
	rom[0x0149] = ramSizeCode
	rom[0x014B] = 0x33
	rom[0x014C] = 0x01
	rom[0x014D] = HeaderChecksum(rom)

	var gsum uint16
	for i := 0; i < len(rom); i++ {
		if i == 0x014E || i == 0x014F {
			continue
		}
		gsum += uint16(rom[i])
	}
	binary.BigEndian.PutUint16(rom[0x014E:0x0150], gsum)
	return rom
}

func TestParseHeader_Basic(t *testing.T) {
	rom := buildROM("TEST", 0x02, 0x01, 0x02, 64*1024)

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader error: %v", err)
	}
	if h.Title != "TEST" {
		t.Fatalf("Title got %q want %q", h.Title, "TEST")
	}
	if h.CartType != 0x02 || h.CartTypeStr != "MBC1+RAM" {
		t.Fatalf("CartType got %#02x / %s", h.CartType, h.CartTypeStr)
	}
	if h.ROMSizeBytes != 64*1024 || h.ROMBanks != 4 {
		t.Fatalf("ROM size decode got %d bytes / %d banks", h.ROMSizeBytes, h.ROMBanks)
	}
	if h.RAMSizeBytes != 8*1024 {
		t.Fatalf("RAM size decode got %d", h.RAMSizeBytes)
	}
	if !h.LogoOK {
		t.Fatalf("LogoOK = false")
	}
	if !HeaderChecksumOK(rom) {
		t.Fatalf("HeaderChecksumOK = false, want true")
	}
}

func TestROMSizeCodes(t *testing.T) {
	cases := map[byte]int{0x00: 2, 0x01: 4, 0x05: 64, 0x08: 512, 0x52: 72, 0x7F: 0}
	for code, banks := range cases {
		if _, got := decodeROMSize(code); got != banks {
			t.Fatalf("code %#02x banks got %d want %d", code, got, banks)
		}
	}
}

func TestNew_GoodHeaderLoads(t *testing.T) {
	rom := buildROM("GOOD", 0x00, 0x00, 0x00, 32*1024)
	c, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(*NoBanking); !ok {
		t.Fatalf("New returned %T want *NoBanking", c)
	}
	if c.Header().Title != "GOOD" {
		t.Fatalf("title got %q", c.Header().Title)
	}
}

func TestNew_CorruptChecksumFails(t *testing.T) {
	rom := buildROM("TEST", 0x00, 0x00, 0x00, 32*1024)
	rom[0x014D] ^= 0x5A
	c, err := New(rom)
	if !errors.Is(err, ErrChecksum) {
		t.Fatalf("err got %v want ErrChecksum", err)
	}
	if c != nil {
		t.Fatalf("controller returned alongside error")
	}
}

func TestNew_CorruptHeaderByteFails(t *testing.T) {
	rom := buildROM("TEST", 0x00, 0x00, 0x00, 32*1024)
	rom[0x0134] ^= 0xFF
	if _, err := New(rom); !errors.Is(err, ErrChecksum) {
		t.Fatalf("err got %v want ErrChecksum", err)
	}
}

func TestNew_UnsupportedTypeRejected(t *testing.T) {
	rom := buildROM("MBC3", 0x13, 0x01, 0x03, 64*1024)
	_, err := New(rom)
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) || ute.Code != 0x13 {
		t.Fatalf("err got %v want UnsupportedTypeError{13}", err)
	}
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("errors.Is(ErrUnsupportedType) = false")
	}
}

func TestParseHeader_ShortROM(t *testing.T) {
	short := make([]byte, 0x140)
	if _, err := ParseHeader(short); !errors.Is(err, ErrTooSmall) {
		t.Fatalf("err got %v want ErrTooSmall", err)
	}
	if _, err := New(short); !errors.Is(err, ErrTooSmall) {
		t.Fatalf("New err got %v want ErrTooSmall", err)
	}
}
