package cart

import (
	"encoding/binary"
	"strings"
)

const (
	headerEnd      = 0x014F
	checksumStart  = 0x0134
	checksumEnd    = 0x014C
	checksumOffset = 0x014D
)

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

type Header struct {
	Title          string // 0x0134-0x0143, NUL padding trimmed
	CartType       byte   // 0x0147
	ROMSizeCode    byte   // 0x0148
	RAMSizeCode    byte   // 0x0149
	Destination    byte   // 0x014A
	OldLicensee    byte   // 0x014B
	ROMVersion     byte   // 0x014C
	HeaderChecksum byte   // 0x014D
	GlobalChecksum uint16 // 0x014E-0x014F
	LogoOK         bool

	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	CartTypeStr  string
}

func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, ErrTooSmall
	}

	// Homebrew images often omit the logo; it is recorded, not enforced.
	logoOK := true
	for i, b := range nintendoLogo {
		if rom[0x0104+i] != b {
			logoOK = false
			break
		}
	}

	h := &Header{
		Title:          strings.TrimRight(string(rom[0x0134:0x0144]), "\x00"),
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[checksumOffset],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
		LogoOK:         logoOK,
	}
	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMSizeBytes = decodeRAMSize(h.RAMSizeCode)
	h.CartTypeStr = cartTypeString(h.CartType)
	return h, nil
}

// HeaderChecksum computes x = x - rom[i] - 1 over 0x0134..0x014C.
func HeaderChecksum(rom []byte) byte {
	var sum byte
	for addr := checksumStart; addr <= checksumEnd && addr < len(rom); addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}

func HeaderChecksumOK(rom []byte) bool {
	if len(rom) <= checksumOffset {
		return false
	}
	return HeaderChecksum(rom) == rom[checksumOffset]
}

func decodeROMSize(code byte) (size, banks int) {
	if code <= 0x08 {
		banks = 2 << code
		return banks * 0x4000, banks
	}
	switch code {
	case 0x52:
		return 72 * 0x4000, 72
	case 0x53:
		return 80 * 0x4000, 80
	case 0x54:
		return 96 * 0x4000, 96
	}
	return 0, 0
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	}
	return 0
}

func cartTypeString(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01:
		return "MBC1"
	case 0x02:
		return "MBC1+RAM"
	case 0x03:
		return "MBC1+RAM+BATTERY"
	case 0x05, 0x06:
		return "MBC2"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5"
	}
	return "unknown"
}
