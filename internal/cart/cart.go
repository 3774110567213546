package cart

import (
	"errors"
	"fmt"
)

var (
	ErrTooSmall        = errors.New("cart: image too small to hold a header")
	ErrChecksum        = errors.New("cart: header checksum mismatch")
	ErrUnsupportedType = errors.New("cart: unsupported banking type")
)

// UnsupportedTypeError carries the rejected header type byte.
type UnsupportedTypeError struct {
	Code byte
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("cart: unsupported banking type %#02x (%s)", e.Code, cartTypeString(e.Code))
}

func (e *UnsupportedTypeError) Unwrap() error { return ErrUnsupportedType }

// Controller is the bank-switching capability set the bus dispatches to.
// ROM offsets are cartridge addresses (0x0000-0x7FFF); RAM offsets are
// relative to 0xA000.
type Controller interface {
	ReadROM(offset uint16) byte
	// WriteROMControl handles stores into the ROM window. They never change
	// ROM contents; banked carts treat them as register writes.
	WriteROMControl(offset uint16, value byte)
	ReadRAM(offset uint16) byte
	WriteRAM(offset uint16, value byte)
	Header() *Header
}

// BatteryBacked is implemented by controllers whose external RAM should
// survive power cycles.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// New validates the image header and returns the matching controller.
// Nothing is constructed when validation fails.
func New(rom []byte) (Controller, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	if !HeaderChecksumOK(rom) {
		return nil, fmt.Errorf("%w: header says %#02x, computed %#02x", ErrChecksum, h.HeaderChecksum, HeaderChecksum(rom))
	}
	switch h.CartType {
	case 0x00:
		return newNoBanking(rom, h), nil
	case 0x01, 0x02, 0x03:
		ramSize := 0
		if h.CartType != 0x01 {
			ramSize = h.RAMSizeBytes
		}
		return newSingleBank(rom, h, ramSize, h.CartType == 0x03), nil
	default:
		return nil, &UnsupportedTypeError{Code: h.CartType}
	}
}
