package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for bank controller families this core does not emulate.
	ErrUnsupported = errors.New("cart: unsupported cartridge type")
	// ErrSizeMismatch is returned when the image length disagrees with the header's ROM size class.
	ErrSizeMismatch = errors.New("cart: image size does not match header")
	// ErrRAMSize is returned by LoadRAM when the save data does not fit the cartridge RAM.
	ErrRAMSize = errors.New("cart: save data size does not match cartridge RAM")
)

// Cartridge is the bank controller view the bus delegates to.
// Addresses are CPU addresses: 0x0000-0x7FFF for ROM and control writes,
// 0xA000-0xBFFF for external RAM.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	// SaveState/LoadState serialize banking registers and external RAM.
	SaveState() ([]byte, error)
	LoadState(data []byte) error
}

// BatteryBacked is implemented by cartridges carrying external RAM.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte) error
}

// New parses the header and returns the matching bank controller.
// Unknown controller types and size mismatches are load errors, never a silent fallback.
func New(rom []byte) (Cartridge, *Header, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, nil, err
	}
	if len(rom) != h.ROMSizeBytes {
		return nil, nil, fmt.Errorf("%w: header declares %d bytes, image has %d", ErrSizeMismatch, h.ROMSizeBytes, len(rom))
	}
	switch h.CartType {
	case 0x00:
		if h.RAMSizeBytes != 0 {
			return nil, nil, fmt.Errorf("%w: ROM-only cartridge declares %d bytes of RAM", ErrSizeMismatch, h.RAMSizeBytes)
		}
		return NewROMOnly(rom), h, nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.RAMSizeBytes), h, nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h.RAMSizeBytes), h, nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h.RAMSizeBytes), h, nil
	default:
		return nil, nil, fmt.Errorf("%w: type 0x%02X (%s)", ErrUnsupported, h.CartType, h.CartTypeStr)
	}
}
