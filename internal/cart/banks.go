package cart

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// banked holds the ROM/RAM storage shared by every controller.
// Bank numbers are reduced modulo the banks actually present.
type banked struct {
	rom        []byte
	ram        []byte
	ramEnabled bool
}

func newBanked(rom []byte, ramSize int) banked {
	b := banked{rom: rom}
	if ramSize > 0 {
		b.ram = make([]byte, ramSize)
	}
	return b
}

func (b *banked) romBanks() int {
	n := len(b.rom) / romBankSize
	if n == 0 {
		return 1
	}
	return n
}

func (b *banked) readROM(bank int, addr uint16) byte {
	off := (bank%b.romBanks())*romBankSize + int(addr&0x3FFF)
	if off >= len(b.rom) {
		return 0xFF
	}
	return b.rom[off]
}

func (b *banked) ramOffset(bank int, addr uint16) (int, bool) {
	if !b.ramEnabled || len(b.ram) == 0 {
		return 0, false
	}
	banks := len(b.ram) / ramBankSize
	if banks == 0 {
		banks = 1
	}
	off := (bank%banks)*ramBankSize + int(addr-0xA000)
	return off % len(b.ram), true
}

func (b *banked) readRAM(bank int, addr uint16) byte {
	off, ok := b.ramOffset(bank, addr)
	if !ok {
		return 0xFF
	}
	return b.ram[off]
}

func (b *banked) writeRAM(bank int, addr uint16, value byte) {
	if off, ok := b.ramOffset(bank, addr); ok {
		b.ram[off] = value
	}
}

// setRAMEnable applies a write to the 0x0000-0x1FFF window.
func (b *banked) setRAMEnable(value byte) {
	b.ramEnabled = value&0x0F == 0x0A
}

func (b *banked) SaveRAM() []byte {
	if len(b.ram) == 0 {
		return nil
	}
	return append([]byte(nil), b.ram...)
}

func (b *banked) LoadRAM(data []byte) error {
	if len(data) != len(b.ram) {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrRAMSize, len(data), len(b.ram))
	}
	copy(b.ram, data)
	return nil
}

// bankState is the gob payload shared by every controller.
type bankState struct {
	RAM        []byte
	ROMBank    uint16
	RAMBank    byte
	Mode       byte
	RAMEnabled bool
	RTC        [5]byte
}

func encodeState(s bankState) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("cart: encode state: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeState(data []byte, ram []byte) (bankState, error) {
	var s bankState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return s, fmt.Errorf("cart: decode state: %w", err)
	}
	if len(s.RAM) != len(ram) {
		return s, fmt.Errorf("%w: state has %d bytes, want %d", ErrRAMSize, len(s.RAM), len(ram))
	}
	copy(ram, s.RAM)
	return s, nil
}
