package bus

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

type busState struct {
	Regs        Registers
	VRAM        []byte
	WRAM        []byte
	OAM         []byte
	HRAM        []byte
	BootEnabled bool
	Buttons     byte
	Cart        []byte
}

// SaveState snapshots memory, registers and the cartridge.
func (b *Bus) SaveState() ([]byte, error) {
	cs, err := b.cart.SaveState()
	if err != nil {
		return nil, err
	}
	s := busState{
		Regs:        b.Regs,
		VRAM:        b.vram[:],
		WRAM:        b.wram[:],
		OAM:         b.oam[:],
		HRAM:        b.hram[:],
		BootEnabled: b.bootEnabled,
		Buttons:     b.buttons,
		Cart:        cs,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("bus: encode state: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Bus) LoadState(data []byte) error {
	var s busState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("bus: decode state: %w", err)
	}
	if err := b.cart.LoadState(s.Cart); err != nil {
		return err
	}
	b.Regs = s.Regs
	copy(b.vram[:], s.VRAM)
	copy(b.wram[:], s.WRAM)
	copy(b.oam[:], s.OAM)
	copy(b.hram[:], s.HRAM)
	// the overlay never comes back once unmapped
	if b.bootEnabled && !s.BootEnabled {
		b.DisableBoot()
	}
	b.buttons = s.Buttons
	return nil
}
