package emu

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
)

type sessionState struct {
	Title       string
	Bus         []byte
	CPU         []byte
	PPU         []byte
	TimerCycles int
}

// SaveState snapshots every component. The cartridge image itself is not
// included, so a snapshot only loads into a session built from the same ROM.
func (s *Session) SaveState() ([]byte, error) {
	st := sessionState{Title: s.header.Title, TimerCycles: s.timer.Cycles()}
	var err error
	if st.Bus, err = s.bus.SaveState(); err != nil {
		return nil, err
	}
	if st.CPU, err = s.cpu.SaveState(); err != nil {
		return nil, err
	}
	if st.PPU, err = s.ppu.SaveState(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(st); err != nil {
		return nil, fmt.Errorf("emu: encode state: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Session) LoadState(data []byte) error {
	var st sessionState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return fmt.Errorf("emu: decode state: %w", err)
	}
	if st.Title != s.header.Title {
		return fmt.Errorf("emu: state belongs to %q, not %q", st.Title, s.header.Title)
	}
	if err := s.bus.LoadState(st.Bus); err != nil {
		return err
	}
	if err := s.cpu.LoadState(st.CPU); err != nil {
		return err
	}
	if err := s.ppu.LoadState(st.PPU); err != nil {
		return err
	}
	s.timer.SetCycles(st.TimerCycles)
	return nil
}

// SaveRAM returns a copy of battery-backed cartridge RAM. ok is false when
// the cartridge has nothing worth persisting.
func (s *Session) SaveRAM() (data []byte, ok bool) {
	bb, isBB := s.cart.(cart.BatteryBacked)
	if !isBB || !s.header.HasBattery() {
		return nil, false
	}
	data = bb.SaveRAM()
	return data, len(data) > 0
}

// LoadRAM restores cartridge RAM from a save file.
func (s *Session) LoadRAM(data []byte) error {
	bb, ok := s.cart.(cart.BatteryBacked)
	if !ok || s.header.RAMSizeBytes == 0 {
		return ErrNoRAM
	}
	return bb.LoadRAM(data)
}

// SavePath is where battery RAM for romPath lives: the same name with a
// .sav extension, next to the ROM.
func SavePath(romPath string) string {
	return strings.TrimSuffix(romPath, filepath.Ext(romPath)) + ".sav"
}
