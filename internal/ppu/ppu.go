// Package ppu implements the DMG pixel processing unit: the per-line mode
// state machine and a scanline renderer that writes resolved shades into
// a Frame.
package ppu

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
)

// Mode is the 2-bit value reported in STAT bits 0-1.
type Mode byte

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAM
	ModeTransfer
)

func (m Mode) String() string {
	switch m {
	case ModeHBlank:
		return "hblank"
	case ModeVBlank:
		return "vblank"
	case ModeOAM:
		return "oam"
	case ModeTransfer:
		return "transfer"
	}
	return fmt.Sprintf("Mode(%d)", byte(m))
}

const (
	oamCycles      = 80
	transferCycles = 172
	hblankCycles   = 204
	LineCycles     = oamCycles + transferCycles + hblankCycles
	VisibleLines   = 144
	TotalLines     = 154
	FrameCycles    = LineCycles * TotalLines
)

// LCDC bits
const (
	lcdcBGEnable    = 0x01
	lcdcOBJEnable   = 0x02
	lcdcOBJSize     = 0x04
	lcdcBGMap       = 0x08
	lcdcTileData    = 0x10
	lcdcWinEnable   = 0x20
	lcdcWinMap      = 0x40
	lcdcDisplayOn   = 0x80
	statCoincidence = 0x04
	statHBlankInt   = 0x08
	statVBlankInt   = 0x10
	statOAMInt      = 0x20
	statLYCInt      = 0x40
)

type PPU struct {
	bus *bus.Bus

	mode        Mode
	cycles      int
	windowLine  int
	vblankFired bool
	lcdOff      bool

	frame Frame
}

func New(b *bus.Bus) *PPU {
	return &PPU{bus: b, mode: ModeOAM}
}

// Reset puts the unit at the start of line 0 in OAM scan.
func (p *PPU) Reset() {
	p.mode = ModeOAM
	p.cycles = 0
	p.windowLine = 0
	p.vblankFired = false
	p.lcdOff = false
	p.frame = Frame{}
}

func (p *PPU) Mode() Mode { return p.mode }

// Line returns the current scanline (LY).
func (p *PPU) Line() int { return int(p.bus.Regs.LY) }

// Dots returns the cycles accumulated within the current mode.
func (p *PPU) Dots() int { return p.cycles }

// WindowLine is the window's own row counter.
func (p *PPU) WindowLine() int { return p.windowLine }

func (p *PPU) Frame() *Frame { return &p.frame }

func (p *PPU) lcdc(bit byte) bool { return p.bus.Regs.LCDC&bit != 0 }

// Advance runs the mode state machine for the given number of cycles.
// Every threshold the accumulator crosses produces one transition.
func (p *PPU) Advance(cycles int) {
	r := &p.bus.Regs
	if !p.lcdc(lcdcDisplayOn) {
		p.mode = ModeHBlank
		p.cycles = 0
		p.lcdOff = true
		r.STAT &^= 0x03
		return
	}
	if p.lcdOff {
		p.lcdOff = false
		p.restart()
	}

	p.cycles += cycles
	for {
		switch p.mode {
		case ModeOAM:
			if p.cycles < oamCycles {
				return
			}
			p.cycles -= oamCycles
			p.setMode(ModeTransfer)
		case ModeTransfer:
			if p.cycles < transferCycles {
				return
			}
			p.cycles -= transferCycles
			p.renderLine()
			p.setMode(ModeHBlank)
		case ModeHBlank:
			if p.cycles < hblankCycles {
				return
			}
			p.cycles -= hblankCycles
			r.LY++
			if r.LY == VisibleLines {
				p.setMode(ModeVBlank)
				if !p.vblankFired {
					p.vblankFired = true
					p.bus.RequestInterrupt(bus.IntVBlank)
				}
			} else {
				p.setMode(ModeOAM)
			}
			p.compareLY()
		case ModeVBlank:
			if p.cycles < LineCycles {
				return
			}
			p.cycles -= LineCycles
			r.LY++
			if r.LY == TotalLines {
				r.LY = 0
				p.windowLine = 0
				p.vblankFired = false
				p.setMode(ModeOAM)
			}
			p.compareLY()
		}
	}
}

// restart begins a fresh frame after the display is switched back on.
func (p *PPU) restart() {
	p.bus.Regs.LY = 0
	p.cycles = 0
	p.windowLine = 0
	p.vblankFired = false
	p.mode = ModeOAM
	p.bus.Regs.STAT = p.bus.Regs.STAT&^0x03 | byte(ModeOAM)
	p.compareLY()
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	r := &p.bus.Regs
	r.STAT = r.STAT&^0x03 | byte(m)

	var enable byte
	switch m {
	case ModeHBlank:
		enable = statHBlankInt
	case ModeVBlank:
		enable = statVBlankInt
	case ModeOAM:
		enable = statOAMInt
	}
	if r.STAT&enable != 0 {
		p.bus.RequestInterrupt(bus.IntSTAT)
	}
}

func (p *PPU) compareLY() {
	r := &p.bus.Regs
	if r.LY != r.LYC {
		r.STAT &^= statCoincidence
		return
	}
	r.STAT |= statCoincidence
	if r.STAT&statLYCInt != 0 {
		p.bus.RequestInterrupt(bus.IntSTAT)
	}
}

type ppuState struct {
	Mode        Mode
	Cycles      int
	WindowLine  int
	VBlankFired bool
	LCDOff      bool
	Frame       []byte
}

func (p *PPU) SaveState() ([]byte, error) {
	s := ppuState{
		Mode:        p.mode,
		Cycles:      p.cycles,
		WindowLine:  p.windowLine,
		VBlankFired: p.vblankFired,
		LCDOff:      p.lcdOff,
		Frame:       p.frame.bytes(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("ppu: encode state: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PPU) LoadState(data []byte) error {
	var s ppuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("ppu: decode state: %w", err)
	}
	p.mode, p.cycles, p.windowLine = s.Mode&0x03, s.Cycles, s.WindowLine
	p.vblankFired, p.lcdOff = s.VBlankFired, s.LCDOff
	p.frame.setBytes(s.Frame)
	return nil
}
