// Package emu binds one cartridge, bus, CPU, PPU and timer into a session
// and schedules them frame by frame.
package emu

import (
	"errors"
	"fmt"
	"io"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/timer"
)

// CyclesPerFrame is one full LCD refresh: 154 lines of 456 cycles.
const CyclesPerFrame = ppu.FrameCycles

const bootROMSize = 0x100

var (
	ErrBootROM = errors.New("emu: boot ROM must be 256 bytes")
	ErrNoRAM   = errors.New("emu: cartridge has no external RAM")
)

// Session is one running machine. Sessions share nothing, so any number can
// run side by side; a single Session is not safe for concurrent use.
type Session struct {
	header *cart.Header
	cart   cart.Cartridge
	bus    *bus.Bus
	cpu    *cpu.CPU
	ppu    *ppu.PPU
	timer  *timer.Timer

	rom     []byte
	boot    []byte
	opts    []Option
	serial  io.Writer
	trace   io.Writer
	palette ppu.Palette
	fb      []byte
}

// New parses rom and builds a session. With a boot ROM execution starts at
// 0x0000 under the overlay; without one the session starts in the
// post-boot state at 0x0100.
func New(rom, boot []byte, opts ...Option) (*Session, error) {
	c, h, err := cart.New(rom)
	if err != nil {
		return nil, err
	}
	if len(boot) != 0 && len(boot) != bootROMSize {
		return nil, fmt.Errorf("%w: got %d", ErrBootROM, len(boot))
	}

	s := &Session{
		header:  h,
		cart:    c,
		rom:     rom,
		opts:    opts,
		palette: ppu.GreyPalette,
		fb:      make([]byte, ppu.Width*ppu.Height*4),
	}
	s.bus = bus.New(c)
	s.cpu = cpu.New(s.bus)
	s.ppu = ppu.New(s.bus)
	s.timer = timer.New(s.bus)
	for _, o := range opts {
		o(s)
	}
	s.bus.SetSerial(s.serial)

	if len(boot) > 0 {
		s.boot = append([]byte(nil), boot...)
		s.ResetBoot()
	} else {
		s.Reset()
	}
	return s, nil
}

// Reset puts the CPU and I/O registers into the state the boot ROM hands
// over with, unmaps the overlay and restarts the PPU and divider.
func (s *Session) Reset() {
	s.cpu.ResetPostBoot()
	s.bus.DisableBoot()
	s.ppu.Reset()
	s.timer.Reset()

	// Reads of JOYP, SC, TAC, IF and STAT add their fixed bits, giving
	// CF, 7E, F8, E1 and 86. The STAT mode bits follow the PPU, which
	// restarts in OAM scan, rather than the VBlank a real boot ROM exits in.
	s.bus.Regs = bus.Registers{
		DIV:  0xAB,
		IF:   0x01,
		LCDC: 0x91,
		STAT: 0x04 | byte(s.ppu.Mode()),
		BGP:  0xFC,
		OBP0: 0xFF,
		OBP1: 0xFF,
	}
}

// ResetBoot restarts from 0x0000 with the boot overlay mapped. The
// overlay is one-way: sessions built without a boot ROM, or whose overlay
// has already been unmapped, fall back to Reset. Use Restart for a fresh
// power-on.
func (s *Session) ResetBoot() {
	if len(s.boot) == 0 || !s.bus.SetBootROM(s.boot) {
		s.Reset()
		return
	}
	s.bus.Regs = bus.Registers{}
	s.cpu.ResetBoot()
	s.ppu.Reset()
	s.timer.Reset()
}

// Restart powers the machine off and on again: a new session from the same
// ROM, boot ROM and options, keeping external RAM and the palette. It is
// the way back under the boot overlay once 0xFF50 has been written.
func (s *Session) Restart() (*Session, error) {
	n, err := New(s.rom, s.boot, s.opts...)
	if err != nil {
		return nil, err
	}
	if bb, ok := s.cart.(cart.BatteryBacked); ok {
		if ram := bb.SaveRAM(); ram != nil {
			if err := n.cart.(cart.BatteryBacked).LoadRAM(ram); err != nil {
				return nil, err
			}
		}
	}
	n.palette = s.palette
	return n, nil
}

// Step runs one instruction, or one interrupt dispatch, and advances the
// PPU and divider by the cycles it took.
func (s *Session) Step() int {
	if s.trace != nil && !s.cpu.Halted() && s.cpu.Fault() == nil {
		s.traceLine()
	}
	cycles := s.cpu.Step()
	s.ppu.Advance(cycles)
	s.timer.Advance(cycles)
	return cycles
}

// AdvanceFrame steps until at least CyclesPerFrame cycles have elapsed and
// returns the number actually consumed. Overshoot is not carried over.
func (s *Session) AdvanceFrame() int {
	total := 0
	for total < CyclesPerFrame {
		total += s.Step()
	}
	return total
}

func (s *Session) traceLine() {
	pc := s.cpu.PC
	fmt.Fprintf(s.trace, "%s PCMEM:%02X,%02X,%02X,%02X\n", s.cpu,
		s.bus.Read(pc), s.bus.Read(pc+1), s.bus.Read(pc+2), s.bus.Read(pc+3))
}

func (s *Session) CPU() *cpu.CPU            { return s.cpu }
func (s *Session) Bus() *bus.Bus            { return s.bus }
func (s *Session) PPU() *ppu.PPU            { return s.ppu }
func (s *Session) Header() *cart.Header     { return s.header }
func (s *Session) Frame() *ppu.Frame        { return s.ppu.Frame() }
func (s *Session) Palette() ppu.Palette     { return s.palette }
func (s *Session) SetPalette(p ppu.Palette) { s.palette = p }

// Err reports the CPU fault that stopped this session, if any.
func (s *Session) Err() error {
	if f := s.cpu.Fault(); f != nil {
		return f
	}
	return nil
}

// Framebuffer renders the current frame as 160x144 RGBA. The slice is
// reused across calls.
func (s *Session) Framebuffer() []byte {
	s.ppu.Frame().WriteRGBA(s.fb, s.palette)
	return s.fb
}

// Buttons returns the raw active-low button byte.
func (s *Session) Buttons() byte          { return s.bus.Buttons() }
func (s *Session) SetButtons(raw byte)    { s.bus.SetButtons(raw) }
func (s *Session) Press(btn bus.Button)   { s.bus.Press(btn) }
func (s *Session) Release(btn bus.Button) { s.bus.Release(btn) }
