package bus

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
)

// Interrupt bits shared by IF (0xFF0F) and IE (0xFFFF), highest priority first.
const (
	IntVBlank = iota
	IntSTAT
	IntTimer
	IntSerial
	IntJoypad
)

// Registers holds the named I/O latches. The PPU and timer read and
// write these directly; the CPU sees them through Read/Write.
type Registers struct {
	JOYP, SB, SC        byte
	DIV, TIMA, TMA, TAC byte
	IF, IE              byte

	LCDC, STAT, SCY, SCX, LY, LYC byte
	DMA, BGP, OBP0, OBP1, WY, WX  byte
}

// Bus routes the 64KB address space of one session.
type Bus struct {
	Regs Registers

	cart        cart.Cartridge
	boot        []byte
	bootEnabled bool
	bootDone    bool

	vram [0x2000]byte
	wram [0x2000]byte
	oam  [0xA0]byte
	hram [0x7F]byte

	buttons byte
	serial  io.Writer
}

func New(c cart.Cartridge) *Bus {
	return &Bus{cart: c, buttons: 0xFF}
}

// SetBootROM maps boot over 0x0000-0x00FF until 0xFF50 is written. It
// reports false, mapping nothing, once the overlay has been unmapped.
func (b *Bus) SetBootROM(boot []byte) bool {
	if b.bootDone {
		return false
	}
	b.boot = append([]byte(nil), boot...)
	b.bootEnabled = len(b.boot) > 0
	return true
}

func (b *Bus) BootEnabled() bool { return b.bootEnabled }

// BootDone reports whether the overlay was unmapped, by 0xFF50 or
// DisableBoot. It stays set for the life of the bus.
func (b *Bus) BootDone() bool { return b.bootDone }

// DisableBoot unmaps the boot overlay for good.
func (b *Bus) DisableBoot() {
	b.bootEnabled = false
	b.bootDone = true
}

// SetSerial sets where bytes shifted out through SB/SC go. nil discards them.
func (b *Bus) SetSerial(w io.Writer) { b.serial = w }

func (b *Bus) Cart() cart.Cartridge { return b.cart }

// RequestInterrupt raises bit in IF.
func (b *Bus) RequestInterrupt(bit int) {
	b.Regs.IF |= 1 << bit
}

// VRAM returns the video RAM byte at addr (0x8000-0x9FFF) without CPU side effects.
func (b *Bus) VRAM(addr uint16) byte { return b.vram[addr&0x1FFF] }

// OAM returns byte i of the sprite attribute table.
func (b *Bus) OAM(i int) byte { return b.oam[i] }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x0100 && b.bootEnabled:
		if int(addr) < len(b.boot) {
			return b.boot[addr]
		}
		return 0xFF
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr < 0xA000:
		return b.vram[addr-0x8000]
	case addr < 0xC000:
		return b.cart.Read(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00: // echo
		return b.wram[addr-0xE000]
	case addr < 0xFEA0:
		return b.oam[addr-0xFE00]
	case addr < 0xFF00:
		return 0xFF
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	default:
		return b.Regs.IE
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr < 0xA000:
		b.vram[addr-0x8000] = value
	case addr < 0xC000:
		b.cart.Write(addr, value)
	case addr < 0xE000:
		b.wram[addr-0xC000] = value
	case addr < 0xFE00:
		b.wram[addr-0xE000] = value
	case addr < 0xFEA0:
		b.oam[addr-0xFE00] = value
	case addr < 0xFF00:
	case addr < 0xFF80:
		b.writeIO(addr, value)
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value
	default:
		b.Regs.IE = value
	}
}

func (b *Bus) readIO(addr uint16) byte {
	r := &b.Regs
	switch addr {
	case 0xFF00:
		return b.joypad()
	case 0xFF01:
		return r.SB
	case 0xFF02:
		return r.SC | 0x7E
	case 0xFF04:
		return r.DIV
	case 0xFF05:
		return r.TIMA
	case 0xFF06:
		return r.TMA
	case 0xFF07:
		return r.TAC | 0xF8
	case 0xFF0F:
		return r.IF | 0xE0
	case 0xFF40:
		return r.LCDC
	case 0xFF41:
		return r.STAT | 0x80
	case 0xFF42:
		return r.SCY
	case 0xFF43:
		return r.SCX
	case 0xFF44:
		return r.LY
	case 0xFF45:
		return r.LYC
	case 0xFF46:
		return r.DMA
	case 0xFF47:
		return r.BGP
	case 0xFF48:
		return r.OBP0
	case 0xFF49:
		return r.OBP1
	case 0xFF4A:
		return r.WY
	case 0xFF4B:
		return r.WX
	}
	return 0xFF
}

func (b *Bus) writeIO(addr uint16, v byte) {
	r := &b.Regs
	switch addr {
	case 0xFF00:
		r.JOYP = v & 0x30
	case 0xFF01:
		r.SB = v
	case 0xFF02:
		r.SC = v & 0x81
		if v&0x81 == 0x81 {
			b.shiftSerial()
		}
	case 0xFF04:
		r.DIV = 0
	case 0xFF05:
		r.TIMA = v
	case 0xFF06:
		r.TMA = v
	case 0xFF07:
		r.TAC = v & 0x07
	case 0xFF0F:
		r.IF = v & 0x1F
	case 0xFF40:
		r.LCDC = v
		if v&0x80 == 0 {
			r.LY = 0
			r.STAT &^= 0x03
		}
	case 0xFF41:
		// mode and coincidence bits belong to the PPU
		r.STAT = r.STAT&0x07 | v&0x78
	case 0xFF42:
		r.SCY = v
	case 0xFF43:
		r.SCX = v
	case 0xFF44:
		// LY is read-only
	case 0xFF45:
		r.LYC = v
	case 0xFF46:
		r.DMA = v
		b.dma(v)
	case 0xFF47:
		r.BGP = v
	case 0xFF48:
		r.OBP0 = v
	case 0xFF49:
		r.OBP1 = v
	case 0xFF4A:
		r.WY = v
	case 0xFF4B:
		r.WX = v
	case 0xFF50:
		b.DisableBoot()
	}
}

// dma copies 160 bytes from value<<8 into OAM in one go.
func (b *Bus) dma(value byte) {
	src := uint16(value) << 8
	for i := range b.oam {
		b.oam[i] = b.Read(src + uint16(i))
	}
}

// shiftSerial completes a transfer instantly with no link partner attached.
func (b *Bus) shiftSerial() {
	if b.serial != nil {
		_, _ = b.serial.Write([]byte{b.Regs.SB})
	}
	b.Regs.SB = 0xFF
	b.Regs.SC &^= 0x80
	b.RequestInterrupt(IntSerial)
}
