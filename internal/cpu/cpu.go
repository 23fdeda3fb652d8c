package cpu

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Memory is the address space the CPU executes against. The bus satisfies
// it, and so does a flat 64KB array for instruction-level tests.
type Memory interface {
	Read(addr uint16) byte
	Write(addr uint16, v byte)
}

const (
	addrIF = 0xFF0F
	addrIE = 0xFFFF
)

// Fault records an opcode with no defined behaviour. A faulted CPU stops
// executing but keeps every register readable.
type Fault struct {
	Opcode byte
	PC     uint16
}

func (f *Fault) Error() string {
	return fmt.Sprintf("cpu: illegal opcode 0x%02X at 0x%04X", f.Opcode, f.PC)
}

type CPU struct {
	A, B, C, D, E, H, L byte
	F                   Flags
	SP, PC              uint16
	IME                 bool

	halted    bool
	eiPending bool
	fault     *Fault

	mem Memory
}

func New(mem Memory) *CPU {
	return &CPU{mem: mem}
}

// ResetPostBoot loads the register values the boot ROM leaves behind.
func (c *CPU) ResetPostBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.IME = false
	c.halted = false
	c.eiPending = false
	c.fault = nil
}

// ResetBoot clears everything so execution starts at 0x0000 in the boot ROM.
func (c *CPU) ResetBoot() {
	mem := c.mem
	*c = CPU{mem: mem}
}

func (c *CPU) Halted() bool { return c.halted }

// Fault returns the recorded illegal-opcode fault, or nil.
func (c *CPU) Fault() *Fault { return c.fault }

// Step executes one instruction, or dispatches one interrupt, and returns
// the number of clock cycles it took.
func (c *CPU) Step() int {
	if c.fault != nil {
		return 4
	}
	if cycles := c.serviceInterrupt(); cycles > 0 {
		return cycles
	}
	if c.halted {
		return 4
	}

	// EI arms IME only once the instruction after it has run.
	enable := c.eiPending
	cycles := c.execute(c.fetch8())
	if enable && c.eiPending {
		c.IME = true
		c.eiPending = false
	}
	return cycles
}

func (c *CPU) serviceInterrupt() int {
	pending := c.mem.Read(addrIF) & c.mem.Read(addrIE) & 0x1F
	if pending == 0 {
		return 0
	}
	c.halted = false
	if !c.IME {
		return 0
	}
	var bit uint
	for pending&(1<<bit) == 0 {
		bit++
	}
	c.IME = false
	c.mem.Write(addrIF, c.mem.Read(addrIF)&^(1<<bit))
	c.push16(c.PC)
	c.PC = 0x0040 + uint16(bit)*8
	return 20
}

// String renders the register file in the one-line trace format.
func (c *CPU) String() string {
	return fmt.Sprintf("A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X",
		c.A, byte(c.F), c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.PC)
}

// ---- memory helpers ----

func (c *CPU) read8(addr uint16) byte     { return c.mem.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.mem.Write(addr, v) }

func (c *CPU) fetch8() byte {
	v := c.mem.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) write16(addr, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) push16(v uint16) {
	c.SP--
	c.write8(c.SP, byte(v>>8))
	c.SP--
	c.write8(c.SP, byte(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.read8(c.SP)
	c.SP++
	hi := c.read8(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// ---- register pairs ----

func (c *CPU) AF() uint16 { return uint16(c.A)<<8 | uint16(c.F) }
func (c *CPU) BC() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) DE() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) HL() uint16 { return uint16(c.H)<<8 | uint16(c.L) }

func (c *CPU) SetAF(v uint16) { c.A, c.F = byte(v>>8), Flags(v)&0xF0 }
func (c *CPU) SetBC(v uint16) { c.B, c.C = byte(v>>8), byte(v) }
func (c *CPU) SetDE(v uint16) { c.D, c.E = byte(v>>8), byte(v) }
func (c *CPU) SetHL(v uint16) { c.H, c.L = byte(v>>8), byte(v) }

// reg and setReg decode the 3-bit operand field: B C D E H L (HL) A.
func (c *CPU) reg(i byte) byte {
	switch i {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.HL())
	default:
		return c.A
	}
}

func (c *CPU) setReg(i byte, v byte) {
	switch i {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.HL(), v)
	default:
		c.A = v
	}
}

// rr and setRR decode the 2-bit pair field used by LD/INC/DEC/ADD: BC DE HL SP.
func (c *CPU) rr(i byte) uint16 {
	switch i {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU) setRR(i byte, v uint16) {
	switch i {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

// cond decodes NZ Z NC C.
func (c *CPU) cond(i byte) bool {
	switch i {
	case 0:
		return !c.F.Z()
	case 1:
		return c.F.Z()
	case 2:
		return !c.F.C()
	default:
		return c.F.C()
	}
}

// ---- snapshots ----

type cpuState struct {
	A, B, C, D, E, H, L byte
	F                   Flags
	SP, PC              uint16
	IME                 bool
	Halted              bool
	EIPending           bool
	Fault               *Fault
}

func (c *CPU) SaveState() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(cpuState{
		A: c.A, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		F: c.F, SP: c.SP, PC: c.PC, IME: c.IME,
		Halted: c.halted, EIPending: c.eiPending, Fault: c.fault,
	})
	if err != nil {
		return nil, fmt.Errorf("cpu: save state: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *CPU) LoadState(data []byte) error {
	var s cpuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("cpu: load state: %w", err)
	}
	c.A, c.B, c.C, c.D, c.E, c.H, c.L = s.A, s.B, s.C, s.D, s.E, s.H, s.L
	c.F = s.F & 0xF0
	c.SP, c.PC, c.IME = s.SP, s.PC, s.IME
	c.halted, c.eiPending, c.fault = s.Halted, s.EIPending, s.Fault
	return nil
}
