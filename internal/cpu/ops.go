package cpu

// execute runs one base-table opcode and returns its cycle count.
func (c *CPU) execute(op byte) int {
	switch op {
	case 0x00: // NOP
		return 4
	case 0x10: // STOP
		c.fetch8()
		c.halted = true
		return 4
	case 0x76: // HALT
		c.halted = true
		return 4
	case 0xF3: // DI
		c.IME = false
		c.eiPending = false
		return 4
	case 0xFB: // EI
		c.eiPending = true
		return 4
	case 0xCB:
		return c.executeCB(c.fetch8())

	// LD rr,d16
	case 0x01, 0x11, 0x21, 0x31:
		c.setRR(op>>4, c.fetch16())
		return 12
	case 0x08: // LD (a16),SP
		c.write16(c.fetch16(), c.SP)
		return 20
	case 0xF9: // LD SP,HL
		c.SP = c.HL()
		return 8
	case 0xF8: // LD HL,SP+e8
		c.SetHL(c.addSPe8())
		return 12
	case 0xE8: // ADD SP,e8
		c.SP = c.addSPe8()
		return 16

	// LD (rr),A
	case 0x02:
		c.write8(c.BC(), c.A)
		return 8
	case 0x12:
		c.write8(c.DE(), c.A)
		return 8
	case 0x22: // LD (HL+),A
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl + 1)
		return 8
	case 0x32: // LD (HL-),A
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl - 1)
		return 8

	// LD A,(rr)
	case 0x0A:
		c.A = c.read8(c.BC())
		return 8
	case 0x1A:
		c.A = c.read8(c.DE())
		return 8
	case 0x2A: // LD A,(HL+)
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl + 1)
		return 8
	case 0x3A: // LD A,(HL-)
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl - 1)
		return 8

	// high page and absolute loads
	case 0xE0: // LDH (a8),A
		c.write8(0xFF00|uint16(c.fetch8()), c.A)
		return 12
	case 0xF0: // LDH A,(a8)
		c.A = c.read8(0xFF00 | uint16(c.fetch8()))
		return 12
	case 0xE2: // LD (C),A
		c.write8(0xFF00|uint16(c.C), c.A)
		return 8
	case 0xF2: // LD A,(C)
		c.A = c.read8(0xFF00 | uint16(c.C))
		return 8
	case 0xEA: // LD (a16),A
		c.write8(c.fetch16(), c.A)
		return 16
	case 0xFA: // LD A,(a16)
		c.A = c.read8(c.fetch16())
		return 16

	// LD r,d8
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E:
		r := op >> 3 & 7
		c.setReg(r, c.fetch8())
		if r == 6 {
			return 12
		}
		return 8

	// INC r / DEC r
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C:
		r := op >> 3 & 7
		c.setReg(r, c.inc8(c.reg(r)))
		if r == 6 {
			return 12
		}
		return 4
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D:
		r := op >> 3 & 7
		c.setReg(r, c.dec8(c.reg(r)))
		if r == 6 {
			return 12
		}
		return 4

	// 16-bit arithmetic, flags untouched except ADD HL
	case 0x03, 0x13, 0x23, 0x33:
		c.setRR(op>>4, c.rr(op>>4)+1)
		return 8
	case 0x0B, 0x1B, 0x2B, 0x3B:
		c.setRR(op>>4, c.rr(op>>4)-1)
		return 8
	case 0x09, 0x19, 0x29, 0x39: // ADD HL,rr
		c.addHL(c.rr(op >> 4))
		return 8

	// accumulator rotates always clear Z
	case 0x07: // RLCA
		c.A = c.rotate(0, c.A)
		c.F.Set(FlagZ, false)
		return 4
	case 0x0F: // RRCA
		c.A = c.rotate(1, c.A)
		c.F.Set(FlagZ, false)
		return 4
	case 0x17: // RLA
		c.A = c.rotate(2, c.A)
		c.F.Set(FlagZ, false)
		return 4
	case 0x1F: // RRA
		c.A = c.rotate(3, c.A)
		c.F.Set(FlagZ, false)
		return 4

	case 0x27: // DAA
		c.daa()
		return 4
	case 0x2F: // CPL
		c.A = ^c.A
		c.F |= FlagN | FlagH
		return 4
	case 0x37: // SCF
		c.F = makeFlags(c.F.Z(), false, false, true)
		return 4
	case 0x3F: // CCF
		c.F = makeFlags(c.F.Z(), false, false, !c.F.C())
		return 4

	// jumps
	case 0x18: // JR e8
		e := int8(c.fetch8())
		c.PC = uint16(int(c.PC) + int(e))
		return 12
	case 0x20, 0x28, 0x30, 0x38: // JR cc,e8
		e := int8(c.fetch8())
		if !c.cond(op >> 3 & 3) {
			return 8
		}
		c.PC = uint16(int(c.PC) + int(e))
		return 12
	case 0xC3: // JP a16
		c.PC = c.fetch16()
		return 16
	case 0xC2, 0xCA, 0xD2, 0xDA: // JP cc,a16
		addr := c.fetch16()
		if !c.cond(op >> 3 & 3) {
			return 12
		}
		c.PC = addr
		return 16
	case 0xE9: // JP (HL)
		c.PC = c.HL()
		return 4

	// calls and returns
	case 0xCD: // CALL a16
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xC4, 0xCC, 0xD4, 0xDC: // CALL cc,a16
		addr := c.fetch16()
		if !c.cond(op >> 3 & 3) {
			return 12
		}
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xC9: // RET
		c.PC = c.pop16()
		return 16
	case 0xD9: // RETI
		c.PC = c.pop16()
		c.IME = true
		return 16
	case 0xC0, 0xC8, 0xD0, 0xD8: // RET cc
		if !c.cond(op >> 3 & 3) {
			return 8
		}
		c.PC = c.pop16()
		return 20
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST n
		c.push16(c.PC)
		c.PC = uint16(op & 0x38)
		return 16

	// stack
	case 0xC5, 0xD5, 0xE5: // PUSH BC/DE/HL
		c.push16(c.rr(op >> 4 & 3))
		return 16
	case 0xF5: // PUSH AF
		c.push16(c.AF())
		return 16
	case 0xC1, 0xD1, 0xE1: // POP BC/DE/HL
		c.setRR(op>>4&3, c.pop16())
		return 12
	case 0xF1: // POP AF
		c.SetAF(c.pop16())
		return 12

	// ALU A,d8
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		c.alu(op>>3&7, c.fetch8())
		return 8

	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		c.fault = &Fault{Opcode: op, PC: c.PC - 1}
		c.halted = true
		return 4
	}

	// 0x40-0xBF: LD r,r' and ALU A,r
	src := op & 7
	if op < 0x80 {
		dst := op >> 3 & 7
		c.setReg(dst, c.reg(src))
		if src == 6 || dst == 6 {
			return 8
		}
		return 4
	}
	c.alu(op>>3&7, c.reg(src))
	if src == 6 {
		return 8
	}
	return 4
}
