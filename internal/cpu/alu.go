package cpu

// 8-bit arithmetic. Each helper returns the result and the flags it produces.

func add8(a, b byte, carryIn bool) (byte, Flags) {
	ci := uint16(0)
	if carryIn {
		ci = 1
	}
	r := uint16(a) + uint16(b) + ci
	res := byte(r)
	h := uint16(a&0x0F)+uint16(b&0x0F)+ci > 0x0F
	return res, makeFlags(res == 0, false, h, r > 0xFF)
}

func sub8(a, b byte, carryIn bool) (byte, Flags) {
	ci := 0
	if carryIn {
		ci = 1
	}
	r := int(a) - int(b) - ci
	res := byte(r)
	h := int(a&0x0F)-int(b&0x0F)-ci < 0
	return res, makeFlags(res == 0, true, h, r < 0)
}

// alu applies operation op (ADD ADC SUB SBC AND XOR OR CP) to A and v.
func (c *CPU) alu(op byte, v byte) {
	var res byte
	switch op {
	case 0: // ADD
		res, c.F = add8(c.A, v, false)
	case 1: // ADC
		res, c.F = add8(c.A, v, c.F.C())
	case 2: // SUB
		res, c.F = sub8(c.A, v, false)
	case 3: // SBC
		res, c.F = sub8(c.A, v, c.F.C())
	case 4: // AND
		res = c.A & v
		c.F = makeFlags(res == 0, false, true, false)
	case 5: // XOR
		res = c.A ^ v
		c.F = makeFlags(res == 0, false, false, false)
	case 6: // OR
		res = c.A | v
		c.F = makeFlags(res == 0, false, false, false)
	case 7: // CP
		_, c.F = sub8(c.A, v, false)
		return
	}
	c.A = res
}

func (c *CPU) inc8(v byte) byte {
	res := v + 1
	c.F = makeFlags(res == 0, false, v&0x0F == 0x0F, c.F.C())
	return res
}

func (c *CPU) dec8(v byte) byte {
	res := v - 1
	c.F = makeFlags(res == 0, true, v&0x0F == 0, c.F.C())
	return res
}

func (c *CPU) addHL(v uint16) {
	hl := c.HL()
	r := uint32(hl) + uint32(v)
	c.F = makeFlags(c.F.Z(), false, hl&0x0FFF+v&0x0FFF > 0x0FFF, r > 0xFFFF)
	c.SetHL(uint16(r))
}

// addSPe8 computes SP plus a signed immediate. H and C come from the
// unsigned low-byte addition, Z and N are cleared.
func (c *CPU) addSPe8() uint16 {
	e := c.fetch8()
	sp := c.SP
	c.F = makeFlags(false, false, sp&0x0F+uint16(e&0x0F) > 0x0F, sp&0xFF+uint16(e) > 0xFF)
	return uint16(int(sp) + int(int8(e)))
}

// daa adjusts A to packed BCD after an addition or subtraction.
func (c *CPU) daa() {
	a := c.A
	carry := c.F.C()
	if !c.F.N() {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.F.H() || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.F.H() {
			a -= 0x06
		}
	}
	c.A = a
	c.F = makeFlags(a == 0, c.F.N(), false, carry)
}

// Rotates and shifts shared by the CB table and the A-only forms.

func (c *CPU) rotate(kind byte, v byte) byte {
	var res byte
	var out bool
	switch kind {
	case 0: // RLC
		res, out = v<<1|v>>7, v&0x80 != 0
	case 1: // RRC
		res, out = v>>1|v<<7, v&0x01 != 0
	case 2: // RL
		res, out = v<<1, v&0x80 != 0
		if c.F.C() {
			res |= 0x01
		}
	case 3: // RR
		res, out = v>>1, v&0x01 != 0
		if c.F.C() {
			res |= 0x80
		}
	case 4: // SLA
		res, out = v<<1, v&0x80 != 0
	case 5: // SRA
		res, out = v>>1|v&0x80, v&0x01 != 0
	case 6: // SWAP
		res = v<<4 | v>>4
	case 7: // SRL
		res, out = v>>1, v&0x01 != 0
	}
	c.F = makeFlags(res == 0, false, false, out)
	return res
}
