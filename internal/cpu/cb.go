package cpu

// executeCB runs one 0xCB-prefixed opcode. Register forms take 8 cycles,
// (HL) forms 16, except BIT n,(HL) which only reads and takes 12.
func (c *CPU) executeCB(op byte) int {
	r := op & 7
	n := op >> 3 & 7
	v := c.reg(r)

	cycles := 8
	if r == 6 {
		cycles = 16
	}

	switch op >> 6 {
	case 0: // RLC RRC RL RR SLA SRA SWAP SRL
		c.setReg(r, c.rotate(n, v))
	case 1: // BIT
		c.F = makeFlags(v&(1<<n) == 0, false, true, c.F.C())
		if r == 6 {
			cycles = 12
		}
	case 2: // RES
		c.setReg(r, v&^(1<<n))
	case 3: // SET
		c.setReg(r, v|1<<n)
	}
	return cycles
}
