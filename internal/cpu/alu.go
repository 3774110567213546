package cpu

// The 8-bit helpers return the result and the four flags, all derived from
// the operands actually used.

func add8(a, b byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	return res, res == 0, false, (a&0x0F)+(b&0x0F) > 0x0F, r > 0xFF
}

func adc8(a, b, carryIn byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b) + uint16(carryIn)
	res = byte(r)
	return res, res == 0, false, (a&0x0F)+(b&0x0F)+carryIn > 0x0F, r > 0xFF
}

func sub8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a - b
	return res, res == 0, true, a&0x0F < b&0x0F, a < b
}

func sbc8(a, b, carryIn byte) (res byte, z, n, h, cy bool) {
	r := int16(a) - int16(b) - int16(carryIn)
	res = byte(r)
	return res, res == 0, true, int16(a&0x0F)-int16(b&0x0F)-int16(carryIn) < 0, r < 0
}

func and8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a & b
	return res, res == 0, false, true, false
}

func xor8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a ^ b
	return res, res == 0, false, false, false
}

func or8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a | b
	return res, res == 0, false, false, false
}

// alu applies operation kind (ADD ADC SUB SBC AND XOR OR CP) to A and v.
func (c *CPU) alu(kind uint8, v byte) {
	a := c.regs.A
	var (
		res         byte
		z, n, h, cy bool
	)
	switch kind {
	case aluADD:
		res, z, n, h, cy = add8(a, v)
	case aluADC:
		res, z, n, h, cy = adc8(a, v, c.regs.carryBit())
	case aluSUB, aluCP:
		res, z, n, h, cy = sub8(a, v)
	case aluSBC:
		res, z, n, h, cy = sbc8(a, v, c.regs.carryBit())
	case aluAND:
		res, z, n, h, cy = and8(a, v)
	case aluXOR:
		res, z, n, h, cy = xor8(a, v)
	case aluOR:
		res, z, n, h, cy = or8(a, v)
	}
	c.regs.setZNHC(z, n, h, cy)
	if kind != aluCP {
		c.regs.A = res
	}
}

// shift applies an extended-table rotate/shift kind and returns the result
// and the bit moved into carry.
func shift(kind uint8, v, carryIn byte) (res byte, carry bool) {
	switch kind {
	case shRLC:
		return v<<1 | v>>7, v&0x80 != 0
	case shRRC:
		return v>>1 | v<<7, v&0x01 != 0
	case shRL:
		return v<<1 | carryIn, v&0x80 != 0
	case shRR:
		return v>>1 | carryIn<<7, v&0x01 != 0
	case shSLA:
		return v << 1, v&0x80 != 0
	case shSRA:
		return v>>1 | v&0x80, v&0x01 != 0
	case shSWAP:
		return v<<4 | v>>4, false
	case shSRL:
		return v >> 1, v&0x01 != 0
	}
	return v, false
}

// addSP computes SP plus a signed offset with H and C taken from the low byte.
func (c *CPU) addSP(imm uint16) uint16 {
	sp := c.sp
	u := byte(imm)
	h := (sp&0x0F)+uint16(u&0x0F) > 0x0F
	cy := (sp&0xFF)+uint16(u) > 0xFF
	c.regs.setZNHC(false, false, h, cy)
	return sp + uint16(int16(int8(u)))
}

func (c *CPU) daa() {
	a := c.regs.A
	cy := c.regs.Flag(FlagC)
	if !c.regs.Flag(FlagN) {
		if cy || a > 0x99 {
			a += 0x60
			cy = true
		}
		if c.regs.Flag(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if cy {
			a -= 0x60
		}
		if c.regs.Flag(FlagH) {
			a -= 0x06
		}
	}
	c.regs.A = a
	c.regs.setZNHC(a == 0, c.regs.Flag(FlagN), false, cy)
}
