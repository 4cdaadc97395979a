package z80

// execCB handles the unprefixed CB plane: x=0 rotate/shift, x=1 BIT, x=2
// RES, x=3 SET, all keyed by the same r[z] register table the base plane
// uses, with z=6 addressing (HL).
func (c *CPU) execCB(op uint8) (int, error) {
	x := op >> 6
	y := (op >> 3) & 7
	z := reg8(op & 7)

	var addr uint16
	if z.usesMemory() {
		addr = c.HL()
	}
	val := c.getReg8(z, addr)

	switch x {
	case 0:
		result := c.shift(y, val)
		c.setReg8(z, addr, result)
		if z.usesMemory() {
			return 15, nil
		}
		return 8, nil
	case 1:
		c.opBit(y, val)
		if z.usesMemory() {
			return 12, nil
		}
		return 8, nil
	case 2:
		result := opRes(y, val)
		c.setReg8(z, addr, result)
		if z.usesMemory() {
			return 15, nil
		}
		return 8, nil
	default:
		result := opSet(y, val)
		c.setReg8(z, addr, result)
		if z.usesMemory() {
			return 15, nil
		}
		return 8, nil
	}
}

func (c *CPU) shift(y uint8, val uint8) uint8 {
	switch y {
	case 0:
		return c.opRLC(val)
	case 1:
		return c.opRRC(val)
	case 2:
		return c.opRL(val)
	case 3:
		return c.opRR(val)
	case 4:
		return c.opSLA(val)
	case 5:
		return c.opSRA(val)
	case 6:
		return c.opSLL(val)
	default:
		return c.opSRL(val)
	}
}

// execIndexedCB handles DDCB/FDCB: the displacement byte always precedes
// the opcode byte, the operand is always (IX+d)/(IY+d) regardless of the
// opcode's low 3 bits, and an undocumented "also store to register z"
// copy happens for every family except BIT. Effective address is resolved
// exactly once, matching the DEC (IX+d) design decision.
func (c *CPU) execIndexedCB(mode idxMode) (int, error) {
	d := int8(c.fetch8())
	op := c.fetch8()

	var base uint16
	if mode == idxIX {
		base = c.IX
	} else {
		base = c.IY
	}
	addr := uint16(int32(base) + int32(d))

	x := op >> 6
	y := (op >> 3) & 7
	z := reg8(op & 7)

	val := c.Mem.Read(addr)

	switch x {
	case 1:
		c.opBit(y, val)
		return 20, nil
	default:
		var result uint8
		switch x {
		case 0:
			result = c.shift(y, val)
		case 2:
			result = opRes(y, val)
		default:
			result = opSet(y, val)
		}
		c.Mem.Write(addr, result)
		if z != regHLInd {
			// The undocumented copy always targets the plain register,
			// never IXH/IXL/IYH/IYL, even though curIndex is still set here.
			c.setReg8Plain(z, result)
		}
		return 23, nil
	}
}
