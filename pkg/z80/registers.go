package z80

// reg8 is the 3-bit register code used throughout the base opcode layout:
// 000=B 001=C 010=D 011=E 100=H 101=L 110=(HL) 111=A.
type reg8 uint8

const (
	regB reg8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLInd
	regA
)

// regPair is the 2-bit pair code used by LD rp,nn / INC rp / DEC rp / ADD
// HL,rp: 00=BC 01=DE 10=HL 11=SP.
type regPair uint8

const (
	pairBC regPair = iota
	pairDE
	pairHL
	pairSP
)

// regPair2 is the alternate pair table PUSH/POP use in place of SP: 11=AF.
type regPair2 uint8

const (
	pair2BC regPair2 = iota
	pair2DE
	pair2HL
	pair2AF
)

func (c *CPU) BC() uint16    { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }
func (c *CPU) DE() uint16    { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }
func (c *CPU) HL() uint16    { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }
func (c *CPU) AF() uint16    { return uint16(c.A)<<8 | uint16(c.F) }
func (c *CPU) setAF(v uint16) { c.A, c.F = uint8(v>>8), uint8(v) }

// hlLike returns IX or IY when a DD/FD prefix is active for this
// instruction, else HL — the substitution the dispatcher's index planes
// perform uniformly over the base-plane decode.
func (c *CPU) hlLike() uint16 {
	switch c.curIndex {
	case idxIX:
		return c.IX
	case idxIY:
		return c.IY
	default:
		return c.HL()
	}
}

func (c *CPU) setHLLike(v uint16) {
	switch c.curIndex {
	case idxIX:
		c.IX = v
	case idxIY:
		c.IY = v
	default:
		c.setHL(v)
	}
}

func (c *CPU) getPair(p regPair) uint16 {
	switch p {
	case pairBC:
		return c.BC()
	case pairDE:
		return c.DE()
	case pairHL:
		return c.hlLike()
	default:
		return c.SP
	}
}

func (c *CPU) setPair(p regPair, v uint16) {
	switch p {
	case pairBC:
		c.setBC(v)
	case pairDE:
		c.setDE(v)
	case pairHL:
		c.setHLLike(v)
	default:
		c.SP = v
	}
}

func (c *CPU) getPair2(p regPair2) uint16 {
	switch p {
	case pair2BC:
		return c.BC()
	case pair2DE:
		return c.DE()
	case pair2HL:
		return c.hlLike()
	default:
		return c.AF()
	}
}

func (c *CPU) setPair2(p regPair2, v uint16) {
	switch p {
	case pair2BC:
		c.setBC(v)
	case pair2DE:
		c.setDE(v)
	case pair2HL:
		c.setHLLike(v)
	default:
		c.setAF(v)
	}
}

// effectiveAddr resolves the (HL)/(IX+d)/(IY+d) address for the instruction
// in flight. Under an active index mode it reads the displacement byte at
// PC (advancing PC past it) exactly once; callers must cache the result
// rather than calling this twice per instruction — this is what keeps
// DEC (IX+d) and friends from re-reading the displacement byte.
func (c *CPU) effectiveAddr() uint16 {
	switch c.curIndex {
	case idxIX:
		d := int8(c.fetch8())
		return uint16(int32(c.IX) + int32(d))
	case idxIY:
		d := int8(c.fetch8())
		return uint16(int32(c.IY) + int32(d))
	default:
		return c.HL()
	}
}

// getReg8 reads r. addr is only consulted when r is regHLInd, and must
// already reflect the active index mode (see effectiveAddr).
func (c *CPU) getReg8(r reg8, addr uint16) uint8 {
	switch r {
	case regB:
		return c.B
	case regC:
		return c.C
	case regD:
		return c.D
	case regE:
		return c.E
	case regH:
		switch c.curIndex {
		case idxIX:
			return uint8(c.IX >> 8)
		case idxIY:
			return uint8(c.IY >> 8)
		default:
			return c.H
		}
	case regL:
		switch c.curIndex {
		case idxIX:
			return uint8(c.IX)
		case idxIY:
			return uint8(c.IY)
		default:
			return c.L
		}
	case regHLInd:
		return c.Mem.Read(addr)
	default: // regA
		return c.A
	}
}

func (c *CPU) setReg8(r reg8, addr uint16, v uint8) {
	switch r {
	case regB:
		c.B = v
	case regC:
		c.C = v
	case regD:
		c.D = v
	case regE:
		c.E = v
	case regH:
		switch c.curIndex {
		case idxIX:
			c.IX = uint16(v)<<8 | (c.IX & 0x00FF)
		case idxIY:
			c.IY = uint16(v)<<8 | (c.IY & 0x00FF)
		default:
			c.H = v
		}
	case regL:
		switch c.curIndex {
		case idxIX:
			c.IX = (c.IX & 0xFF00) | uint16(v)
		case idxIY:
			c.IY = (c.IY & 0xFF00) | uint16(v)
		default:
			c.L = v
		}
	case regHLInd:
		c.Mem.Write(addr, v)
	default: // regA
		c.A = v
	}
}

// usesMemory reports whether r addresses (HL)/(IX+d)/(IY+d) rather than a
// plain register, i.e. whether effectiveAddr must be consulted for it.
func (r reg8) usesMemory() bool { return r == regHLInd }

// getReg8Plain/setReg8Plain access B,C,D,E,H,L,A ignoring any active index
// mode. Real hardware only substitutes IXH/IXL/IYH/IYL for H/L when the
// instruction has no memory operand; LD (IX+d),H and LD H,(IX+d) still read
// and write the plain H register even under a DD/FD prefix, since the
// prefix's other operand in that instruction is already spoken for by the
// displaced memory access. Used by execX1 for the mixed register/memory form
// of LD r,r'.
func (c *CPU) getReg8Plain(r reg8) uint8 {
	switch r {
	case regB:
		return c.B
	case regC:
		return c.C
	case regD:
		return c.D
	case regE:
		return c.E
	case regH:
		return c.H
	case regL:
		return c.L
	default:
		return c.A
	}
}

func (c *CPU) setReg8Plain(r reg8, v uint8) {
	switch r {
	case regB:
		c.B = v
	case regC:
		c.C = v
	case regD:
		c.D = v
	case regE:
		c.E = v
	case regH:
		c.H = v
	case regL:
		c.L = v
	default:
		c.A = v
	}
}
