package z80

// Step fetches, decodes and fully executes exactly one architectural
// instruction, including the whole body of any prefixed form, then polls
// for a pending interrupt. It returns the T-states the instruction (plus
// any interrupt acceptance) took. The decode structure — split the opcode
// byte into (x, y, z, p, q) fields rather than enumerating 256 cases by
// hand — is the standard decomposition of the Z80 instruction set and is
// the computed-dispatch shape the design notes call for.
func (c *CPU) Step() (int, error) {
	if c.Halted {
		c.bumpR()
		return 4 + c.pollInterrupts(), nil
	}

	c.curIndex = idxNone
	c.PrevPC = c.PC
	op := c.fetch8()
	c.bumpR()

	cycles, err := c.dispatch(op)
	if err != nil {
		return cycles, err
	}

	cycles += c.pollInterrupts()
	return cycles, nil
}

func (c *CPU) dispatch(op uint8) (int, error) {
	switch op {
	case 0xCB:
		opcode := c.fetch8()
		c.bumpR()
		return c.execCB(opcode)
	case 0xED:
		opcode := c.fetch8()
		c.bumpR()
		return c.execED(opcode)
	case 0xDD:
		return c.execIndexed(idxIX)
	case 0xFD:
		return c.execIndexed(idxIY)
	default:
		return c.execBase(op)
	}
}

// execIndexed handles the DD/FD planes: every following byte is decoded
// exactly as the base plane does, except that HL/H/L resolve to IX/IY and
// their halves, and (HL) resolves to (IX+d)/(IY+d). An opcode byte of 0xCB
// instead enters the DDCB/FDCB plane. A DD or FD byte followed by another
// DD/FD byte is discarded and costs 4 T-states. The prefix's 4 T-states are
// otherwise charged only by handlers that go through regCost/idxCost or
// have their own indexed timing; opcodes that never touch HL (RST, CALL,
// JP nn, RET, EX DE,HL, EXX, DI/EI and the like) return their unprefixed
// timing, so a stray prefix before them adds no T-states.
func (c *CPU) execIndexed(mode idxMode) (int, error) {
	c.curIndex = mode
	opcode := c.fetch8()
	c.bumpR()
	if opcode == 0xCB {
		return c.execIndexedCB(mode)
	}
	if opcode == 0xDD || opcode == 0xFD {
		// Re-prefixing: the earlier prefix is simply discarded.
		var cycles int
		var err error
		if opcode == 0xDD {
			cycles, err = c.execIndexed(idxIX)
		} else {
			cycles, err = c.execIndexed(idxIY)
		}
		return cycles + 4, err
	}
	return c.execBase(opcode)
}

func (c *CPU) execBase(op uint8) (int, error) {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return c.execX0(y, z, p, q)
	case 1:
		return c.execX1(y, z)
	case 2:
		return c.execAluDispatch(y, reg8(z))
	default:
		return c.execX3(y, z, p, q)
	}
}

func (c *CPU) condTrue(y uint8) bool {
	switch y {
	case 0:
		return c.F&FlagZ == 0
	case 1:
		return c.F&FlagZ != 0
	case 2:
		return c.F&FlagC == 0
	case 3:
		return c.F&FlagC != 0
	case 4:
		return c.F&FlagP == 0
	case 5:
		return c.F&FlagP != 0
	case 6:
		return c.F&FlagS == 0
	default:
		return c.F&FlagS != 0
	}
}

func toPair(p uint8) regPair   { return regPair(p) }
func toPair2(p uint8) regPair2 { return regPair2(p) }

// execX0 covers the x=0 quadrant: relative jumps, 16-bit immediate loads,
// indirect accumulator loads, INC/DEC rp, INC/DEC/LD r,n and the
// accumulator/flag single-byte ops.
func (c *CPU) execX0(y, z, p, q uint8) (int, error) {
	switch z {
	case 0:
		switch {
		case y == 0: // NOP
			return c.regCost(4), nil
		case y == 1: // EX AF,AF'
			c.A, c.A2 = c.A2, c.A
			c.F, c.F2 = c.F2, c.F
			return 4, nil
		case y == 2: // DJNZ d
			d := int8(c.fetch8())
			c.B--
			if c.B != 0 {
				c.PC = uint16(int32(c.PC) + int32(d))
				return 13, nil
			}
			return 8, nil
		case y == 3: // JR d
			d := int8(c.fetch8())
			c.PC = uint16(int32(c.PC) + int32(d))
			return 12, nil
		default: // JR cc,d
			d := int8(c.fetch8())
			if c.condTrue(y - 4) {
				c.PC = uint16(int32(c.PC) + int32(d))
				return 12, nil
			}
			return 7, nil
		}
	case 1:
		if q == 0 { // LD rp,nn
			c.setPair(toPair(p), c.fetch16())
			return c.regCost(10), nil
		}
		// ADD HL,rp
		c.execAddHL(c.getPair(toPair(p)))
		return c.regCost(11), nil
	case 2:
		return c.execIndirectAccum(p, q)
	case 3:
		if q == 0 {
			c.setPair(toPair(p), c.getPair(toPair(p))+1)
		} else {
			c.setPair(toPair(p), c.getPair(toPair(p))-1)
		}
		return c.regCost(6), nil
	case 4: // INC r[y]
		return c.execIncDecReg(reg8(y), false)
	case 5: // DEC r[y]
		return c.execIncDecReg(reg8(y), true)
	case 6: // LD r[y],n
		return c.execLdRegImm(reg8(y))
	default: // z==7: accumulator/flag ops
		switch y {
		case 0:
			c.execRlca()
		case 1:
			c.execRrca()
		case 2:
			c.execRla()
		case 3:
			c.execRra()
		case 4:
			c.execDaa()
		case 5:
			c.execCpl()
		case 6:
			c.execScf()
		case 7:
			c.execCcf()
		}
		return c.regCost(4), nil
	}
}

func (c *CPU) execIndirectAccum(p, q uint8) (int, error) {
	if q == 0 {
		switch p {
		case 0:
			c.Mem.Write(c.BC(), c.A)
			return 7, nil
		case 1:
			c.Mem.Write(c.DE(), c.A)
			return 7, nil
		case 2:
			addr := c.fetch16()
			c.Mem.Write16(addr, c.hlLike())
			return c.regCost(16), nil
		default:
			addr := c.fetch16()
			c.Mem.Write(addr, c.A)
			return 13, nil
		}
	}
	switch p {
	case 0:
		c.A = c.Mem.Read(c.BC())
		return 7, nil
	case 1:
		c.A = c.Mem.Read(c.DE())
		return 7, nil
	case 2:
		addr := c.fetch16()
		c.setHLLike(c.Mem.Read16(addr))
		return c.regCost(16), nil
	default:
		addr := c.fetch16()
		c.A = c.Mem.Read(addr)
		return 13, nil
	}
}

func (c *CPU) execIncDecReg(r reg8, dec bool) (int, error) {
	if r.usesMemory() {
		addr := c.effectiveAddr()
		v := c.getReg8(r, addr)
		if dec {
			v = c.execDec(v)
		} else {
			v = c.execInc(v)
		}
		c.setReg8(r, addr, v)
		return c.idxCost(11, 23), nil
	}
	v := c.getReg8(r, 0)
	if dec {
		v = c.execDec(v)
	} else {
		v = c.execInc(v)
	}
	c.setReg8(r, 0, v)
	return c.regCost(4), nil
}

func (c *CPU) execLdRegImm(r reg8) (int, error) {
	if r.usesMemory() {
		addr := c.effectiveAddr()
		n := c.fetch8()
		c.setReg8(r, addr, n)
		return c.idxCost(10, 19), nil
	}
	n := c.fetch8()
	c.setReg8(r, 0, n)
	return c.regCost(7), nil
}

// execX1 covers LD r,r' and HALT (the one operand combination in that
// 64-entry block with no meaning as a load). The memory-operand forms use
// getReg8Plain/setReg8Plain for the non-memory side rather than getReg8/
// setReg8: LD (IX+d),H and LD H,(IX+d) address plain H, not IXH, since the
// displaced address already consumes the instruction's one index reference.
func (c *CPU) execX1(y, z uint8) (int, error) {
	dst, src := reg8(y), reg8(z)
	if dst == regHLInd && src == regHLInd {
		c.Halted = true
		return 4, nil
	}
	if !dst.usesMemory() && !src.usesMemory() {
		c.setReg8(dst, 0, c.getReg8(src, 0))
		return c.regCost(4), nil
	}
	addr := c.effectiveAddr()
	if dst.usesMemory() {
		c.Mem.Write(addr, c.getReg8Plain(src))
	} else {
		c.setReg8Plain(dst, c.Mem.Read(addr))
	}
	return c.idxCost(7, 19), nil
}

func (c *CPU) execAluDispatch(y uint8, z reg8) (int, error) {
	var addr uint16
	if z.usesMemory() {
		addr = c.effectiveAddr()
	}
	val := c.getReg8(z, addr)
	switch y {
	case 0:
		c.execAdd(val, false)
	case 1:
		c.execAdd(val, true)
	case 2:
		c.execSub(val, false)
	case 3:
		c.execSub(val, true)
	case 4:
		c.execAnd(val)
	case 5:
		c.execXor(val)
	case 6:
		c.execOr(val)
	default:
		c.execCp(val)
	}
	if z.usesMemory() {
		return c.idxCost(7, 19), nil
	}
	return c.regCost(4), nil
}

// execX3 covers RET/JP/CALL (conditional and not), stack ops, the
// register-exchange/special group and RST.
func (c *CPU) execX3(y, z, p, q uint8) (int, error) {
	switch z {
	case 0: // RET cc
		if c.condTrue(y) {
			c.PC = c.pop16()
			return 11, nil
		}
		return 5, nil
	case 1:
		if q == 0 {
			c.setPair2(toPair2(p), c.pop16())
			return c.regCost(10), nil
		}
		switch p {
		case 0: // RET
			c.PC = c.pop16()
			return 10, nil
		case 1: // EXX
			c.B, c.B2 = c.B2, c.B
			c.C, c.C2 = c.C2, c.C
			c.D, c.D2 = c.D2, c.D
			c.E, c.E2 = c.E2, c.E
			c.H, c.H2 = c.H2, c.H
			c.L, c.L2 = c.L2, c.L
			return 4, nil
		case 2: // JP (HL)
			c.PC = c.hlLike()
			return c.regCost(4), nil
		default: // LD SP,HL
			c.SP = c.hlLike()
			return c.regCost(6), nil
		}
	case 2: // JP cc,nn
		addr := c.fetch16()
		if c.condTrue(y) {
			c.PC = addr
		}
		return 10, nil
	case 3:
		switch y {
		case 0: // JP nn
			c.PC = c.fetch16()
			return 10, nil
		case 1:
			// 0xCB handled before reaching execBase.
			return 0, c.trapUnimplemented(c.PrevPC, []uint8{0xCB}, "CB prefix reached execX3")
		case 2: // OUT (n),A
			n := c.fetch8()
			c.PortAddr = uint16(c.A)<<8 | uint16(n)
			c.PortValue = c.A
			c.PortInput = false
			return 11, nil
		case 3: // IN A,(n)
			n := c.fetch8()
			c.PortAddr = uint16(c.A)<<8 | uint16(n)
			c.PortInput = true
			c.A = c.PortValue
			return 11, nil
		case 4: // EX (SP),HL
			v := c.Mem.Read16(c.SP)
			c.Mem.Write16(c.SP, c.hlLike())
			c.setHLLike(v)
			return c.idxCost(19, 23), nil
		case 5: // EX DE,HL
			c.D, c.H = c.H, c.D
			c.E, c.L = c.L, c.E
			return 4, nil
		case 6: // DI
			c.IFF1, c.IFF2 = false, false
			return 4, nil
		default: // EI
			c.IFF1, c.IFF2 = true, true
			return 4, nil
		}
	case 4: // CALL cc,nn
		addr := c.fetch16()
		if c.condTrue(y) {
			c.push16(c.PC)
			c.PC = addr
			return 17, nil
		}
		return 10, nil
	case 5:
		if q == 0 { // PUSH rp2
			c.push16(c.getPair2(toPair2(p)))
			return c.regCost(11), nil
		}
		switch p {
		case 0: // CALL nn
			addr := c.fetch16()
			c.push16(c.PC)
			c.PC = addr
			return 17, nil
		case 1:
			return 0, c.trapUnimplemented(c.PrevPC, []uint8{0xDD}, "DD prefix reached execX3")
		case 2:
			return 0, c.trapUnimplemented(c.PrevPC, []uint8{0xED}, "ED prefix reached execX3")
		default:
			return 0, c.trapUnimplemented(c.PrevPC, []uint8{0xFD}, "FD prefix reached execX3")
		}
	case 6: // ALU A,n
		return c.execAluImm(y)
	default: // RST y*8
		c.push16(c.PC)
		c.PC = uint16(y) * 8
		return 11, nil
	}
}

func (c *CPU) execAluImm(y uint8) (int, error) {
	n := c.fetch8()
	switch y {
	case 0:
		c.execAdd(n, false)
	case 1:
		c.execAdd(n, true)
	case 2:
		c.execSub(n, false)
	case 3:
		c.execSub(n, true)
	case 4:
		c.execAnd(n)
	case 5:
		c.execXor(n)
	case 6:
		c.execOr(n)
	default:
		c.execCp(n)
	}
	return 7, nil
}
