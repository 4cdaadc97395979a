// Package z80 implements the core of a Zilog Z80 instruction-set
// interpreter: the architectural register file, the memory/port surface,
// the fetch-decode-execute dispatcher across all seven opcode planes, and
// the interrupt acceptance state machine. The ALU flag rules are ported
// from remogatto/z80's lookup-table approach, the same lineage the teacher
// project's pkg/cpu package drew on.
package z80

// idxMode selects which 16-bit register stands in for HL while decoding a
// single instruction: plain HL, or IX/IY under a DD/FD prefix.
type idxMode uint8

const (
	idxNone idxMode = iota
	idxIX
	idxIY
)

// CPU holds the complete architectural state of a single Z80 core: both
// register banks, the index registers, stack/program counters, refresh and
// interrupt state, and the bus/port surface it executes against. Per
// spec, the shadow bank is only ever touched by EX AF,AF' and EXX, and the
// core never blocks or shares this value across goroutines.
type CPU struct {
	A, F, B, C, D, E, H, L         uint8
	A2, F2, B2, C2, D2, E2, H2, L2 uint8 // shadow bank, swapped by EX AF,AF'/EXX

	IX, IY uint16
	SP, PC uint16
	PrevPC uint16 // PC of the instruction currently being decoded

	I uint8
	R uint8 // 7-bit refresh counter; bit 7 is preserved by bumpR

	IFF1, IFF2 bool
	IM         uint8 // interrupt mode: 0, 1, or 2
	Halted     bool

	nmiPending bool
	irqPending bool
	irqVector  uint8 // last vector/data-bus byte latched by RequestIRQ

	// PortAddr/PortValue/PortInput are the passive I/O latch described in
	// the external interfaces design: IN and OUT update them, the host
	// polls them between steps to implement devices.
	PortAddr  uint16
	PortValue uint8
	PortInput bool

	Mem *Memory

	curIndex idxMode // active index register for the instruction in flight
}

// New returns a CPU wired to mem and immediately reset.
func New(mem *Memory) *CPU {
	c := &CPU{Mem: mem}
	c.Reset()
	return c
}

// Reset restores the power-on/reset architectural state. Memory contents
// and the shadow bank are left untouched — per spec, the shadow bank is
// undefined after reset and tests must set it explicitly.
func (c *CPU) Reset() {
	c.A, c.F = 0xFF, 0xFF
	c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0
	c.IX, c.IY = 0, 0
	c.SP = 0xFFFF
	c.PC = 0
	c.PrevPC = 0
	c.I, c.R = 0, 0
	c.IFF1, c.IFF2 = false, false
	c.IM = 0
	c.Halted = false
	c.nmiPending = false
	c.irqPending = false
	c.PortAddr, c.PortValue, c.PortInput = 0, 0, false
}

// bumpR advances the refresh counter's low 7 bits, preserving bit 7, per
// invariant (1).
func (c *CPU) bumpR() {
	c.R = (c.R & 0x80) | ((c.R + 1) & 0x7F)
}

// fetch8 reads the byte at PC and advances PC by one.
func (c *CPU) fetch8() uint8 {
	v := c.Mem.Read(c.PC)
	c.PC++
	return v
}

// fetch16 reads a little-endian word starting at PC and advances PC by two.
func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

// push16 implements the stack discipline from the instruction semantics
// design: pre-decrement SP by 2, high byte at SP+1, low byte at SP.
func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.Mem.Write(c.SP, uint8(v))
	c.Mem.Write(c.SP+1, uint8(v>>8))
}

// pop16 reads low then high and post-increments SP by 2.
func (c *CPU) pop16() uint16 {
	lo := c.Mem.Read(c.SP)
	hi := c.Mem.Read(c.SP + 1)
	c.SP += 2
	return uint16(hi)<<8 | uint16(lo)
}

// TriggerNMI latches a non-maskable interrupt; it is serviced at the start
// of interrupt polling ahead of any pending maskable interrupt, regardless
// of IFF1.
func (c *CPU) TriggerNMI() { c.nmiPending = true }

// RequestIRQ latches a maskable interrupt together with the vector/data-bus
// byte a real device would present. It is only accepted while IFF1 is set.
func (c *CPU) RequestIRQ(vector uint8) {
	c.irqPending = true
	c.irqVector = vector
}

// regCost is the cost convention for instructions whose operand never
// references (HL)/(IX+d)/(IY+d): the DD/FD prefix adds a flat 4 T-states
// (its own decode cycle) and no extra PC byte beyond the opcode itself.
func (c *CPU) regCost(base int) int {
	if c.curIndex == idxNone {
		return base
	}
	return base + 4
}

// idxCost is the cost convention for instructions whose operand is
// (HL)/(IX+d)/(IY+d): the indexed forms have their own published timing
// that does not decompose as a flat delta over the HL form, because they
// also pay for the displacement-byte fetch.
func (c *CPU) idxCost(base, indexed int) int {
	if c.curIndex == idxNone {
		return base
	}
	return indexed
}
