package z80

// pollInterrupts implements the acceptance state machine: a pending NMI is
// always serviced first, regardless of IFF1; a pending maskable interrupt
// is serviced only when IFF1 is set. It returns the extra T-states spent
// servicing an interrupt, or 0 when none was accepted. Grounded on the
// same NMI/IRQ split retrogolib's Z80 core implements in handleInterrupts.
func (c *CPU) pollInterrupts() int {
	if c.nmiPending {
		c.nmiPending = false
		c.IFF1 = false
		c.Halted = false
		c.push16(c.PC)
		c.PC = 0x0066
		c.bumpR()
		return 11
	}

	if c.irqPending && c.IFF1 {
		c.irqPending = false
		c.Halted = false
		c.IFF1 = false
		c.IFF2 = false
		// Maskable acceptance does not advance R, unlike NMI above.
		switch c.IM {
		case 0:
			cycles, _ := c.execBase(c.irqVector)
			return 11 + cycles
		case 2:
			addr := uint16(c.I)<<8 | uint16(c.irqVector)
			target := c.Mem.Read16(addr)
			c.push16(c.PC)
			c.PC = target
			return 19
		default: // IM 1
			c.push16(c.PC)
			c.PC = 0x0038
			return 13
		}
	}

	return 0
}
