package z80

import "fmt"

// TrapError is returned by Step when it encounters a byte sequence this
// core does not decode at all. The decode tables for every other plane are
// exhaustive over their opcode fields (every 3-bit/2-bit sub-field has a
// defined case, even when that case is an undocumented-but-real behavior
// like HALT-on-DD76 or IN F,(C)), so unimplemented opcode is the only trap
// category this core can actually raise; benign wraparound (PC/SP/refresh-
// counter overflow) is not an error at all and never produces a TrapError.
type TrapError struct {
	PC     uint16
	Opcode []uint8
	Detail string
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("z80: unimplemented opcode at pc=%04x opcode=% 02x: %s", e.PC, e.Opcode, e.Detail)
}

func (c *CPU) trapUnimplemented(pc uint16, opcode []uint8, detail string) error {
	return &TrapError{PC: pc, Opcode: opcode, Detail: detail}
}
