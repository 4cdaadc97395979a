package z80

import "testing"

func newTestCPU() *CPU {
	mem := NewMemory()
	mem.CPM = true
	return New(mem)
}

func TestResetLifecycle(t *testing.T) {
	c := newTestCPU()
	c.A, c.SP, c.F = 0x12, 0x1234, 0x00
	c.IFF1, c.IFF2, c.IM = true, true, 2
	c.Mem.RAM[0] = 0xAB
	c.Reset()

	if c.A != 0xFF || c.F != 0xFF || c.SP != 0xFFFF {
		t.Fatalf("reset state: A=%02x F=%02x SP=%04x", c.A, c.F, c.SP)
	}
	if c.IFF1 || c.IFF2 || c.IM != 0 {
		t.Fatalf("reset should clear IFF1/IFF2/IM, got IFF1=%v IFF2=%v IM=%d", c.IFF1, c.IFF2, c.IM)
	}
	if c.Mem.RAM[0] != 0xAB {
		t.Fatalf("reset must not touch memory contents")
	}
}

func TestRefreshCounterRollover(t *testing.T) {
	c := newTestCPU()
	c.R = 0x80 | 0x7F
	c.bumpR()
	if c.R != 0x80 {
		t.Fatalf("R should roll over to 0x80 (bit 7 preserved), got %02x", c.R)
	}
}

func TestExAFInvolution(t *testing.T) {
	c := newTestCPU()
	a, f := c.A, c.F
	c.Mem.RAM[0] = 0x08 // EX AF,AF'
	c.Step()
	c.PC = 0
	c.Step()
	if c.A != a || c.F != f {
		t.Fatalf("EX AF,AF' twice should be identity, got A=%02x F=%02x want A=%02x F=%02x", c.A, c.F, a, f)
	}
}

func TestExxInvolution(t *testing.T) {
	c := newTestCPU()
	c.B, c.C, c.D, c.E, c.H, c.L = 1, 2, 3, 4, 5, 6
	c.Mem.RAM[0] = 0xD9 // EXX
	c.Mem.RAM[1] = 0xD9
	c.Step()
	c.Step()
	if c.B != 1 || c.C != 2 || c.D != 3 || c.E != 4 || c.H != 5 || c.L != 6 {
		t.Fatalf("EXX twice should be identity, got BC=%02x%02x DE=%02x%02x HL=%02x%02x",
			c.B, c.C, c.D, c.E, c.H, c.L)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	c := newTestCPU()
	c.SP = 0x2000
	c.push16(0xBEEF)
	if got := c.pop16(); got != 0xBEEF {
		t.Fatalf("push/pop round trip: got %04x, want BEEF", got)
	}
	if c.SP != 0x2000 {
		t.Fatalf("SP should return to its original value, got %04x", c.SP)
	}
}

func TestIncDecRegisterPairRoundTrip(t *testing.T) {
	c := newTestCPU()
	c.setBC(0x1234)
	c.setPair(pairBC, c.getPair(pairBC)+1)
	c.setPair(pairBC, c.getPair(pairBC)-1)
	if c.BC() != 0x1234 {
		t.Fatalf("INC/DEC rp round trip: got %04x, want 1234", c.BC())
	}
}

func TestAdcSbcRoundTrip(t *testing.T) {
	c := newTestCPU()
	c.A = 0x42
	c.F = 0
	before := c.A
	c.execAdd(0x10, true)
	c.execSub(0x10, true)
	if c.A != before {
		t.Fatalf("ADC then SBC of the same operand with no carry-in should round trip, got %02x want %02x", c.A, before)
	}
}

func TestBits3And5Invariant(t *testing.T) {
	c := newTestCPU()
	c.A = 0
	c.execOr(0x28) // bits 3 and 5 set, rest clear
	if c.F&Flag3 == 0 || c.F&Flag5 == 0 {
		t.Fatalf("undocumented flags 3/5 should mirror the result's bits 3/5, got F=%02x", c.F)
	}
}

func TestParityViaOr(t *testing.T) {
	cases := []struct {
		v     uint8
		wantP bool // true when v has even parity
	}{
		{0x00, true},
		{0x01, false},
		{0x03, true},
		{0xFF, true},
	}
	for _, tc := range cases {
		c := newTestCPU()
		c.A = 0
		c.execOr(tc.v)
		gotP := c.F&FlagP != 0
		if gotP != tc.wantP {
			t.Errorf("OR %02x: parity flag = %v, want %v", tc.v, gotP, tc.wantP)
		}
	}
}

func TestHalfCarryRegression(t *testing.T) {
	c := newTestCPU()
	c.A = 0x0F
	c.execAdd(0x01, false)
	if c.F&FlagH == 0 {
		t.Fatalf("0x0F+0x01 must set half-carry, got F=%02x", c.F)
	}
	if c.A != 0x10 {
		t.Fatalf("0x0F+0x01 should produce 0x10, got %02x", c.A)
	}
}

func TestAdcImmediateHalfCarry(t *testing.T) {
	c := newTestCPU()
	c.A = 0x0E
	c.F = FlagC
	c.execAdd(0x01, true)
	if c.A != 0x10 {
		t.Fatalf("0x0E+0x01+carry should be 0x10, got %02x", c.A)
	}
	if c.F&FlagH == 0 {
		t.Fatalf("ADC crossing the nibble boundary must set half-carry")
	}
}

func TestAddOverflow(t *testing.T) {
	c := newTestCPU()
	c.A = 0x7F
	c.execAdd(0x01, false)
	if c.F&FlagV == 0 {
		t.Fatalf("0x7F+0x01 must set overflow (signed 127+1 wraps negative), got F=%02x", c.F)
	}
}

func TestAddHLCarryIntoH(t *testing.T) {
	c := newTestCPU()
	c.setHL(0xFFFF)
	c.execAddHL(0x0001)
	if c.HL() != 0 {
		t.Fatalf("ADD HL,1 from 0xFFFF should wrap to 0, got %04x", c.HL())
	}
	if c.F&FlagC == 0 {
		t.Fatalf("ADD HL,1 from 0xFFFF must set carry")
	}
	if c.F&FlagH == 0 {
		t.Fatalf("ADD HL,1 from 0xFFFF carries out of bit 11 and must set H")
	}
}

func TestLDIRBlockCopy(t *testing.T) {
	c := newTestCPU()
	src := []uint8{0x10, 0x20, 0x30}
	for i, b := range src {
		c.Mem.RAM[0x2000+i] = b
	}
	c.setHL(0x2000)
	c.setDE(0x3000)
	c.setBC(uint16(len(src)))

	for {
		_, err := c.blockLD(true, true)
		if err != nil {
			t.Fatal(err)
		}
		if c.BC() == 0 {
			break
		}
	}

	for i := range src {
		if c.Mem.RAM[0x3000+i] != src[i] {
			t.Fatalf("LDIR did not copy byte %d correctly: got %02x want %02x", i, c.Mem.RAM[0x3000+i], src[i])
		}
	}
	if c.BC() != 0 {
		t.Fatalf("LDIR should leave BC at 0, got %04x", c.BC())
	}
}

func TestIndexHalvesOnlyReachableViaPrefix(t *testing.T) {
	c := newTestCPU()
	c.IX = 0xABCD
	c.curIndex = idxNone
	// Base-plane LD B,H must never read IXH even if IX happens to be set.
	v := c.getReg8(regH, 0)
	if v == 0xAB {
		t.Fatalf("unprefixed register H must not alias IXH")
	}
}

func TestDecIXPlusDDoesNotRereadDisplacement(t *testing.T) {
	c := newTestCPU()
	c.IX = 0x3000
	c.Mem.RAM[0x3005] = 0x01
	c.PC = 0x0000
	c.Mem.RAM[0] = 0x05 // displacement byte for this test's direct call
	c.curIndex = idxIX
	addr := c.effectiveAddr()
	if addr != 0x3005 {
		t.Fatalf("effective address: got %04x want 3005", addr)
	}
	if c.PC != 1 {
		t.Fatalf("effectiveAddr should consume exactly one displacement byte, PC=%d", c.PC)
	}

	// The full instruction: DD 35 05 is DEC (IX+5).
	c.PC = 0x0100
	c.Mem.RAM[0x0100], c.Mem.RAM[0x0101], c.Mem.RAM[0x0102] = 0xDD, 0x35, 0x05
	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.Mem.RAM[0x3005] != 0x00 {
		t.Fatalf("DEC (IX+5) should leave 0x00 at 3005, got %02x", c.Mem.RAM[0x3005])
	}
	if c.PC != 0x0103 {
		t.Fatalf("DEC (IX+d) should read the displacement once and end at PC=0103, got %04x", c.PC)
	}
}
