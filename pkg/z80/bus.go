package z80

// Memory sizes from the memory map design: an oversize ROM addressable
// beyond the 16-bit bus internally through the decoder, and a full 64K RAM.
const (
	romSize      = 0x15000
	ramSize      = 0x10000
	irqLatchAddr = 0x5000
	ramWindowEnd = 0x5000
	romWindowEnd = 0x4000
)

// Memory implements the two addressing modes from the memory map design: a
// native mode with a write-through ROM shadow, a RAM work window, and a
// memory-mapped interrupt latch at 0x5000; and a flat CP/M mode used by the
// test harness, with no mirroring and no IRQ latch.
type Memory struct {
	ROM [romSize]uint8
	RAM [ramSize]uint8

	// CPM switches the decoder into the flat, linear addressing mode the
	// CP/M test harness protocol requires.
	CPM bool

	irqFlag bool // level read back at 0x5000
}

// NewMemory returns a zeroed Memory in native addressing mode.
func NewMemory() *Memory { return &Memory{} }

// SetIRQFlag raises or lowers the level a native-mode read of 0x5000
// observes. It does not itself request a CPU interrupt — see CPU.RequestIRQ.
func (m *Memory) SetIRQFlag(on bool) { m.irqFlag = on }

// Read implements the bus decoder. In CP/M mode it is a flat, linear 64K
// space. In native mode: addr<0x4000 reads ROM; [0x4000,0x5000) reads the
// RAM work window; 0x5000 reads the IRQ latch level; addr>=0x5000 reads ROM.
func (m *Memory) Read(addr uint16) uint8 {
	if m.CPM {
		return m.RAM[addr]
	}
	switch {
	case addr < romWindowEnd:
		return m.ROM[addr]
	case addr < irqLatchAddr:
		return m.RAM[addr-romWindowEnd]
	case addr == irqLatchAddr:
		if m.irqFlag {
			return 1
		}
		return 0
	default:
		return m.ROM[addr]
	}
}

// Write implements the bus decoder's write side. Below 0x4000 the ROM is
// write-through to RAM: the byte lands in RAM, while a native-mode Read of
// the same address keeps returning the ROM byte, so the written value is
// not visible through Read there. The [0x4000,0x5000) work window aliases the same RAM
// bytes addr<0x1000 would reach directly, matching the arcade-board layout
// this map is modeled on. A write to 0x5000 raises the interrupt-pending
// latch rather than storing a byte. addr>=0x5000 writes through to RAM.
func (m *Memory) Write(addr uint16, v uint8) {
	if m.CPM {
		m.RAM[addr] = v
		return
	}
	switch {
	case addr < romWindowEnd:
		m.RAM[addr] = v
	case addr < irqLatchAddr:
		m.RAM[addr-romWindowEnd] = v
	case addr == irqLatchAddr:
		m.irqFlag = true
	default:
		m.RAM[addr] = v
	}
}

// Read16 reads a little-endian word, wrapping on the high byte per invariant.
func (m *Memory) Read16(addr uint16) uint16 {
	lo := m.Read(addr)
	hi := m.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 writes a little-endian word, wrapping on the high byte.
func (m *Memory) Write16(addr uint16, v uint16) {
	m.Write(addr, uint8(v))
	m.Write(addr+1, uint8(v>>8))
}

// LoadAt copies img into RAM starting at addr, as cmd/z80run does when
// loading an exerciser image ahead of a run.
func (m *Memory) LoadAt(addr uint16, img []byte) {
	for i, b := range img {
		m.RAM[(int(addr)+i)%ramSize] = b
	}
}
