// Package harness implements the CP/M BDOS trampoline the test harness
// protocol describes: installing the CALL 5 entry points an exerciser
// image expects, and servicing the two BDOS calls PRELIM/8080PRE/CPUTEST/
// ZEXDOC actually issue (C=9 print-string, C=2 print-char), outside the
// core the way its design keeps binary loading and host I/O out of pkg/z80.
package harness

import (
	"fmt"
	"strings"

	"github.com/z80core/z80emu/pkg/z80"
)

const (
	loadAddr  = 0x0100
	bdosEntry = 0x0005
)

// Report is the result of driving one exerciser image to completion or to
// its T-state budget, the adapted form of the teacher's result.Rule: a
// table of optimization candidates becomes a table of per-image outcomes.
type Report struct {
	Image      string `json:"image"`
	Cycles     int    `json:"cycles"`
	Output     string `json:"output"`
	Passed     bool   `json:"passed"`
	TrapReason string `json:"trap,omitempty"`
}

// Install writes the BDOS trampoline at 0x0000/0x0005 that spec.md's test
// harness protocol describes: an OUT instruction at 0x0000 so a warm boot
// can be detected as termination, an IN instruction at the CALL 5 entry
// point so Run can intercept the call before it executes, and a RET so a
// program that falls through still returns harmlessly.
func Install(mem *z80.Memory) {
	mem.Write(0x0000, 0xD3) // OUT (n),A
	mem.Write(0x0001, 0x00)
	mem.Write(bdosEntry, 0xDB) // IN A,(n)
	mem.Write(bdosEntry+1, 0x00)
	mem.Write(bdosEntry+2, 0xC9) // RET
}

// Run loads img at 0x0100, installs the trampoline, sets PC to 0x0100 and
// switches the bus to CP/M's flat addressing mode, then drives Step until
// either the OUT-at-0x0000 sentinel fires, the budget is exhausted, or an
// error is returned by the core.
func Run(cpu *z80.CPU, img []byte, budget int) (*Report, error) {
	cpu.Mem.CPM = true
	cpu.Mem.LoadAt(loadAddr, img)
	Install(cpu.Mem)
	cpu.Reset()
	cpu.PC = loadAddr
	cpu.SP = 0xF000

	var out strings.Builder
	report := &Report{Cycles: 0}

	for report.Cycles < budget {
		if cpu.PC == bdosEntry {
			serviceBDOS(cpu, &out)
		}

		cycles, err := cpu.Step()
		report.Cycles += cycles
		if err != nil {
			report.TrapReason = err.Error()
			report.Output = out.String()
			return report, err
		}

		if terminated(cpu) {
			report.Passed = true
			report.Output = out.String()
			return report, nil
		}
	}

	report.Output = out.String()
	report.TrapReason = "budget exhausted"
	return report, nil
}

// serviceBDOS intercepts the CALL 5 entry point and performs the two
// console functions the exercisers use: C=9 prints a '$'-terminated
// string at DE, C=2 prints the character in E.
func serviceBDOS(cpu *z80.CPU, out *strings.Builder) {
	switch cpu.C {
	case 9:
		addr := cpu.DE()
		for {
			ch := cpu.Mem.Read(addr)
			if ch == '$' {
				break
			}
			out.WriteByte(ch)
			addr++
		}
	case 2:
		out.WriteByte(cpu.E)
	}
}

// terminated reports the OUT-at-0x0000 sentinel the protocol defines:
// once the trampoline's OUT instruction at address 0 has executed, the
// exerciser has returned control via a CP/M warm boot and the run is over.
func terminated(cpu *z80.CPU) bool {
	return cpu.PrevPC == 0x0000
}

// Summary renders a short human-readable line for a Report, in the plain
// fmt.Printf style the host driver uses throughout.
func Summary(r *Report) string {
	status := "FAIL"
	if r.Passed {
		status = "PASS"
	}
	return fmt.Sprintf("%-20s %-4s cycles=%-10d trap=%s", r.Image, status, r.Cycles, r.TrapReason)
}
