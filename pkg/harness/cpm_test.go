package harness

import (
	"testing"

	"github.com/z80core/z80emu/pkg/z80"
)

// assembleGreeting builds a tiny CP/M-style program: print a string via
// C=9, print a single character via C=2, then warm-boot through address 0.
func assembleGreeting() []byte {
	img := make([]byte, 0, 32)
	msg := []byte("HI$")

	strAddr := uint16(0x0120)
	emit := func(b ...byte) { img = append(img, b...) }

	// LD DE,strAddr ; LD C,9 ; CALL 5
	emit(0x11, byte(strAddr), byte(strAddr>>8))
	emit(0x0E, 0x09)
	emit(0xCD, 0x05, 0x00)
	// LD E,'!' ; LD C,2 ; CALL 5
	emit(0x1E, '!')
	emit(0x0E, 0x02)
	emit(0xCD, 0x05, 0x00)
	// JP 0x0000 (warm boot)
	emit(0xC3, 0x00, 0x00)

	for len(img) < int(strAddr)-loadAddr {
		img = append(img, 0)
	}
	img = append(img, msg...)
	return img
}

func TestRunPrintsGreeting(t *testing.T) {
	cpu := z80.New(z80.NewMemory())
	report, err := Run(cpu, assembleGreeting(), 10000)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !report.Passed {
		t.Fatalf("expected the warm-boot sentinel to end the run, got trap=%q", report.TrapReason)
	}
	if report.Output != "HI!" {
		t.Fatalf("output = %q, want %q", report.Output, "HI!")
	}
}

func TestReportTableJSONRoundTrip(t *testing.T) {
	var table Table
	table.Add(Report{Image: "zexdoc", Cycles: 42, Passed: true})
	table.Add(Report{Image: "cputest", Cycles: 7, Passed: false, TrapReason: "budget exhausted"})

	data, err := table.WriteJSON()
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	reports, err := ReadJSON(data)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
}
