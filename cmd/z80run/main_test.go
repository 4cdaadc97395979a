package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/z80core/z80emu/pkg/harness"
	"github.com/z80core/z80emu/pkg/runpool"
)

func TestParseAddr(t *testing.T) {
	cases := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{"0x0100", 0x0100, false},
		{"256", 256, false},
		{"not-a-number", 0, true},
	}
	for _, tc := range cases {
		got, err := parseAddr(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseAddr(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("parseAddr(%q) = %04x, want %04x", tc.in, got, tc.want)
		}
	}
}

func TestWriteReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	reports := []harness.Report{{Image: "zexdoc.com", Cycles: 123, Passed: true}}

	if err := writeReport(path, reports); err != nil {
		t.Fatalf("writeReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back report: %v", err)
	}
	var got []harness.Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Image != "zexdoc.com" {
		t.Fatalf("got %+v, want one report for zexdoc.com", got)
	}
}

func TestSkipDone(t *testing.T) {
	tasks := []runpool.Task{{Name: "a.com"}, {Name: "b.com"}, {Name: "c.com"}}
	done := map[string]bool{"b.com": true}

	remaining := skipDone(tasks, done)

	if len(remaining) != 2 {
		t.Fatalf("got %d remaining tasks, want 2", len(remaining))
	}
	for _, r := range remaining {
		if r.Name == "b.com" {
			t.Fatalf("skipDone should have dropped b.com")
		}
	}
}
