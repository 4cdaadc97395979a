// Command z80run drives the z80 core against CP/M-style exerciser images
// (PRELIM, 8080PRE, CPUTEST, ZEXDOC/ZEXALL), either one at a time or as a
// concurrent batch over a whole directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/z80core/z80emu/pkg/harness"
	"github.com/z80core/z80emu/pkg/runpool"
	"github.com/z80core/z80emu/pkg/z80"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "z80run",
		Short: "Run Z80 CP/M exerciser images against the z80 core",
	}

	var startStr string
	var cpm bool
	var budget int
	var reportPath string

	runCmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Run a single exerciser image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseAddr(startStr)
			if err != nil {
				return err
			}

			img, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("z80run: read image: %w", err)
			}

			cpu := z80.New(z80.NewMemory())
			var report *harness.Report
			if cpm {
				report, err = harness.Run(cpu, img, budget)
			} else {
				if start < 0x4000 {
					return fmt.Errorf("z80run: native mode reads below 0x4000 come from ROM, not the loaded image; pass --start 0x4000 or higher, or drop --cpm=false")
				}
				cpu.Mem.LoadAt(start, img)
				cpu.PC = start
				report = &harness.Report{Image: args[0]}
				for report.Cycles < budget {
					cycles, stepErr := cpu.Step()
					report.Cycles += cycles
					if stepErr != nil {
						report.TrapReason = stepErr.Error()
						err = stepErr
						break
					}
				}
				if err == nil {
					report.Passed = true
				}
			}
			report.Image = args[0]

			fmt.Println(harness.Summary(report))
			if report.Output != "" {
				fmt.Print(report.Output)
				fmt.Println()
			}

			if reportPath != "" {
				if writeErr := writeReport(reportPath, []harness.Report{*report}); writeErr != nil {
					return writeErr
				}
			}

			return err
		},
	}
	runCmd.Flags().StringVar(&startStr, "start", "0x0100", "load/start address (hex, e.g. 0x0100); used with --cpm=false, CP/M mode always loads at 0x0100")
	runCmd.Flags().BoolVar(&cpm, "cpm", true, "enable CP/M BDOS compatibility mode")
	runCmd.Flags().IntVar(&budget, "budget", 50_000_000, "maximum T-states before the run is declared stuck")
	runCmd.Flags().StringVar(&reportPath, "report", "", "write a JSON report to this path")

	var workers int
	var checkpointPath string

	batchCmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Run every *.com/*.bin image in a directory concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadTasks(args[0])
			if err != nil {
				return err
			}

			var cp harness.Checkpoint
			if checkpointPath != "" {
				if loaded, loadErr := harness.LoadCheckpoint(checkpointPath); loadErr == nil {
					cp = loaded
					tasks = skipDone(tasks, cp.Done)
				} else {
					cp.Done = make(map[string]bool)
				}
			}

			fmt.Printf("z80run batch: %d images, %d workers\n", len(tasks), workers)

			pool := runpool.NewPool(workers, budget)
			pool.RunTasks(tasks)

			reports := pool.Table.Reports()
			for _, r := range reports {
				fmt.Println(harness.Summary(&r))
			}
			fmt.Printf("z80run batch: %d/%d images completed\n", pool.Table.Len(), len(tasks))

			if checkpointPath != "" {
				for _, r := range reports {
					cp.Done[r.Image] = true
					cp.Reports = append(cp.Reports, r)
				}
				if err := harness.SaveCheckpoint(checkpointPath, cp); err != nil {
					return fmt.Errorf("z80run: save checkpoint: %w", err)
				}
			}

			if reportPath != "" {
				return writeReport(reportPath, reports)
			}
			return nil
		},
	}
	batchCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().IntVar(&budget, "budget", 50_000_000, "maximum T-states per image")
	batchCmd.Flags().StringVar(&reportPath, "report", "", "write a JSON report to this path")
	batchCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "resume/save progress through this gob checkpoint file")

	reportCmd := &cobra.Command{
		Use:   "report <path>",
		Short: "Print a summary of a previously written JSON report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("z80run: read report: %w", err)
			}
			reports, err := harness.ReadJSON(data)
			if err != nil {
				return fmt.Errorf("z80run: parse report: %w", err)
			}
			for _, r := range reports {
				fmt.Println(harness.Summary(&r))
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, batchCmd, reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseAddr(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("z80run: invalid address %q: %w", s, err)
	}
	return uint16(v), nil
}

func loadTasks(dir string) ([]runpool.Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("z80run: read dir: %w", err)
	}
	var tasks []runpool.Task
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".com" && ext != ".bin" {
			continue
		}
		img, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("z80run: read %s: %w", e.Name(), err)
		}
		tasks = append(tasks, runpool.Task{Name: e.Name(), Image: img})
	}
	return tasks, nil
}

func skipDone(tasks []runpool.Task, done map[string]bool) []runpool.Task {
	if len(done) == 0 {
		return tasks
	}
	var out []runpool.Task
	for _, t := range tasks {
		if !done[t.Name] {
			out = append(out, t)
		}
	}
	return out
}

func writeReport(path string, reports []harness.Report) error {
	t := &harness.Table{}
	for _, r := range reports {
		t.Add(r)
	}
	data, err := t.WriteJSON()
	if err != nil {
		return fmt.Errorf("z80run: marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("z80run: write report: %w", err)
	}
	return nil
}
