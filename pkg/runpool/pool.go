// Package runpool drives a batch of exerciser images concurrently on a fixed
// number of worker goroutines, each running one image at a time on its own
// fresh z80.CPU. This is the adapted
// form of the teacher's pkg/search.WorkerPool: the teacher fans goroutines
// out over candidate instruction sequences to search for optimizations;
// here they fan out over images to run, but the concurrency shape —
// buffered task channel, sync.WaitGroup, atomic progress counters, a
// ticker-driven progress reporter — carries over unchanged.
package runpool

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/z80core/z80emu/pkg/harness"
	"github.com/z80core/z80emu/pkg/z80"
)

// Task is one exerciser image to run.
type Task struct {
	Name  string
	Image []byte
}

// Pool runs a fixed number of worker goroutines against a stream of Tasks.
type Pool struct {
	NumWorkers int
	Budget     int
	Table      *harness.Table

	completed atomic.Int64
	failed    atomic.Int64
}

// NewPool returns a Pool with the given worker count and per-image T-state
// budget, ready to have RunTasks called on it.
func NewPool(numWorkers, budget int) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{NumWorkers: numWorkers, Budget: budget, Table: &harness.Table{}}
}

// RunTasks drains tasks across NumWorkers goroutines, reporting progress to
// stderr every 10 seconds, and returns once every task has been run.
func (p *Pool) RunTasks(tasks []Task) {
	ch := make(chan Task, len(tasks))
	for _, t := range tasks {
		ch <- t
	}
	close(ch)

	total := int64(len(tasks))
	done := make(chan struct{})

	go p.reportProgress(total, done)

	var wg sync.WaitGroup
	for i := 0; i < p.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range ch {
				p.runOne(task)
			}
		}()
	}
	wg.Wait()
	close(done)
}

func (p *Pool) runOne(task Task) {
	cpu := z80.New(z80.NewMemory())
	report, _ := harness.Run(cpu, task.Image, p.Budget)
	report.Image = task.Name
	if !report.Passed {
		p.failed.Add(1)
	}
	p.Table.Add(*report)
	p.completed.Add(1)
}

func (p *Pool) reportProgress(total int64, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			completed := p.completed.Load()
			elapsed := time.Since(start).Seconds()
			rate := float64(completed) / elapsed
			fmt.Fprintf(os.Stderr, "runpool: %d/%d done, %d failed, %.1f images/sec\n",
				completed, total, p.failed.Load(), rate)
		}
	}
}
