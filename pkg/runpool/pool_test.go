package runpool

import "testing"

func TestRunTasksCollectsAllReports(t *testing.T) {
	nop := []byte{0xD3, 0x00} // OUT (0),A at 0x0100; not the 0x0000 sentinel, so each run ends on its budget

	tasks := []Task{
		{Name: "a.com", Image: nop},
		{Name: "b.com", Image: nop},
		{Name: "c.com", Image: nop},
	}

	pool := NewPool(2, 1000)
	pool.RunTasks(tasks)

	if pool.Table.Len() != len(tasks) {
		t.Fatalf("got %d reports, want %d", pool.Table.Len(), len(tasks))
	}
	if pool.completed.Load() != int64(len(tasks)) {
		t.Fatalf("completed counter = %d, want %d", pool.completed.Load(), len(tasks))
	}
}
