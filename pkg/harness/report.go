package harness

import (
	"encoding/json"
	"sort"
	"sync"
)

// Table aggregates Reports across a batch run, the adapted form of the
// teacher's result.Table: instead of ranking optimization rules by bytes
// saved, it collects per-image run reports behind a mutex so concurrent
// workers can append to it safely.
type Table struct {
	mu      sync.Mutex
	reports []Report
}

// Add appends r to the table. Safe for concurrent use by multiple workers.
func (t *Table) Add(r Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reports = append(t.reports, r)
}

// Reports returns a copy of the collected reports sorted by image name.
func (t *Table) Reports() []Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Report, len(t.reports))
	copy(out, t.reports)
	sort.Slice(out, func(i, j int) bool { return out[i].Image < out[j].Image })
	return out
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.reports)
}

// WriteJSON marshals the table's reports, mirroring the teacher's
// cmd/z80opt result.WriteJSON/ReadJSON round-trip.
func (t *Table) WriteJSON() ([]byte, error) {
	return json.MarshalIndent(t.Reports(), "", "  ")
}

// ReadJSON decodes the reports encoded in data (as written by WriteJSON) and
// returns them; it does not touch any Table.
func ReadJSON(data []byte) ([]Report, error) {
	var reports []Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
