package harness

import (
	"bytes"
	"encoding/gob"
	"os"
)

// Checkpoint is the gob-encoded resume state for a long batch run, adapted
// from the teacher's result.Checkpoint: CompletedTarget/TargetLen become a
// simple set of already-reported image names, since a batch run has no
// notion of a search-depth target.
type Checkpoint struct {
	Reports []Report
	Done    map[string]bool
}

func init() {
	gob.Register(Checkpoint{})
	gob.Register(Report{})
}

// SaveCheckpoint writes cp to path, overwriting any existing file.
func SaveCheckpoint(path string, cp Checkpoint) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cp); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadCheckpoint reads a Checkpoint previously written by SaveCheckpoint.
func LoadCheckpoint(path string) (Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Checkpoint{}, err
	}
	var cp Checkpoint
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&cp); err != nil {
		return Checkpoint{}, err
	}
	if cp.Done == nil {
		cp.Done = make(map[string]bool)
	}
	return cp, nil
}
