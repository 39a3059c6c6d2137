package main

import (
	"encoding/gob"
	"os"

	"github.com/oisee/polydist/pkg/analysis"
)

// Checkpoint holds state for resuming a long analyze run: the byte
// offset reached in the (single) input file and a snapshot of the
// analyser's cumulative counters. Adapts the teacher's
// pkg/result.Checkpoint pattern to this tool's domain.
type Checkpoint struct {
	Offset int64
	Snap   *analysis.Snapshot
}

// saveCheckpoint writes analyze state to a file.
func saveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// loadCheckpoint loads analyze state from a file.
func loadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
