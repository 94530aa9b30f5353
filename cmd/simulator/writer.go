package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/signalsfoundry/granular-simulator/core"
)

// csvSnapshotWriter serializes snapshots as one CSV file per save index.
// The core treats the format as opaque; CSV is just what the analysis
// scripts around this tool eat.
type csvSnapshotWriter struct {
	dir string
}

func newCSVSnapshotWriter(dir string) (*csvSnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot directory: %w", err)
	}
	return &csvSnapshotWriter{dir: dir}, nil
}

// WriteSnapshot implements core.SnapshotWriter.
func (w *csvSnapshotWriter) WriteSnapshot(index uint64, snap core.Snapshot) error {
	path := filepath.Join(w.dir, fmt.Sprintf("%s.%04d.csv", snap.Name, index))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"time", "step", "x", "y", "z", "vx", "vy", "vz", "radius"}); err != nil {
		return err
	}
	for _, p := range snap.Particles {
		row := []string{
			strconv.FormatFloat(snap.Time, 'g', -1, 64),
			strconv.FormatUint(snap.Step, 10),
			strconv.FormatFloat(p.Position.X, 'g', -1, 64),
			strconv.FormatFloat(p.Position.Y, 'g', -1, 64),
			strconv.FormatFloat(p.Position.Z, 'g', -1, 64),
			strconv.FormatFloat(p.Velocity.X, 'g', -1, 64),
			strconv.FormatFloat(p.Velocity.Y, 'g', -1, 64),
			strconv.FormatFloat(p.Velocity.Z, 'g', -1, 64),
			strconv.FormatFloat(p.Radius, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
