// Package audit records every attempted action to a timestamped CSV file
// and, optionally, to a database.
package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

// TimestampLayout is the run timestamp used in file names
const TimestampLayout = "20060102_150405"

const maxSuffix = 1000

// Writer creates audit files in Dir named <Prefix>_<timestamp>.csv. Existing
// files are never overwritten.
type Writer struct {
	Dir    string
	Prefix string
}

// WriteResults writes one row per result and returns the file path
func (w *Writer) WriteResults(startedAt time.Time, results []types.ActionResult) (string, error) {
	header := append([]string{}, types.ResultHeader...)
	if len(results) > 0 && results[0].Entity != nil {
		header = append(header, results[0].Entity.AuditHeader()...)
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, r.Record())
	}

	path, err := w.write(w.Prefix+"_"+startedAt.Format(TimestampLayout), header, rows)
	if err != nil {
		return "", errors.Wrap(err, "WriteResults")
	}
	log.Infof("Audit log written to %v", path)
	return path, nil
}

// WriteExcluded writes the devices held back by the guard
func (w *Writer) WriteExcluded(startedAt time.Time, devices []*types.ManagedDevice, reason string) (string, error) {
	header := []string{"Reason"}
	rows := make([][]string, 0, len(devices))
	for i, d := range devices {
		if i == 0 {
			header = append(header, d.AuditHeader()...)
		}
		rows = append(rows, append([]string{reason}, d.AuditRecord()...))
	}

	path, err := w.write(w.Prefix+"_GuardExcluded_"+startedAt.Format(TimestampLayout), header, rows)
	if err != nil {
		return "", errors.Wrap(err, "WriteExcluded")
	}
	log.Infof("Guard excluded devices written to %v", path)
	return path, nil
}

func (w *Writer) write(base string, header []string, rows [][]string) (string, error) {
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create log directory")
	}

	f, path, err := createExclusive(dir, base)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return path, errors.Wrap(err, "write header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return path, errors.Wrap(err, "write rows")
	}
	return path, f.Close()
}

// createExclusive opens base.csv, or base_N.csv when it already exists
func createExclusive(dir, base string) (*os.File, string, error) {
	for n := 0; n < maxSuffix; n++ {
		name := base + ".csv"
		if n > 0 {
			name = fmt.Sprintf("%s_%d.csv", base, n)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", errors.Wrapf(err, "create %v", path)
		}
	}
	return nil, "", fmt.Errorf("no free audit file name for %v", base)
}
