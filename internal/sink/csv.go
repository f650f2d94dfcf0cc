package sink

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banketl/banketl/internal/model"
)

const (
	colIndex  = 0
	colName   = 1
	colAmount = 2
)

// CSVHeader returns the file sink header. The leading empty cell is the
// row index column.
func CSVHeader() []string {
	return append([]string{""}, model.EnrichedColumns...)
}

// MarshalRecord converts a record and its index to a CSV row.
// Missing amounts are written as empty cells.
func MarshalRecord(index int, r model.EnrichedRecord) []string {
	row := make([]string, colAmount, len(model.EnrichedColumns)+1)
	row[colIndex] = strconv.Itoa(index)
	row[colName] = r.Name
	for _, a := range r.Amounts() {
		row = append(row, a.String())
	}
	return row
}

// WriteCSV writes the header and one indexed row per record.
func WriteCSV(w io.Writer, records []model.EnrichedRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(CSVHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(MarshalRecord(i, r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV replaces the file at path with the serialized records. The data
// goes to a temporary file in the same directory first and is renamed into
// place, so path either keeps its old content or holds the full new set.
func SaveCSV(path string, records []model.EnrichedRecord) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".banketl-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	bw := bufio.NewWriter(tmp)
	if err := WriteCSV(bw, records); err != nil {
		cleanup()
		return err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("flushing %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
