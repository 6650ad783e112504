package feature

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Dataset holds a labeled training table loaded from CSV: one row per
// detection, string values keyed by header name.
type Dataset struct {
	Header []string
	Rows   []map[string]string
}

// LoadCSV reads a dataset from a CSV file with a header row.
func LoadCSV(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads a dataset from CSV content with a header row.
func ReadCSV(r io.Reader) (Dataset, error) {
	all, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset csv: %w", err)
	}
	if len(all) < 2 {
		return Dataset{}, fmt.Errorf("dataset has no data rows")
	}

	header := all[0]
	rows := make([]map[string]string, 0, len(all)-1)
	for _, rec := range all[1:] {
		row := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				row[h] = strings.TrimSpace(rec[j])
			}
		}
		rows = append(rows, row)
	}
	return Dataset{Header: header, Rows: rows}, nil
}

// Labels extracts a boolean target column.
func (d Dataset) Labels(name string) ([]bool, error) {
	if !d.hasColumn(name) {
		return nil, fmt.Errorf("dataset missing label column %q", name)
	}
	labels := make([]bool, len(d.Rows))
	for i, row := range d.Rows {
		labels[i] = parseBool(row[name])
	}
	return labels, nil
}

// Dates extracts a date column (YYYY-MM-DD) used by the time folds.
func (d Dataset) Dates(name string) ([]time.Time, error) {
	if !d.hasColumn(name) {
		return nil, fmt.Errorf("dataset missing date column %q", name)
	}
	dates := make([]time.Time, len(d.Rows))
	for i, row := range d.Rows {
		t, err := time.Parse("2006-01-02", row[name])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", i+1, row[name], err)
		}
		dates[i] = t
	}
	return dates, nil
}

func (d Dataset) hasColumn(name string) bool {
	for _, h := range d.Header {
		if h == name {
			return true
		}
	}
	return false
}
