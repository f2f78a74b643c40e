// Package dataset reads and writes the pallet and truck CSV files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Row represents a single CSV row keyed by normalized column name.
type Row map[string]string

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers. Header names are lower-cased and
// trimmed, spaces become underscores, and lines starting with '#' are skipped.
// A path of "-" reads standard input.
func LoadCSV(path string) ([]Row, error) {
	if path == "-" {
		return ReadCSV(os.Stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, path)
}

// ReadCSV is LoadCSV over an arbitrary reader. name is only used in errors.
func ReadCSV(r io.Reader, name string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", name, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", name)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = normalizeHeader(h)
	}
	rows := make([]Row, 0, len(records)-1)

	for _, record := range records[1:] {
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// LoadCSVRange reads rows in the given range [start, end] (1-based, inclusive).
// Row 1 is the first data row (after headers).
func LoadCSVRange(path string, start, end int) ([]Row, error) {
	if start < 1 {
		return nil, fmt.Errorf("csv: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("csv: range end (%d) must be >= start (%d)", end, start)
	}

	allRows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}

	// Clamp end to available rows
	if end > len(allRows) {
		end = len(allRows)
	}

	if start > len(allRows) {
		return []Row{}, nil
	}

	return allRows[start-1 : end], nil
}

// ParseRange parses "start:end", "start:" or "n" (the first n rows).
func ParseRange(s string) (start, end int, err error) {
	s = strings.TrimSpace(s)
	before, after, found := strings.Cut(s, ":")
	if !found {
		end, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("csv: invalid range %q", s)
		}
		return 1, end, nil
	}
	if start, err = strconv.Atoi(before); err != nil {
		return 0, 0, fmt.Errorf("csv: invalid range start in %q", s)
	}
	if after == "" {
		return start, math.MaxInt, nil
	}
	if end, err = strconv.Atoi(after); err != nil {
		return 0, 0, fmt.Errorf("csv: invalid range end in %q", s)
	}
	return start, end, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.Join(strings.Fields(h), "_")
}
