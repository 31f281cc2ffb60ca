package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes a design matrix as CSV with the component names as the
// header row.
func WriteCSV(w io.Writer, names []string, matrix [][]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range matrix {
		if len(row) != len(names) {
			return fmt.Errorf("row %d has %d entries, expected %d", i, len(row), len(names))
		}
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a design CSV as written by WriteCSV: one header row of
// component names followed by one numeric row per mixture.
func ReadCSV(r io.Reader) ([]string, [][]float64, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("need a header row and at least one mixture, got %d rows", len(records))
	}

	names := records[0]
	matrix := make([][]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := make([]float64, len(rec))
		for j, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %d: %w", i+1, j+1, err)
			}
			row[j] = v
		}
		matrix = append(matrix, row)
	}
	return names, matrix, nil
}
