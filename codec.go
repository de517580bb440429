package gsheets

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// EncodeCSV renders a cell grid as CSV with CRLF row terminators and
// minimal quoting, matching the byte stream the adapter serves to
// readers.
func EncodeCSV(grid [][]string) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	for _, row := range grid {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("encode csv row: %w", err)
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeCSV parses CSV bytes into a cell grid. Rows may have differing
// widths; the grid is passed to the service as-is.
func DecodeCSV(b []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1

	grid, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}

	return grid, nil
}
