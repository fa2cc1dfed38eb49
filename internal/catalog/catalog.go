// Package catalog imports product catalogues from gzipped CSV files stored
// on local disk or in S3.
package catalog

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Columns is the header of a catalogue file, in order.
var Columns = []string{"name", "category", "buying_price", "quantity", "unit", "expiry_date", "threshold_value"}

// Row is one data record of a catalogue file.
type Row struct {
	// Line is the 1-based line the record starts on.
	Line   int
	Values []string
}

// Loader reads a catalogue file.
type Loader interface {
	// Load reads a gzipped CSV catalogue and returns its data rows.
	Load(ctx context.Context, path string) ([]Row, error)
}

// decode reads gzipped CSV from r. A leading header row is skipped.
func decode(ctx context.Context, r io.Reader) ([]Row, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	reader := csv.NewReader(gzipReader)
	// Rows with the wrong column count are reported per line by the importer.
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []Row
	first := true
	for {
		if len(rows)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalogue: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		rows = append(rows, Row{Line: line, Values: record})
	}

	return rows, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), Columns[0])
}
