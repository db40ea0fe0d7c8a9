// Package importer implements the batched import and reconciliation
// pipeline that turns the denormalized movie export into the normalized
// relational schema. The pipeline guarantees the schema never accumulates
// duplicate reference entities despite repeated, partial, or interrupted
// runs; duplicate movie rows that leak through non-idempotent runs are
// collapsed by the Reconciler.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Row is one raw source row: a mapping from the export's column headers
// to raw string values.
type Row map[string]string

// ReadCSVFile reads a headered CSV export into ordered rows. Short records
// are tolerated since the export is user-edited; missing trailing fields
// become absent keys.
func ReadCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV reads headered CSV data from r into ordered rows.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}

		row := make(Row, len(header))
		for i, field := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = field
		}
		rows = append(rows, row)
	}

	return rows, nil
}
