package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ReadCSV ingests a CSV file into a Table. A missing or empty file is a
// ValidationError.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, validationErrorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	table, err := FromReader(file)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			return nil, validationErrorf("%s: %s", path, err.(*ValidationError).Reason)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return table, nil
}

// FromReader ingests CSV data from r into a Table.
func FromReader(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, validationErrorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, validationErrorf("file has a header but no data rows")
	}

	return NewTable(header, rows), nil
}
