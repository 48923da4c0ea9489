// Package csvio loads record sets from CSV files and writes them back.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"tierlink/internal/recordset"
)

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("csv has no header row")

// Options controls reading.
type Options struct {
	// IndexColumn names an integer column that supplies origin indices. The
	// column is not part of the resulting set. Blank means row position.
	IndexColumn string
	// NullValues lists cell values read as null in addition to the empty
	// string.
	NullValues []string
	// InferTypes converts integer and decimal cells to int64 and float64.
	InferTypes bool
	Comma      rune
}

// Read parses CSV from r. Empty cells and NullValues become nil.
func Read(r io.Reader, opts Options) (*recordset.Set, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	indexPos := -1
	columns := make([]string, 0, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if opts.IndexColumn != "" && name == opts.IndexColumn {
			indexPos = i
			continue
		}
		columns = append(columns, name)
	}
	if opts.IndexColumn != "" && indexPos < 0 {
		return nil, fmt.Errorf("index column %q: %w", opts.IndexColumn, recordset.ErrUnknownColumn)
	}

	set, err := recordset.New(columns)
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	nulls := make(map[string]struct{}, len(opts.NullValues)+1)
	nulls[""] = struct{}{}
	for _, v := range opts.NullValues {
		nulls[v] = struct{}{}
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		values := make([]any, 0, len(columns))
		for i, cell := range record {
			if i == indexPos {
				continue
			}
			if _, isNull := nulls[cell]; isNull {
				values = append(values, nil)
				continue
			}
			values = append(values, convert(cell, opts.InferTypes))
		}
		if indexPos < 0 {
			err = set.Append(values...)
		} else {
			index, parseErr := strconv.ParseInt(strings.TrimSpace(record[indexPos]), 10, 64)
			if parseErr != nil {
				return nil, fmt.Errorf("line %d: index column %q: %w", line, opts.IndexColumn, parseErr)
			}
			err = set.AppendIndexed(index, values...)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return set, nil
}

// ReadFile opens path and calls Read.
func ReadFile(path string, opts Options) (*recordset.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	set, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// WriteOptions controls writing.
type WriteOptions struct {
	// IndexColumn, when set, adds a leading column holding origin indices.
	IndexColumn string
	// NullValue is written for nil values.
	NullValue string
}

// Write renders set as CSV with a header row.
func Write(w io.Writer, set *recordset.Set, opts WriteOptions) error {
	writer := csv.NewWriter(w)
	header := set.Columns()
	if opts.IndexColumn != "" {
		header = append([]string{opts.IndexColumn}, header...)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range set.Rows() {
		offset := 0
		if opts.IndexColumn != "" {
			record[0] = strconv.FormatInt(row.Index, 10)
			offset = 1
		}
		for i, v := range row.Values {
			s, ok := recordset.AsString(v)
			if !ok {
				s = opts.NullValue
			}
			record[i+offset] = s
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", row.Index, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes set to path.
func WriteFile(path string, set *recordset.Set, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := Write(f, set, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func convert(cell string, infer bool) any {
	if !infer {
		return cell
	}
	trimmed := strings.TrimSpace(cell)
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return cell
}
