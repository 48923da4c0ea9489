package recordset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyColumn     = errors.New("empty column name")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrDuplicateIndex  = errors.New("duplicate origin index")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrWidthMismatch   = errors.New("value count does not match column count")
)

// Row is a single record. Values are aligned with the owning Set's columns.
type Row struct {
	Index  int64
	Values []any
}

// Set is an ordered collection of rows sharing one column schema.
type Set struct {
	columns []string
	lookup  map[string]int
	rows    []Row
	indices map[int64]struct{}
}

// New creates an empty Set with the provided column names.
func New(columns []string) (*Set, error) {
	lookup := make(map[string]int, len(columns))
	for i, name := range columns {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w at position %d", ErrEmptyColumn, i)
		}
		if _, exists := lookup[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		lookup[name] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Set{
		columns: cols,
		lookup:  lookup,
		indices: make(map[int64]struct{}),
	}, nil
}

// MustNew is New for schemas known to be valid; it panics otherwise.
func MustNew(columns ...string) *Set {
	s, err := New(columns)
	if err != nil {
		panic(err)
	}
	return s
}

// FromMaps builds a Set from map-shaped rows. Missing keys become nil and keys
// outside columns are rejected. Origin indices follow slice order.
func FromMaps(columns []string, rows []map[string]any) (*Set, error) {
	s, err := New(columns)
	if err != nil {
		return nil, err
	}
	for i, m := range rows {
		values := make([]any, len(columns))
		for key, value := range m {
			pos, ok := s.lookup[key]
			if !ok {
				return nil, fmt.Errorf("row %d: %w: %q", i, ErrUnknownColumn, key)
			}
			values[pos] = value
		}
		if err := s.Append(values...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Columns returns a copy of the column names in schema order.
func (s *Set) Columns() []string {
	if s == nil {
		return nil
	}
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// Len reports the number of rows.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// Width reports the number of columns.
func (s *Set) Width() int {
	if s == nil {
		return 0
	}
	return len(s.columns)
}

// Row returns the i-th row. The returned values must not be modified.
func (s *Set) Row(i int) Row {
	return s.rows[i]
}

// Rows returns the rows in order. The returned slice must not be modified.
func (s *Set) Rows() []Row {
	if s == nil {
		return nil
	}
	return s.rows
}

// HasColumn reports whether name is part of the schema.
func (s *Set) HasColumn(name string) bool {
	_, ok := s.ColumnIndex(name)
	return ok
}

// ColumnIndex returns the position of name in the schema.
func (s *Set) ColumnIndex(name string) (int, bool) {
	if s == nil {
		return 0, false
	}
	pos, ok := s.lookup[name]
	return pos, ok
}

// Append adds a row whose origin index is the next unused position.
func (s *Set) Append(values ...any) error {
	next := int64(len(s.rows))
	for {
		if _, used := s.indices[next]; !used {
			break
		}
		next++
	}
	return s.AppendIndexed(next, values...)
}

// AppendIndexed adds a row with an explicit origin index.
func (s *Set) AppendIndexed(index int64, values ...any) error {
	if len(values) != len(s.columns) {
		return fmt.Errorf("%w: got %d, want %d", ErrWidthMismatch, len(values), len(s.columns))
	}
	if _, used := s.indices[index]; used {
		return fmt.Errorf("%w: %d", ErrDuplicateIndex, index)
	}
	row := make([]any, len(values))
	copy(row, values)
	s.rows = append(s.rows, Row{Index: index, Values: row})
	s.indices[index] = struct{}{}
	return nil
}

// Value returns the value of column for row, or nil when the column is absent.
func (s *Set) Value(row Row, column string) any {
	pos, ok := s.ColumnIndex(column)
	if !ok || pos >= len(row.Values) {
		return nil
	}
	return row.Values[pos]
}

// StringValue renders the column value for row as a string. Null values and
// absent columns report false.
func (s *Set) StringValue(row Row, column string) (string, bool) {
	return AsString(s.Value(row, column))
}

// Indices returns the origin indices in row order.
func (s *Set) Indices() []int64 {
	if s == nil {
		return nil
	}
	out := make([]int64, len(s.rows))
	for i, row := range s.rows {
		out[i] = row.Index
	}
	return out
}

// Clone returns a deep copy of the set. Row values are copied so callers can
// mutate the clone without touching the original.
func (s *Set) Clone() *Set {
	if s == nil {
		return nil
	}
	clone := s.emptyLike()
	clone.rows = make([]Row, len(s.rows))
	for i, row := range s.rows {
		values := make([]any, len(row.Values))
		copy(values, row.Values)
		clone.rows[i] = Row{Index: row.Index, Values: values}
		clone.indices[row.Index] = struct{}{}
	}
	return clone
}

// Filter returns a new set holding the rows for which keep returns true.
func (s *Set) Filter(keep func(Row) bool) *Set {
	out := s.emptyLike()
	for _, row := range s.rows {
		if !keep(row) {
			continue
		}
		out.rows = append(out.rows, row)
		out.indices[row.Index] = struct{}{}
	}
	return out
}

// Without returns a new set that excludes rows whose origin index is listed.
func (s *Set) Without(indices map[int64]struct{}) *Set {
	if len(indices) == 0 {
		return s.Filter(func(Row) bool { return true })
	}
	return s.Filter(func(row Row) bool {
		_, drop := indices[row.Index]
		return !drop
	})
}

// WithColumn returns a new set with an extra trailing column. values must hold
// one entry per row, in row order.
func (s *Set) WithColumn(name string, values []any) (*Set, error) {
	if len(values) != len(s.rows) {
		return nil, fmt.Errorf("column %q: %w: got %d values for %d rows", name, ErrWidthMismatch, len(values), len(s.rows))
	}
	out, err := New(append(s.Columns(), name))
	if err != nil {
		return nil, err
	}
	out.rows = make([]Row, len(s.rows))
	for i, row := range s.rows {
		extended := make([]any, len(row.Values)+1)
		copy(extended, row.Values)
		extended[len(row.Values)] = values[i]
		out.rows[i] = Row{Index: row.Index, Values: extended}
		out.indices[row.Index] = struct{}{}
	}
	return out, nil
}

// Project returns a new set restricted to the named columns, in that order.
func (s *Set) Project(columns []string) (*Set, error) {
	positions := make([]int, len(columns))
	for i, name := range columns {
		pos, ok := s.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		positions[i] = pos
	}
	out, err := New(columns)
	if err != nil {
		return nil, err
	}
	out.rows = make([]Row, len(s.rows))
	for i, row := range s.rows {
		values := make([]any, len(positions))
		for j, pos := range positions {
			values[j] = row.Values[pos]
		}
		out.rows[i] = Row{Index: row.Index, Values: values}
		out.indices[row.Index] = struct{}{}
	}
	return out, nil
}

func (s *Set) emptyLike() *Set {
	lookup := make(map[string]int, len(s.lookup))
	for k, v := range s.lookup {
		lookup[k] = v
	}
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	return &Set{
		columns: cols,
		lookup:  lookup,
		indices: make(map[int64]struct{}, len(s.rows)),
	}
}

// AsString renders scalar values as strings. nil reports false.
func AsString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case []byte:
		return string(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
