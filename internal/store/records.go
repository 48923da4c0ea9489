package store

import (
	"context"
	"fmt"
	"strings"

	"tierlink/internal/recordset"
	"tierlink/internal/textutil"
)

// LoadQuery runs a SELECT and returns its rows as a record set. When
// indexColumn is set, that column supplies the origin indices and is left
// out of the set; otherwise rows are indexed by position.
func (s *Store) LoadQuery(ctx context.Context, query, indexColumn string, args ...any) (*recordset.Set, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("run source query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read source columns: %w", err)
	}

	indexPos := -1
	kept := make([]string, 0, len(columns))
	for i, name := range columns {
		if indexColumn != "" && name == indexColumn {
			indexPos = i
			continue
		}
		kept = append(kept, name)
	}
	if indexColumn != "" && indexPos < 0 {
		return nil, fmt.Errorf("index column %q: %w", indexColumn, recordset.ErrUnknownColumn)
	}

	set, err := recordset.New(kept)
	if err != nil {
		return nil, fmt.Errorf("source schema: %w", err)
	}

	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		values := make([]any, 0, len(kept))
		for i, v := range raw {
			if i == indexPos {
				continue
			}
			values = append(values, fromSQL(v))
		}
		if indexPos < 0 {
			err = set.Append(values...)
		} else {
			index, ok := raw[indexPos].(int64)
			if !ok {
				return nil, fmt.Errorf("index column %q holds %T, want integer", indexColumn, raw[indexPos])
			}
			err = set.AppendIndexed(index, values...)
		}
		if err != nil {
			return nil, fmt.Errorf("load source row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}
	return set, nil
}

// LoadTable loads every row of table ordered by rowid.
func (s *Store) LoadTable(ctx context.Context, table, indexColumn string) (*recordset.Set, error) {
	name := textutil.SanitizeIdentifier(table, "")
	if name == "" {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return s.LoadQuery(ctx, "SELECT * FROM "+quoteIdent(name)+" ORDER BY rowid", indexColumn)
}

// SaveResult writes set into table, replacing any existing table of that
// name. The table name is sanitized into a plain identifier, which is
// returned. Each row's origin index is stored in a leading row_index column.
func (s *Store) SaveResult(ctx context.Context, table string, set *recordset.Set) (string, error) {
	name := textutil.SanitizeIdentifier(table, "linkage_result")
	columns := set.Columns()

	defs := make([]string, 0, len(columns)+1)
	defs = append(defs, quoteIdent("row_index")+" INTEGER PRIMARY KEY")
	for _, col := range columns {
		defs = append(defs, quoteIdent(col))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return "", fmt.Errorf("drop table %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))); err != nil {
		return "", fmt.Errorf("create table %s: %w", name, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), makePlaceholders(len(columns)+1))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns)+1)
	for _, row := range set.Rows() {
		args[0] = row.Index
		for i, v := range row.Values {
			args[i+1] = toSQL(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return "", fmt.Errorf("insert row %d: %w", row.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save: %w", err)
	}
	return name, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

func fromSQL(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func toSQL(v any) any {
	switch t := v.(type) {
	case nil, string, int64, float64, bool, []byte:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	default:
		s, _ := recordset.AsString(t)
		return s
	}
}
