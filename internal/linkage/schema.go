package linkage

import (
	"fmt"
	"strings"

	"tierlink/internal/plan"
	"tierlink/internal/recordset"
)

// layout maps A and B columns to their output names.
type layout struct {
	columns []string
	widthA  int
	widthB  int
}

func checkReserved(side string, set *recordset.Set, confidenceColumn string) error {
	for _, name := range set.Columns() {
		switch {
		case name == ColumnOrigIndexA, name == ColumnOrigIndexB, name == confidenceColumn:
			return wrap(ErrSchema, -1, "record set "+side, fmt.Sprintf("column %q is reserved", name), nil)
		case strings.HasPrefix(name, proxyPrefix):
			return wrap(ErrSchema, -1, "record set "+side, fmt.Sprintf("column %q uses reserved prefix %q", name, proxyPrefix), nil)
		}
	}
	return nil
}

func checkTier(index int, tier plan.Tier, a, b *recordset.Set) error {
	for j, c := range tier.Comparators {
		op := fmt.Sprintf("comparator %d", j)
		if !c.Filled() {
			return wrap(ErrSchema, index, op, "comparator slot is not filled", nil)
		}
		if !a.HasColumn(c.ColumnA) {
			return wrap(ErrSchema, index, op, fmt.Sprintf("record set A has no column %q", c.ColumnA), recordset.ErrUnknownColumn)
		}
		if !b.HasColumn(c.ColumnB) {
			return wrap(ErrSchema, index, op, fmt.Sprintf("record set B has no column %q", c.ColumnB), recordset.ErrUnknownColumn)
		}
	}
	return nil
}

func buildLayout(a, b *recordset.Set, opts Options) (layout, error) {
	colsA := a.Columns()
	colsB := b.Columns()
	shared := make(map[string]struct{})
	for _, name := range colsA {
		if b.HasColumn(name) {
			shared[name] = struct{}{}
		}
	}
	out := make([]string, 0, 3+len(colsA)+len(colsB))
	out = append(out, ColumnOrigIndexA, ColumnOrigIndexB, opts.ConfidenceColumn)
	for _, name := range colsA {
		if _, ok := shared[name]; ok {
			name += opts.SuffixA
		}
		out = append(out, name)
	}
	for _, name := range colsB {
		if _, ok := shared[name]; ok {
			name += opts.SuffixB
		}
		out = append(out, name)
	}
	if _, err := recordset.New(out); err != nil {
		return layout{}, wrap(ErrSchema, -1, "output", "suffixed column names collide", err)
	}
	return layout{columns: out, widthA: len(colsA), widthB: len(colsB)}, nil
}

func (l layout) row(aIndex, bIndex, confidence any, aValues, bValues []any) []any {
	values := make([]any, 0, len(l.columns))
	values = append(values, aIndex, bIndex, confidence)
	if aValues == nil {
		values = append(values, make([]any, l.widthA)...)
	} else {
		values = append(values, aValues[:l.widthA]...)
	}
	if bValues == nil {
		values = append(values, make([]any, l.widthB)...)
	} else {
		values = append(values, bValues[:l.widthB]...)
	}
	return values
}
