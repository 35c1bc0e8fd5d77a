package table

import "fmt"

// Index holds the row labels of a Table. Each row carries one label per level;
// a table without levels behaves like an unnamed ordinal index.
type Index struct {
	Names  []string
	Labels [][]any
}

// Levels returns the number of index levels
func (ix Index) Levels() int {
	return len(ix.Names)
}

// Table is a row-oriented, heterogeneously typed data table.
// Cells may be nil, any Go numeric type, string, bool, time.Time,
// *big.Int, decimal.Decimal or json.Number.
type Table struct {
	Columns []string
	Index   Index
	Rows    [][]any
}

// New creates an empty table with the given index level names and columns
func New(indexNames []string, columns ...string) *Table {
	return &Table{
		Columns: columns,
		Index:   Index{Names: indexNames},
	}
}

// AppendRow adds a row with its index labels.
// labels must have one entry per index level and values one entry per column.
func (t *Table) AppendRow(labels []any, values ...any) error {
	if len(labels) != t.Index.Levels() {
		return fmt.Errorf("row has %d index labels, table has %d levels", len(labels), t.Index.Levels())
	}
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}

	t.Index.Labels = append(t.Index.Labels, labels)
	t.Rows = append(t.Rows, values)
	return nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}
