package query

// Result is the outcome of a successfully executed query: a ReadResult for
// row-producing statements or a WriteResult for mutations. The variants are
// sealed so callers switch on the concrete type instead of sniffing a map
// shape.
type Result interface {
	isResult()
}

// ReadResult holds the eagerly fetched output of a read-classified query.
//
// Invariants: Count == len(Rows), and every row has len(Columns) values.
// Fetching everything up front bounds memory by the result size and keeps
// cursor lifetimes inside the Execute call.
type ReadResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Count   int      `json:"count"`
}

func (ReadResult) isResult() {}

// ColumnIndex returns the position of the named column, or -1 if the
// result has no such column. It enables name-addressed access alongside
// the positional Rows slices.
func (r ReadResult) ColumnIndex(name string) int {
	for i, col := range r.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Value returns the value at the given row under the named column.
// The second return is false when the row or column does not exist.
func (r ReadResult) Value(row int, column string) (any, bool) {
	col := r.ColumnIndex(column)
	if col < 0 || row < 0 || row >= len(r.Rows) {
		return nil, false
	}
	return r.Rows[row][col], true
}

// WriteResult reports the engine's affected-row count for a mutation.
type WriteResult struct {
	Affected int64 `json:"affected"`
}

func (WriteResult) isResult() {}

// ColumnInfo describes one column of a table, as reported by the schema
// introspector.
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}
