package query

import (
	"context"
	"fmt"
)

// catalogQuery lists user tables from SQLite's catalog in lexicographic
// order, so the result is deterministic across calls.
const catalogQuery = "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name"

// PRAGMA table_info column positions: cid, name, type, notnull, dflt_value, pk.
const (
	tableInfoName    = 1
	tableInfoType    = 2
	tableInfoNotNull = 3
	tableInfoPK      = 5
)

// ListTables returns the names of all user tables, ordered by name.
// It goes through the normal execute path, so store-path and read-only
// rules apply unchanged.
func (e *Engine) ListTables(ctx context.Context) ([]string, error) {
	return traced(e.logger, "list_tables", func() ([]string, error) {
		result, err := e.execute(ctx, catalogQuery, nil)
		if err != nil {
			return nil, err
		}

		read := result.(ReadResult)
		names := make([]string, 0, read.Count)
		for _, row := range read.Rows {
			if name, ok := row[0].(string); ok {
				names = append(names, name)
			}
		}
		return names, nil
	})
}

// TableInfo returns column metadata for the named table.
//
// The name is validated before it is embedded in the PRAGMA statement,
// since PRAGMA arguments cannot be bound. An invalid name yields an empty
// slice and no error: this is a best-effort lookup for display, and callers
// that need a hard failure should run ValidIdentifier themselves first.
// Engine failures (no path set, missing file, storage errors) do propagate.
func (e *Engine) TableInfo(ctx context.Context, name string) ([]ColumnInfo, error) {
	return traced(e.logger, "table_info", func() ([]ColumnInfo, error) {
		if !ValidIdentifier(name) {
			e.logger.Warn("invalid table identifier", "name", name)
			return []ColumnInfo{}, nil
		}

		result, err := e.execute(ctx, fmt.Sprintf("PRAGMA table_info(%s)", name), nil)
		if err != nil {
			return nil, err
		}

		read := result.(ReadResult)
		columns := make([]ColumnInfo, 0, read.Count)
		for _, row := range read.Rows {
			columns = append(columns, ColumnInfo{
				Name:       asString(row[tableInfoName]),
				Type:       asString(row[tableInfoType]),
				Nullable:   asInt(row[tableInfoNotNull]) == 0,
				PrimaryKey: asInt(row[tableInfoPK]) != 0,
			})
		}
		return columns, nil
	})
}

// asString extracts a string cell from a projected row.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt extracts an integer cell from a projected row.
func asInt(v any) int64 {
	n, _ := v.(int64)
	return n
}
