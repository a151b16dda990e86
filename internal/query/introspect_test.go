package query

import (
	"context"
	"testing"
)

// TestListTables_LexicographicOrder: creation order must not leak into the
// listing.
func TestListTables_LexicographicOrder(t *testing.T) {
	e := newTestEngine(t)

	mustExecute(t, e, "CREATE TABLE zebra (id INTEGER)")
	mustExecute(t, e, "CREATE TABLE alpha (id INTEGER)")
	mustExecute(t, e, "CREATE TABLE mango (id INTEGER)")

	tables, err := e.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}

	want := []string{"alpha", "mango", "zebra"}
	if len(tables) != len(want) {
		t.Fatalf("ListTables() = %v, want %v", tables, want)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Errorf("tables[%d] = %q, want %q", i, tables[i], want[i])
		}
	}
}

func TestListTables_EmptyStore(t *testing.T) {
	e := newTestEngine(t)

	tables, err := e.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("ListTables() = %v, want empty", tables)
	}
}

func TestListTables_NoPathSet(t *testing.T) {
	e := New("")

	_, err := e.ListTables(context.Background())
	if err == nil {
		t.Fatal("ListTables() error = nil, want no-path failure")
	}
	if kind := KindOf(err); kind != KindNoPathSet {
		t.Errorf("KindOf(err) = %v, want %v", kind, KindNoPathSet)
	}
}

func TestTableInfo(t *testing.T) {
	e := newTestEngine(t)

	mustExecute(t, e, `CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		note TEXT
	)`)

	columns, err := e.TableInfo(context.Background(), "users")
	if err != nil {
		t.Fatalf("TableInfo() error = %v", err)
	}
	if len(columns) != 3 {
		t.Fatalf("len(columns) = %d, want 3", len(columns))
	}

	id := columns[0]
	if id.Name != "id" || id.Type != "INTEGER" || !id.PrimaryKey {
		t.Errorf("columns[0] = %+v, want id INTEGER primary key", id)
	}

	name := columns[1]
	if name.Name != "name" || name.Type != "TEXT" || name.Nullable || name.PrimaryKey {
		t.Errorf("columns[1] = %+v, want name TEXT not-null non-pk", name)
	}

	note := columns[2]
	if note.Name != "note" || !note.Nullable {
		t.Errorf("columns[2] = %+v, want note nullable", note)
	}
}

// TestTableInfo_InvalidIdentifier: best-effort lookup policy — an invalid
// name yields an empty slice without touching the store and without error.
func TestTableInfo_InvalidIdentifier(t *testing.T) {
	e := newTestEngine(t)

	for _, name := range []string{"drop;x", "123t", "", "users)--"} {
		columns, err := e.TableInfo(context.Background(), name)
		if err != nil {
			t.Errorf("TableInfo(%q) error = %v, want nil", name, err)
		}
		if len(columns) != 0 {
			t.Errorf("TableInfo(%q) = %v, want empty", name, columns)
		}
	}
}

func TestTableInfo_UnknownTable(t *testing.T) {
	e := newTestEngine(t)

	// A valid identifier for a table that does not exist: PRAGMA returns no
	// rows, so the lookup is empty but not an error.
	columns, err := e.TableInfo(context.Background(), "ghosts")
	if err != nil {
		t.Fatalf("TableInfo() error = %v", err)
	}
	if len(columns) != 0 {
		t.Errorf("TableInfo(ghosts) = %v, want empty", columns)
	}
}

func TestTableInfo_EngineFailurePropagates(t *testing.T) {
	e := New("")

	_, err := e.TableInfo(context.Background(), "users")
	if err == nil {
		t.Fatal("TableInfo() error = nil, want no-path failure")
	}
	if kind := KindOf(err); kind != KindNoPathSet {
		t.Errorf("KindOf(err) = %v, want %v", kind, KindNoPathSet)
	}
}
