package query

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// newTestEngine creates an engine backed by an empty SQLite file in a
// temporary directory. A zero-byte file is a valid empty database.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("creating test database file: %v", err)
	}
	return New(path)
}

// mustExecute runs a statement that the test requires to succeed.
func mustExecute(t *testing.T, e *Engine, text string, params ...any) Result {
	t.Helper()

	result, err := e.Execute(context.Background(), text, params...)
	if err != nil {
		t.Fatalf("Execute(%q) error = %v", text, err)
	}
	return result
}

func TestExecute_NoPathSet(t *testing.T) {
	e := New("")

	_, err := e.Execute(context.Background(), "SELECT 1")
	if err == nil {
		t.Fatal("Execute() error = nil, want no-path failure")
	}
	if kind := KindOf(err); kind != KindNoPathSet {
		t.Errorf("KindOf(err) = %v, want %v", kind, KindNoPathSet)
	}
}

func TestExecute_StoreNotFound(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "missing.db"))

	_, err := e.Execute(context.Background(), "SELECT 1")
	if err == nil {
		t.Fatal("Execute() error = nil, want store-not-found failure")
	}
	if kind := KindOf(err); kind != KindStoreNotFound {
		t.Errorf("KindOf(err) = %v, want %v", kind, KindStoreNotFound)
	}
}

func TestExecute_RoundTrip(t *testing.T) {
	e := newTestEngine(t)

	mustExecute(t, e, "CREATE TABLE t (id INTEGER, name TEXT)")
	mustExecute(t, e, "INSERT INTO t VALUES (1, 'Alice')")

	result := mustExecute(t, e, "SELECT * FROM t")
	read, ok := result.(ReadResult)
	if !ok {
		t.Fatalf("result = %T, want ReadResult", result)
	}

	if len(read.Columns) != 2 || read.Columns[0] != "id" || read.Columns[1] != "name" {
		t.Errorf("Columns = %v, want [id name]", read.Columns)
	}
	if read.Count != 1 || len(read.Rows) != 1 {
		t.Fatalf("Count = %d, len(Rows) = %d, want 1 and 1", read.Count, len(read.Rows))
	}
	if id, _ := read.Rows[0][0].(int64); id != 1 {
		t.Errorf("Rows[0][0] = %v, want 1", read.Rows[0][0])
	}
	if name, _ := read.Rows[0][1].(string); name != "Alice" {
		t.Errorf("Rows[0][1] = %v, want Alice", read.Rows[0][1])
	}
}

func TestExecute_BoundParameters(t *testing.T) {
	e := newTestEngine(t)

	mustExecute(t, e, "CREATE TABLE t (id INTEGER, name TEXT)")

	result := mustExecute(t, e, "INSERT INTO t VALUES (?, ?)", 7, "Bob")
	write, ok := result.(WriteResult)
	if !ok {
		t.Fatalf("result = %T, want WriteResult", result)
	}
	if write.Affected != 1 {
		t.Errorf("Affected = %d, want 1", write.Affected)
	}

	read := mustExecute(t, e, "SELECT name FROM t WHERE id = ?", 7).(ReadResult)
	if read.Count != 1 || read.Rows[0][0] != "Bob" {
		t.Errorf("SELECT with param = %+v, want one row [Bob]", read)
	}
}

func TestExecute_WriteAffectedCount(t *testing.T) {
	e := newTestEngine(t)

	mustExecute(t, e, "CREATE TABLE t (id INTEGER, flag INTEGER)")
	mustExecute(t, e, "INSERT INTO t VALUES (1, 0)")
	mustExecute(t, e, "INSERT INTO t VALUES (2, 0)")
	mustExecute(t, e, "INSERT INTO t VALUES (3, 1)")

	write := mustExecute(t, e, "UPDATE t SET flag = 1 WHERE flag = 0").(WriteResult)
	if write.Affected != 2 {
		t.Errorf("Affected = %d, want 2", write.Affected)
	}
}

func TestExecute_ReadOnlyMode(t *testing.T) {
	e := newTestEngine(t)

	mustExecute(t, e, "CREATE TABLE t (id INTEGER, name TEXT)")
	mustExecute(t, e, "INSERT INTO t VALUES (1, 'Alice')")

	e.SetReadOnly(true)

	_, err := e.Execute(context.Background(), "INSERT INTO t VALUES (2, 'Bob')")
	if err == nil {
		t.Fatal("Execute() error = nil, want read-only violation")
	}
	if kind := KindOf(err); kind != KindReadOnlyViolation {
		t.Errorf("KindOf(err) = %v, want %v", kind, KindReadOnlyViolation)
	}

	// Reads still work, and the blocked write left no trace.
	read := mustExecute(t, e, "SELECT * FROM t").(ReadResult)
	if read.Count != 1 {
		t.Errorf("Count = %d after blocked write, want 1", read.Count)
	}

	e.SetReadOnly(false)
	mustExecute(t, e, "INSERT INTO t VALUES (2, 'Bob')")
}

func TestExecute_SyntaxErrorIsQueryError(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Execute(context.Background(), "SELEKT 1 FROM nowhere")
	if err == nil {
		t.Fatal("Execute() error = nil, want syntax failure")
	}
	if kind := KindOf(err); kind != KindQuery {
		t.Errorf("KindOf(err) = %v, want %v", kind, KindQuery)
	}
	if err.Error() == "" {
		t.Error("expected the driver diagnostic to pass through")
	}
}

// TestExecute_RollbackOnPartialFailure: two inserts issued as one call where
// the second violates a constraint must leave the store in the pre-call
// state.
func TestExecute_RollbackOnPartialFailure(t *testing.T) {
	e := newTestEngine(t)

	mustExecute(t, e, "CREATE TABLE t (id INTEGER PRIMARY KEY)")

	_, err := e.Execute(context.Background(),
		"INSERT INTO t VALUES (1); INSERT INTO t VALUES (1);")
	if err == nil {
		t.Fatal("Execute() error = nil, want constraint violation")
	}
	if kind := KindOf(err); kind != KindQuery {
		t.Errorf("KindOf(err) = %v, want %v", kind, KindQuery)
	}

	read := mustExecute(t, e, "SELECT * FROM t").(ReadResult)
	if read.Count != 0 {
		t.Errorf("Count = %d after rollback, want 0 (no partial insert)", read.Count)
	}
}

func TestSetStore_SwitchesTargets(t *testing.T) {
	e := newTestEngine(t)
	mustExecute(t, e, "CREATE TABLE first_db (id INTEGER)")

	otherPath := filepath.Join(t.TempDir(), "other.db")
	if err := os.WriteFile(otherPath, nil, 0600); err != nil {
		t.Fatalf("creating second database file: %v", err)
	}

	e.SetStore(otherPath)
	if e.StorePath() != otherPath {
		t.Errorf("StorePath() = %q, want %q", e.StorePath(), otherPath)
	}

	tables, err := e.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("ListTables() on fresh store = %v, want empty", tables)
	}
}

func TestReadResult_NamedAccess(t *testing.T) {
	e := newTestEngine(t)

	mustExecute(t, e, "CREATE TABLE t (id INTEGER, name TEXT)")
	mustExecute(t, e, "INSERT INTO t VALUES (1, 'Alice')")

	read := mustExecute(t, e, "SELECT * FROM t").(ReadResult)

	if idx := read.ColumnIndex("name"); idx != 1 {
		t.Errorf("ColumnIndex(name) = %d, want 1", idx)
	}
	if idx := read.ColumnIndex("missing"); idx != -1 {
		t.Errorf("ColumnIndex(missing) = %d, want -1", idx)
	}

	v, ok := read.Value(0, "name")
	if !ok || v != "Alice" {
		t.Errorf("Value(0, name) = %v, %v, want Alice, true", v, ok)
	}
	if _, ok := read.Value(0, "missing"); ok {
		t.Error("Value(0, missing) ok = true, want false")
	}
	if _, ok := read.Value(5, "name"); ok {
		t.Error("Value(5, name) ok = true, want false")
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if kind := KindOf(os.ErrPermission); kind != KindInternal {
		t.Errorf("KindOf(os.ErrPermission) = %v, want %v", kind, KindInternal)
	}
}

// capturingLogger records log calls for assertions.
type capturingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *capturingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *capturingLogger) Debug(msg string, _ ...any) { l.record(msg) }
func (l *capturingLogger) Info(msg string, _ ...any)  { l.record(msg) }
func (l *capturingLogger) Warn(msg string, _ ...any)  { l.record(msg) }
func (l *capturingLogger) Error(msg string, _ ...any) { l.record(msg) }

func (l *capturingLogger) contains(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m == msg {
			return true
		}
	}
	return false
}

// TestTracing verifies the instrumentation wrapper logs entry and exit for
// public operations through the injected sink.
func TestTracing(t *testing.T) {
	e := newTestEngine(t)
	sink := &capturingLogger{}
	e.SetLogger(sink)

	mustExecute(t, e, "SELECT 1")

	if !sink.contains("operation started") {
		t.Error("expected an entry trace for execute")
	}
	if !sink.contains("operation finished") {
		t.Error("expected an exit trace for execute")
	}

	e.SetLogger(nil) // restores the no-op sink without panicking
	mustExecute(t, e, "SELECT 1")
}
