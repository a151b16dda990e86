package query

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// busyTimeoutMs is how long SQLite waits on a locked database before
// reporting busy. Surfaced to the caller as a query error, never retried
// here.
const busyTimeoutMs = 5000

// Engine is the database manager facade: it holds the selected store path
// and the read-only flag, and runs every query through classification,
// a single transaction, and result projection.
//
// Thread Safety:
//   - Execute, ListTables, and TableInfo are safe to call from independent
//     call sites because no connection state is shared between calls.
//   - SetStore and SetReadOnly are single-writer: the host application is
//     expected to serialise mutations to them (in practice, its UI thread).
type Engine struct {
	path     string
	readOnly bool
	logger   Logger
}

// New creates an engine for the given store path. An empty path is valid;
// Execute fails with KindNoPathSet until SetStore is called.
func New(path string) *Engine {
	return &Engine{
		path:   path,
		logger: noopLogger{},
	}
}

// SetLogger injects the diagnostic sink. Passing nil restores the no-op
// sink.
func (e *Engine) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	e.logger = logger
}

// SetStore selects the SQLite file queries run against. Nothing is closed
// proactively: no handle survives between calls, so switching stores is a
// plain field update.
func (e *Engine) SetStore(path string) {
	e.path = path
	e.logger.Info("store selected", "path", path)
}

// StorePath returns the currently selected store path.
func (e *Engine) StorePath() string {
	return e.path
}

// SetReadOnly toggles read-only mode. While active, write-classified
// queries are rejected before the store is touched.
func (e *Engine) SetReadOnly(readOnly bool) {
	e.readOnly = readOnly
	e.logger.Info("read-only mode changed", "read_only", readOnly)
}

// ReadOnly reports whether read-only mode is active.
func (e *Engine) ReadOnly() bool {
	return e.readOnly
}

// Execute runs one SQL statement with optional bound parameters and returns
// the shaped result.
//
// The call is a full cycle: validate the store path, classify the query,
// enforce read-only mode, open a fresh handle, run exactly one transaction
// (commit on success, rollback on failure), project the result, close the
// handle. Failures are *Error values; see the Kind taxonomy in errors.go.
// Parameters are bound by the driver and never interpolated into the text.
func (e *Engine) Execute(ctx context.Context, text string, params ...any) (Result, error) {
	return traced(e.logger, "execute", func() (Result, error) {
		return e.execute(ctx, text, params)
	})
}

// execute is the untraced body of Execute, reused by the introspector.
func (e *Engine) execute(ctx context.Context, text string, params []any) (Result, error) {
	if e.path == "" {
		return nil, newError(KindNoPathSet, "no database selected")
	}
	if _, err := os.Stat(e.path); err != nil {
		return nil, newError(KindStoreNotFound, "database file not found: %s", e.path)
	}

	class := Classify(text)
	if e.readOnly && class == Write {
		return nil, newError(KindReadOnlyViolation, "read-only mode: write queries are blocked")
	}

	var result Result
	err := e.runInTransaction(ctx, func(tx *sql.Tx) error {
		var txErr error
		if class == Read {
			result, txErr = projectRead(ctx, tx, text, params)
		} else {
			result, txErr = projectWrite(ctx, tx, text, params)
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}

	if class == Read {
		e.logger.Info("read query returned rows", "rows", result.(ReadResult).Count)
	} else {
		e.logger.Info("write query affected rows", "affected", result.(WriteResult).Affected)
	}
	return result, nil
}

// withConn opens a fresh handle to the store, runs body, and guarantees the
// handle is closed on every exit path. The handle is capped at one
// underlying connection so a multi-statement transaction cannot straddle
// connections.
func (e *Engine) withConn(ctx context.Context, body func(db *sql.DB) error) error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", e.path, busyTimeoutMs)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return newError(KindInternal, "opening database: %v", err)
	}
	defer db.Close() //nolint:errcheck // handle is per-call, nothing to salvage

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return newError(KindInternal, "verifying database connection: %v", err)
	}

	return body(db)
}

// runInTransaction wraps one unit of work in commit-or-rollback semantics.
// On any failure raised by body the transaction is rolled back and the same
// failure is returned; no partial commit is visible outside this boundary.
func (e *Engine) runInTransaction(ctx context.Context, body func(tx *sql.Tx) error) error {
	return e.withConn(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return newError(KindInternal, "starting transaction: %v", err)
		}

		if err := body(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				e.logger.Warn("rollback failed", "error", rbErr)
			}
			e.logger.Debug("transaction rolled back", "error", err)
			return err
		}

		if err := tx.Commit(); err != nil {
			return storageError(err)
		}
		e.logger.Debug("transaction committed")
		return nil
	})
}

// projectRead executes a read-classified statement and eagerly fetches all
// rows. Column names come from the statement's result description; TEXT and
// BLOB values arrive as []byte from the driver and are normalised to string
// so results are directly comparable and serialisable.
func projectRead(ctx context.Context, tx *sql.Tx, text string, params []any) (ReadResult, error) {
	rows, err := tx.QueryContext(ctx, text, params...)
	if err != nil {
		return ReadResult{}, storageError(err)
	}
	defer rows.Close() //nolint:errcheck // fully drained below

	columns, err := rows.Columns()
	if err != nil {
		return ReadResult{}, storageError(err)
	}

	result := ReadResult{
		Columns: columns,
		Rows:    [][]any{},
	}

	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return ReadResult{}, storageError(err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return ReadResult{}, storageError(err)
	}

	result.Count = len(result.Rows)
	return result, nil
}

// projectWrite executes a write-classified statement and reports the
// engine's affected-row count.
func projectWrite(ctx context.Context, tx *sql.Tx, text string, params []any) (WriteResult, error) {
	res, err := tx.ExecContext(ctx, text, params...)
	if err != nil {
		return WriteResult{}, storageError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return WriteResult{}, newError(KindInternal, "reading affected rows: %v", err)
	}
	return WriteResult{Affected: affected}, nil
}
