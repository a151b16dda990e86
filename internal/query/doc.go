// Package query implements NanoServer's SQLite query execution engine.
//
// The engine accepts arbitrary user-typed SQL, classifies it as read-only
// or mutating despite adversarial formatting (leading semicolons, comments,
// whitespace), runs it inside a single commit-or-rollback transaction, and
// shapes the outcome into a tagged result: ReadResult for row-producing
// statements, WriteResult for mutations. An optional read-only mode rejects
// write-classified queries before the store is touched.
//
// Resource model: the engine caches no connection. Every Execute call opens
// a fresh handle, runs exactly one transaction, and closes the handle before
// returning. The only state shared between calls is the store path and the
// read-only flag; callers are expected to serialise mutations to those two
// (a single UI thread in practice) — the engine adds no lock of its own.
// Concurrent calls against the same file rely on SQLite's own locking.
//
// Failures are returned as *Error values carrying a Kind from the taxonomy
// in errors.go; storage-engine diagnostics pass through unmodified.
//
// Usage:
//
//	eng := query.New("/srv/site/app.db")
//	eng.SetLogger(log)
//
//	res, err := eng.Execute(ctx, "SELECT * FROM users WHERE id = ?", 1)
//	if err != nil {
//	    var qerr *query.Error
//	    if errors.As(err, &qerr) {
//	        // qerr.Kind distinguishes rejection from engine failure
//	    }
//	}
//	switch r := res.(type) {
//	case query.ReadResult:
//	    // r.Columns, r.Rows, r.Count
//	case query.WriteResult:
//	    // r.Affected
//	}
package query
