package query

import "testing"

func TestClassify_Reads(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"plain select", "SELECT * FROM users"},
		{"lowercase select", "select * from users"},
		{"leading spaces", "  SELECT * FROM users"},
		{"leading tabs and newlines", "\n\t  SELECT * FROM users"},
		{"pragma", "PRAGMA table_info(users)"},
		{"explain", "EXPLAIN SELECT * FROM users"},
		{"cte", "WITH t AS (SELECT 1) SELECT * FROM t"},
		{"leading semicolons", ";;;SELECT * FROM users"},
		{"semicolons and spaces", "; ; ;\tSELECT 1"},
		{"line comment", "-- comment\nSELECT * FROM users"},
		{"block comment", "/* block */ SELECT * FROM users"},
		{"stacked comments", "-- one\n/* two */ -- three\nSELECT 1"},
		{"comment then semicolons", "/* c */;;SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.query); got != Read {
				t.Errorf("Classify(%q) = %v, want Read", tt.query, got)
			}
		})
	}
}

func TestClassify_Writes(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"insert", "INSERT INTO users VALUES (1)"},
		{"update", "UPDATE users SET name='x'"},
		{"delete", "DELETE FROM users"},
		{"drop", "DROP TABLE users"},
		{"create", "CREATE TABLE t (id INTEGER)"},
		{"semicolon-prefixed insert", ";;; INSERT INTO users VALUES (1)"},
		{"whitespace-prefixed delete", "\n\t  DELETE FROM users"},
		{"comment-prefixed drop", "-- harmless\nDROP TABLE users"},
		{"block-comment-prefixed update", "/* note */ UPDATE users SET name='x'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.query); got != Write {
				t.Errorf("Classify(%q) = %v, want Write", tt.query, got)
			}
		})
	}
}

// TestClassify_EmptyRemainder: anything that strips to nothing is a no-op
// and classifies as Read.
func TestClassify_EmptyRemainder(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"empty string", ""},
		{"only whitespace", " \t\n "},
		{"only semicolons", ";;;"},
		{"only line comment", "-- nothing else"},
		{"only block comment", "/* nothing else */"},
		{"unterminated block comment", "/* consumes the rest DELETE FROM t"},
		{"comment soup", ";; -- a\n/* b */ ;;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.query); got != Read {
				t.Errorf("Classify(%q) = %v, want Read", tt.query, got)
			}
		})
	}
}

// TestClassify_CTEWriteGap documents the known limitation: a WITH-prefixed
// statement classifies as Read even when the CTE wraps a data-modifying
// statement. Intentionally not asserted either way; read-only enforcement
// for such inputs is a gap, not a contract.
func TestClassify_CTEWriteGap(t *testing.T) {
	t.Skip("known gap: WITH-wrapped DML (e.g. WITH t AS (...) DELETE FROM x) is classified Read")
}

func TestClassificationString(t *testing.T) {
	if Read.String() != "read" {
		t.Errorf("Read.String() = %q, want read", Read.String())
	}
	if Write.String() != "write" {
		t.Errorf("Write.String() = %q, want write", Write.String())
	}
}
