package query

import "strings"

// Classification is the read/write determination made for a query before
// execution.
type Classification int

const (
	// Read marks statements that only inspect the store.
	Read Classification = iota

	// Write marks statements that may mutate the store.
	Write
)

// String returns the classification name for logging.
func (c Classification) String() string {
	if c == Read {
		return "read"
	}
	return "write"
}

// leadingJunk is the set of characters stripped before inspecting a query:
// statement separators and whitespace that a naive prefix check would trip
// over (";;;SELECT ..." and friends).
const leadingJunk = "; \t\n\r"

// readKeywords are the first tokens that mark a statement as read-only.
//
// Known limitation: WITH is accepted even though a CTE can wrap a
// data-modifying statement in SQLite. Callers who need a hard guarantee
// must rely on read-only mode at the storage layer, not on this check.
var readKeywords = map[string]struct{}{
	"SELECT":  {},
	"PRAGMA":  {},
	"EXPLAIN": {},
	"WITH":    {},
}

// Classify determines whether a query is read-only or mutating.
//
// It repeatedly strips leading semicolons, whitespace, line comments
// ("-- ...") and block comments ("/* ... */") until a fixed point, then
// inspects the first whitespace-delimited token case-insensitively. Input
// that strips to nothing classifies as Read: an empty statement cannot
// mutate anything. An unterminated block comment consumes the rest of the
// input and is treated the same way.
func Classify(text string) Classification {
	cleaned := strings.TrimLeft(text, leadingJunk)

	for strings.HasPrefix(cleaned, "--") || strings.HasPrefix(cleaned, "/*") {
		if strings.HasPrefix(cleaned, "--") {
			if i := strings.IndexByte(cleaned, '\n'); i >= 0 {
				cleaned = cleaned[i+1:]
			} else {
				cleaned = ""
			}
		} else {
			if i := strings.Index(cleaned, "*/"); i >= 0 {
				cleaned = cleaned[i+2:]
			} else {
				cleaned = ""
			}
		}
		cleaned = strings.TrimLeft(cleaned, leadingJunk)
	}

	if cleaned == "" {
		return Read
	}

	first := cleaned
	if i := strings.IndexAny(first, " \t\n\r"); i >= 0 {
		first = first[:i]
	}

	if _, ok := readKeywords[strings.ToUpper(first)]; ok {
		return Read
	}
	return Write
}
