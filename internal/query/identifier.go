package query

import "regexp"

// identifierPattern matches safe SQL identifiers: a letter or underscore
// followed by letters, digits, or underscores.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to embed in a statement
// that cannot be parameterised, such as PRAGMA table_info. Anything that
// fails this check must never be concatenated into SQL text.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
