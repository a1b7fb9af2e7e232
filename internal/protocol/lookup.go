package protocol

import "strings"

// Lookup resolves key in a lowercase-keyed table. Keys are matched after
// trimming and lowering; a miss is an UnsupportedVariantError naming table.
// Adding a variant means adding a table entry.
func Lookup[T any](table map[string]T, name, key string) (T, error) {
	v, ok := table[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		var zero T
		return zero, &UnsupportedVariantError{Table: name, Key: key}
	}
	return v, nil
}
