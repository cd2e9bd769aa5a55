package model

import "strings"

// enumTable maps enum values to their canonical wire names. Parsing is
// lenient: case, surrounding whitespace, spaces and hyphens are ignored, and
// names that match nothing resolve to the table's fallback value.
type enumTable[E comparable] struct {
	fallback E
	names    map[E]string
	values   map[string]E
}

func newEnumTable[E comparable](fallback E, names map[E]string, aliases map[string]E) *enumTable[E] {
	t := &enumTable[E]{
		fallback: fallback,
		names:    names,
		values:   make(map[string]E, len(names)+len(aliases)),
	}
	for v, n := range names {
		t.values[normalizeName(n)] = v
	}
	for n, v := range aliases {
		t.values[normalizeName(n)] = v
	}
	return t
}

func (t *enumTable[E]) name(v E) string {
	if n, ok := t.names[v]; ok {
		return n
	}
	return t.names[t.fallback]
}

func (t *enumTable[E]) lookup(s string) (E, bool) {
	v, ok := t.values[normalizeName(s)]
	if !ok {
		return t.fallback, false
	}
	return v, true
}

func (t *enumTable[E]) parse(s string) E {
	v, _ := t.lookup(s)
	return v
}

func normalizeName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
