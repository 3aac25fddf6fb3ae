package bytecode

// StringTable interns strings and hands out stable integer handles. Held
// strings live as long as the table; referenced strings are counted and
// released individually. It implements the lexer's Interner.
type StringTable struct {
	index   map[string]int
	entries []stringEntry
}

type stringEntry struct {
	value string
	refs  int
	held  bool
}

// NewStringTable returns an empty table.
func NewStringTable() *StringTable {
	return &StringTable{index: map[string]int{}}
}

func (t *StringTable) lookup(s string) int {
	if h, ok := t.index[s]; ok {
		return h
	}
	h := len(t.entries)
	t.entries = append(t.entries, stringEntry{value: s})
	t.index[s] = h
	return h
}

// Hold interns s for the lifetime of the table.
func (t *StringTable) Hold(s string) int {
	h := t.lookup(s)
	t.entries[h].held = true
	return h
}

// Ref interns s and takes one reference to it.
func (t *StringTable) Ref(s string) int {
	h := t.lookup(s)
	t.entries[h].refs++
	return h
}

// Release drops one reference taken with Ref.
func (t *StringTable) Release(h int) {
	if h < 0 || h >= len(t.entries) || t.entries[h].refs == 0 {
		return
	}
	t.entries[h].refs--
}

// Live returns true if the string is held or still referenced.
func (t *StringTable) Live(h int) bool {
	if h < 0 || h >= len(t.entries) {
		return false
	}
	e := t.entries[h]
	return e.held || e.refs > 0
}

// Refs returns the reference count of a handle.
func (t *StringTable) Refs(h int) int {
	if h < 0 || h >= len(t.entries) {
		return 0
	}
	return t.entries[h].refs
}

// Len returns the number of interned strings.
func (t *StringTable) Len() int {
	return len(t.entries)
}

// At returns the string with the given handle.
func (t *StringTable) At(h int) string {
	return t.entries[h].value
}

// Strings returns the table contents indexed by handle.
func (t *StringTable) Strings() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.value
	}
	return out
}
