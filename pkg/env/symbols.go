package env

import (
	"github.com/thomasrohde/lisp0/pkg/sexpr"
)

// Entry is a symbol table binding. Value.Tag is the entry's type; a
// TagUndefined value marks a symbol that was read but never assigned.
type Entry struct {
	Index int
	Name  string
	Value *sexpr.Value
}

func (en *Entry) replace(value *sexpr.Value) {
	old := en.Value
	en.Value = value.DeepCopy()
	if old != nil && old.Tag == sexpr.TagSExpr {
		old.Cell.Release(true)
	}
}

// SymbolTable maps names to entries. Indices are assigned sequentially from
// the table's offset.
type SymbolTable struct {
	offset  int
	entries []*Entry
	byName  map[string]*Entry
}

// NewSymbolTable creates an empty table whose first index is offset.
func NewSymbolTable(offset int) *SymbolTable {
	return &SymbolTable{
		offset: offset,
		byName: make(map[string]*Entry),
	}
}

// Len returns the number of entries.
func (t *SymbolTable) Len() int {
	return len(t.entries)
}

// Offset returns the index of the table's first entry.
func (t *SymbolTable) Offset() int {
	return t.offset
}

// Install creates or overwrites the entry called name with a deep copy of value.
func (t *SymbolTable) Install(name string, value *sexpr.Value) *Entry {
	if value == nil {
		value = sexpr.Undefined()
	}
	if entry, ok := t.byName[name]; ok {
		entry.replace(value)
		return entry
	}
	entry := &Entry{
		Index: t.offset + len(t.entries),
		Name:  name,
		Value: value.DeepCopy(),
	}
	t.entries = append(t.entries, entry)
	t.byName[name] = entry
	return entry
}

// Lookup finds an entry by name in this table only.
func (t *SymbolTable) Lookup(name string) (*Entry, bool) {
	entry, ok := t.byName[name]
	return entry, ok
}

// LookupIndex finds an entry by index in this table only.
func (t *SymbolTable) LookupIndex(index int) (*Entry, bool) {
	i := index - t.offset
	if i < 0 || i >= len(t.entries) {
		return nil, false
	}
	return t.entries[i], true
}

// Entries returns the entries in index order.
func (t *SymbolTable) Entries() []*Entry {
	return t.entries
}

func (t *SymbolTable) adopt(entry *Entry) {
	t.entries = append(t.entries, entry)
	t.byName[entry.Name] = entry
}
