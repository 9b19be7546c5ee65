package keyvalues

import (
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/vk/metaclass/internal/member"
	"github.com/zclconf/go-cty/cty"
)

// Table is an ordered-by-key string map. Changed is emitted with the key and
// the new value after every assignment; deletions emit an empty value.
type Table struct {
	mu      sync.Mutex
	entries map[string]string

	Changed *member.Signal
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries: make(map[string]string),
		Changed: member.NewSignal(cty.String, cty.String),
	}
}

// FromEnvironment creates a table holding the process environment.
func FromEnvironment() *Table {
	t := NewTable()
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			t.entries[pair[0]] = pair[1]
		}
	}
	return t
}

// Get returns the value of key.
func (t *Table) Get(key string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[key]
	return v, ok
}

// Set assigns value to key.
func (t *Table) Set(key, value string) {
	t.mu.Lock()
	t.entries[key] = value
	t.mu.Unlock()
	_ = t.Changed.Emit(cty.StringVal(key), cty.StringVal(value))
}

// Delete removes key and reports whether it was present.
func (t *Table) Delete(key string) bool {
	t.mu.Lock()
	_, ok := t.entries[key]
	delete(t.entries, key)
	t.mu.Unlock()
	if ok {
		_ = t.Changed.Emit(cty.StringVal(key), cty.StringVal(""))
	}
	return ok
}

// Replace swaps the whole content without emitting per-key events.
func (t *Table) Replace(entries map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = maps.Clone(entries)
	if t.entries == nil {
		t.entries = make(map[string]string)
	}
}

// Entries returns a copy of the content.
func (t *Table) Entries() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.entries)
}

// Keys returns the sorted keys.
func (t *Table) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var keys []string
	for k := range t.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
