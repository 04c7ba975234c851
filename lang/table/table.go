// Package table implements the open-addressed hash table used for both the
// globals table and the string-intern pool.
package table

import "github.com/mna/loxvm/lang/value"

const (
	initialCapacity = 8
	maxLoad         = 0.75
)

type entry struct {
	key *value.ObjString
	val value.Value
}

func (e *entry) empty() bool     { return e.key == nil && e.val.IsNil() }
func (e *entry) tombstone() bool { return e.key == nil && !e.val.IsNil() }

// Table is an open-addressed hash table with linear probing, keyed by
// interned-string identity. Slot state is encoded without an extra field:
// empty = key absent, value Nil; tombstone = key absent, value Bool(true);
// occupied = key present. The zero value is an empty, usable Table.
type Table struct {
	entries []entry
	count   int // occupied slots plus tombstones
}

// Len reports the number of live key/value pairs, excluding tombstones.
func (t *Table) Len() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].key != nil {
			n++
		}
	}
	return n
}

func findEntry(entries []entry, key *value.ObjString) *entry {
	capacity := len(entries)
	index := key.Hash % uint32(capacity)
	var tombstone *entry

	for {
		e := &entries[index]
		switch {
		case e.key == nil:
			if e.empty() {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		index = (index + 1) % uint32(capacity)
	}
}

// Get looks up key and reports whether it was found.
func (t *Table) Get(key *value.ObjString) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return value.Nil, false
	}
	return e.val, true
}

func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)
	for i := range entries {
		entries[i] = entry{key: nil, val: value.Nil}
	}

	t.count = 0
	for i := range t.entries {
		old := &t.entries[i]
		if old.key == nil {
			continue
		}
		dest := findEntry(entries, old.key)
		dest.key = old.key
		dest.val = old.val
		t.count++
	}
	t.entries = entries
}

// Set inserts or updates key's value, growing the table first if doing so
// would push the load factor past 0.75. It returns true iff key was not
// already present, including when the new entry reuses a tombstone; reusing
// a tombstone does not raise the load count, since tombstones already count
// toward it.
func (t *Table) Set(key *value.ObjString, val value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		capacity := initialCapacity
		if len(t.entries) > 0 {
			capacity = len(t.entries) * 2
		}
		t.adjustCapacity(capacity)
	}

	e := findEntry(t.entries, key)
	isNewKey := e.key == nil
	if isNewKey && e.empty() {
		t.count++
	}
	e.key = key
	e.val = val
	return isNewKey
}

// Delete removes key, leaving a tombstone behind so later probes that
// skipped over this slot while looking for a different key still work.
func (t *Table) Delete(key *value.ObjString) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.val = value.Bool(true)
	return true
}

// AddAll copies every live entry of from into t, overwriting existing keys.
func (t *Table) AddAll(from *Table) {
	for i := range from.entries {
		e := &from.entries[i]
		if e.key != nil {
			t.Set(e.key, e.val)
		}
	}
}

// FindString looks up an interned string by its raw content rather than an
// existing *ObjString, so the intern pool can be probed before a new
// ObjString is allocated for a literal or concatenation result.
func (t *Table) FindString(chars string, hash uint32) *value.ObjString {
	if t.count == 0 {
		return nil
	}
	capacity := len(t.entries)
	index := hash % uint32(capacity)

	for {
		e := &t.entries[index]
		if e.key == nil {
			if e.empty() {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) % uint32(capacity)
	}
}
