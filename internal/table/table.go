// Package table implements the open-addressed hash table with tombstone
// deletion shared by the string interner and the VM's globals table,
// grounded on the find_entry/adjust_capacity/table_set/table_get/
// table_delete/table_findstring algorithm of the original clox table.c.
package table

import (
	"nilox/internal/object"
	"nilox/internal/value"
)

const maxLoadFactor = 0.75

type entry struct {
	key *object.StringObj
	val value.Value
	// tombstone is set once a live entry at this slot has been deleted.
	// The slot still probes as occupied but is reusable for insertion.
	tombstone bool
}

// Table is an array of entry slots (key, value) where the key is an
// optional interned string reference. count includes tombstones, which is
// why a rehash always recomputes it from scratch.
type Table struct {
	entries []entry
	count   int
}

// New returns an empty table; its backing array is allocated lazily on
// first insert, matching the zero-capacity starting point of the teacher's
// growth discipline.
func New() *Table {
	return &Table{}
}

// Get looks up key, returning its value and whether it was present.
func (t *Table) Get(key *object.StringObj) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil(), false
	}
	idx := findEntry(t.entries, key)
	e := &t.entries[idx]
	if e.key == nil {
		return value.Nil(), false
	}
	return e.val, true
}

// Set stores val under key, returning true iff key was not already present
// (tombstones do not count toward "new").
func (t *Table) Set(key *object.StringObj, val value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoadFactor {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	idx := findEntry(t.entries, key)
	e := &t.entries[idx]
	isNewKey := e.key == nil
	if isNewKey && !e.tombstone {
		t.count++
	}

	e.key = key
	e.val = val
	e.tombstone = false
	return isNewKey
}

// Delete removes key, replacing its slot with a tombstone, and reports
// whether the key had been present.
func (t *Table) Delete(key *object.StringObj) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := findEntry(t.entries, key)
	e := &t.entries[idx]
	if e.key == nil {
		return false
	}
	e.key = nil
	e.val = value.Bool(true)
	e.tombstone = true
	return true
}

// FindString looks up an interned string by content: hash, length, then
// byte equality, in that order, returning the canonical reference if one
// already exists.
func (t *Table) FindString(chars string, hash uint32) *object.StringObj {
	if len(t.entries) == 0 {
		return nil
	}
	capacity := len(t.entries)
	idx := int(hash) % capacity
	for {
		e := &t.entries[idx]
		if e.key == nil {
			if !e.tombstone {
				return nil
			}
		} else if e.key.Hash == hash && len(e.key.Chars) == len(chars) && e.key.Chars == chars {
			return e.key
		}
		idx = (idx + 1) % capacity
	}
}

// findEntry returns the index of the slot key belongs in: the first live
// match, else the first tombstone seen, else the first empty slot.
func findEntry(entries []entry, key *object.StringObj) int {
	capacity := len(entries)
	idx := int(key.Hash) % capacity
	var tombstoneIdx = -1
	for {
		e := &entries[idx]
		if e.key == nil {
			if !e.tombstone {
				if tombstoneIdx != -1 {
					return tombstoneIdx
				}
				return idx
			}
			if tombstoneIdx == -1 {
				tombstoneIdx = idx
			}
		} else if e.key == key {
			return idx
		}
		idx = (idx + 1) % capacity
	}
}

func (t *Table) adjustCapacity(newCapacity int) {
	newEntries := make([]entry, newCapacity)
	t.count = 0
	for _, e := range t.entries {
		if e.key == nil {
			continue
		}
		idx := findEntry(newEntries, e.key)
		newEntries[idx].key = e.key
		newEntries[idx].val = e.val
		t.count++
	}
	t.entries = newEntries
}

func growCapacity(old int) int {
	if old < 8 {
		return 8
	}
	return old * 2
}
