// Package memtable implements the in-memory table of pending writes. It maps
// each key to the most recent record for that key within the current flush
// cycle, including tombstones, and drains in ascending key order when a flush
// converts it into a segment.
package memtable

import (
	"sort"

	"github.com/iamNilotpal/ember/internal/record"
)

// Memtable is an ordered mapping from key to the latest record for that key,
// bounded by a configured capacity on the number of distinct keys.
type Memtable struct {
	entries  map[string]record.Record
	capacity int
}

// New creates an empty memtable bounded by capacity distinct keys.
func New(capacity int) *Memtable {
	return &Memtable{
		entries:  make(map[string]record.Record, capacity),
		capacity: capacity,
	}
}

// Put inserts or updates the record for a key. Overwriting an existing key
// replaces the entry in place and does not change the count.
func (m *Memtable) Put(rec record.Record) {
	m.entries[rec.Key] = rec
}

// Delete records a tombstone for the key, shadowing any older value of it.
func (m *Memtable) Delete(key string) {
	m.entries[key] = record.NewTombstone(key)
}

// Get returns the latest record for the key. The second return value is
// false when the key is absent from the table; a present record may still be
// a tombstone.
func (m *Memtable) Get(key string) (record.Record, bool) {
	rec, ok := m.entries[key]
	return rec, ok
}

// Len reports the number of distinct keys currently held.
func (m *Memtable) Len() int {
	return len(m.entries)
}

// IsFull reports whether the table has reached its configured capacity.
func (m *Memtable) IsFull() bool {
	return len(m.entries) >= m.capacity
}

// DrainSorted returns every record in ascending key order and resets the
// table to empty. Keys within the result are unique, which is what lets a
// flush write them straight into a segment.
func (m *Memtable) DrainSorted() []record.Record {
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	records := make([]record.Record, len(keys))
	for i, key := range keys {
		records[i] = m.entries[key]
	}

	m.entries = make(map[string]record.Record, m.capacity)
	return records
}
