// Package sparse implements the per-segment sparse index: an in-memory
// ordered mapping from every Nth key in a segment to the byte offset of its
// record. The index bounds the linear scan a point lookup has to perform — at
// most N records between two consecutive indexed keys.
//
// Both keys and offsets are strictly increasing. The first record of a
// segment is always indexed, which is what makes "key smaller than every
// indexed key" equivalent to "key not in this segment".
package sparse

import (
	"sort"

	"github.com/iamNilotpal/ember/pkg/errors"
)

// Entry is one indexed (key, offset) pair.
type Entry struct {
	Key    string `json:"key"`
	Offset int64  `json:"offset"`
}

// Index is the sparse index of a single segment. Entries are kept in
// insertion order, which the Add invariant guarantees is ascending order.
type Index struct {
	entries []Entry
}

// New creates an empty sparse index.
func New() *Index {
	return &Index{}
}

// FromEntries builds an index from already-collected entries, enforcing the
// same monotonicity invariant Add does. Used when loading a sidecar file.
func FromEntries(entries []Entry) (*Index, error) {
	idx := New()
	for _, e := range entries {
		if err := idx.Add(e.Key, e.Offset); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Add appends an indexed pair. Keys and offsets must both be strictly
// greater than the previously added ones.
func (idx *Index) Add(key string, offset int64) error {
	if n := len(idx.entries); n > 0 {
		last := idx.entries[n-1]
		if key <= last.Key || offset <= last.Offset {
			return errors.NewInvariantError(nil, errors.ErrorCodeSparseIndexViolation,
				"Sparse index entries must be strictly increasing in key and offset").
				WithKey(key).
				WithOffset(offset).
				WithDetail("previousKey", last.Key).
				WithDetail("previousOffset", last.Offset)
		}
	}

	idx.entries = append(idx.entries, Entry{Key: key, Offset: offset})
	return nil
}

// Bounds computes the byte range [lo, hi) within which key must reside if it
// is present in the segment. hi of -1 means "to end of file". ok is false
// when key is strictly smaller than the smallest indexed key: since the first
// record is always indexed and records are sorted, such a key cannot be in
// the segment at all.
func (idx *Index) Bounds(key string) (lo, hi int64, ok bool) {
	if len(idx.entries) == 0 {
		return 0, -1, false
	}

	// First entry with a key strictly greater than the probe.
	n := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].Key > key
	})

	if n == 0 {
		// Smaller than every indexed key, including the segment's first record.
		return 0, -1, false
	}

	lo = idx.entries[n-1].Offset
	hi = int64(-1)
	if n < len(idx.entries) {
		hi = idx.entries[n].Offset
	}
	return lo, hi, true
}

// Entries returns the indexed pairs in ascending order. The slice is the
// index's own backing storage; callers must not mutate it.
func (idx *Index) Entries() []Entry {
	return idx.entries
}

// Len reports the number of indexed pairs.
func (idx *Index) Len() int {
	return len(idx.entries)
}
