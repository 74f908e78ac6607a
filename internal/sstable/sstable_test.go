package sstable

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ember/internal/record"
	"github.com/iamNilotpal/ember/pkg/errors"
	"github.com/iamNilotpal/ember/pkg/logger"
	"github.com/iamNilotpal/ember/pkg/seginfo"
)

// sortedRecords produces n records with zero-padded keys so that insertion
// order equals lexicographic order: key000=v000, key001=v001, ...
func sortedRecords(n int) []record.Record {
	records := make([]record.Record, n)
	for i := range records {
		records[i] = record.New(fmt.Sprintf("key%03d", i), fmt.Sprintf("v%03d", i))
	}
	return records
}

func newTestWriter(t *testing.T, dir string, segmentSize, sparseOffset int) *Writer {
	t.Helper()

	return NewWriter(&WriterConfig{
		Dir:          dir,
		Prefix:       "segment",
		SegmentSize:  segmentSize,
		SparseOffset: sparseOffset,
		Logger:       logger.NewNop(),
	})
}

func closeAll(t *testing.T, segments []*Segment) {
	t.Helper()
	t.Cleanup(func() {
		for _, seg := range segments {
			seg.Close()
		}
	})
}

func TestWriteAllRotatesAtSegmentSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWriter(t, dir, 100, 10)

	segments, err := w.WriteAll(sortedRecords(250), 1)
	require.NoError(t, err)
	closeAll(t, segments)

	require.Len(t, segments, 3)
	require.Equal(t, uint64(1), segments[0].ID())
	require.Equal(t, uint64(2), segments[1].ID())
	require.Equal(t, uint64(3), segments[2].ID())

	// Full segments index 100/10 entries, the trailing one 50/10.
	require.Equal(t, 10, segments[0].Index().Len())
	require.Equal(t, 10, segments[1].Index().Len())
	require.Equal(t, 5, segments[2].Index().Len())

	paths, err := seginfo.List(dir, "segment")
	require.NoError(t, err)
	require.Len(t, paths, 3)

	// Every record lands in exactly one segment and stays readable.
	for i := 0; i < 250; i++ {
		key := fmt.Sprintf("key%03d", i)
		var hits int
		for _, seg := range segments {
			_, found, err := seg.Get(key)
			require.NoError(t, err)
			if found {
				hits++
			}
		}
		require.Equal(t, 1, hits, "key %s", key)
	}
}

func TestSparseIndexDensity(t *testing.T) {
	t.Parallel()

	w := newTestWriter(t, t.TempDir(), 100, 10)

	segments, err := w.WriteAll(sortedRecords(100), 1)
	require.NoError(t, err)
	closeAll(t, segments)
	require.Len(t, segments, 1)

	seg := segments[0]
	entries := seg.Index().Entries()
	require.Len(t, entries, 10)
	for i, entry := range entries {
		require.Equal(t, fmt.Sprintf("key%03d", i*10), entry.Key)
	}

	// A lookup between indexed keys starts at the greatest indexed key below
	// it and never scans past the next one.
	lo, hi, ok := seg.Index().Bounds("key057")
	require.True(t, ok)
	require.Equal(t, entries[5].Offset, lo)
	require.Equal(t, entries[6].Offset, hi)

	value, found, err := seg.Get("key057")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v057", *value.Value)
}

func TestGetAbsentKeys(t *testing.T) {
	t.Parallel()

	w := newTestWriter(t, t.TempDir(), 100, 10)
	segments, err := w.WriteAll(sortedRecords(100), 1)
	require.NoError(t, err)
	closeAll(t, segments)
	seg := segments[0]

	// Below the first indexed key the segment can rule the key out without touching disk.
	_, found, err := seg.Get("aaa")
	require.NoError(t, err)
	require.False(t, found)

	// Between two present keys.
	_, found, err = seg.Get("key0565")
	require.NoError(t, err)
	require.False(t, found)

	// Past the last record.
	_, found, err = seg.Get("zzz")
	require.NoError(t, err)
	require.False(t, found)
}

func TestGetReturnsTombstone(t *testing.T) {
	t.Parallel()

	w := newTestWriter(t, t.TempDir(), 100, 2)
	records := []record.Record{
		record.New("a", "1"),
		record.NewTombstone("b"),
		record.New("c", "3"),
	}

	segments, err := w.WriteAll(records, 1)
	require.NoError(t, err)
	closeAll(t, segments)

	rec, found, err := segments[0].Get("b")
	require.NoError(t, err)
	require.True(t, found, "a tombstone is a definite answer, not absence")
	require.True(t, rec.IsTombstone())
}

func TestWriteAllRejectsUnsortedInput(t *testing.T) {
	t.Parallel()

	w := newTestWriter(t, t.TempDir(), 100, 10)

	_, err := w.WriteAll([]record.Record{record.New("b", "1"), record.New("a", "2")}, 1)
	require.Error(t, err)
	require.True(t, errors.IsInvariantError(err))
	require.Equal(t, errors.ErrorCodeUnsortedSegment, errors.GetErrorCode(err))

	_, err = w.WriteAll([]record.Record{record.New("a", "1"), record.New("a", "2")}, 1)
	require.Error(t, err)
	require.True(t, errors.IsInvariantError(err))
}

func TestOpenPrefersSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWriter(t, dir, 100, 10)
	segments, err := w.WriteAll(sortedRecords(100), 1)
	require.NoError(t, err)
	path := segments[0].Path()
	want := segments[0].Index().Entries()
	require.NoError(t, segments[0].Close())

	// The flush wrote a sidecar next to the segment.
	_, err = os.Stat(seginfo.SidecarName(path))
	require.NoError(t, err)

	reopened, err := Open(&OpenConfig{ID: 1, Path: path, SparseOffset: 10, Logger: logger.NewNop()})
	require.NoError(t, err)
	defer reopened.Close()

	if diff := cmp.Diff(want, reopened.Index().Entries()); diff != "" {
		t.Fatalf("sidecar index differs from flush-time index (-want +got):\n%s", diff)
	}
}

func TestOpenRebuildsWithoutSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWriter(t, dir, 100, 10)
	segments, err := w.WriteAll(sortedRecords(100), 1)
	require.NoError(t, err)
	path := segments[0].Path()
	want := segments[0].Index().Entries()
	require.NoError(t, segments[0].Close())

	require.NoError(t, os.Remove(seginfo.SidecarName(path)))

	reopened, err := Open(&OpenConfig{ID: 1, Path: path, SparseOffset: 10, Logger: logger.NewNop()})
	require.NoError(t, err)
	defer reopened.Close()

	if diff := cmp.Diff(want, reopened.Index().Entries()); diff != "" {
		t.Fatalf("rebuilt index differs from flush-time index (-want +got):\n%s", diff)
	}

	value, found, err := reopened.Get("key042")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v042", *value.Value)
}

func TestOpenFallsBackOnCorruptSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWriter(t, dir, 100, 10)
	segments, err := w.WriteAll(sortedRecords(100), 1)
	require.NoError(t, err)
	path := segments[0].Path()
	require.NoError(t, segments[0].Close())

	require.NoError(t, os.WriteFile(seginfo.SidecarName(path), []byte("not json"), 0644))

	reopened, err := Open(&OpenConfig{ID: 1, Path: path, SparseOffset: 10, Logger: logger.NewNop()})
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, 10, reopened.Index().Len())

	value, found, err := reopened.Get("key099")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v099", *value.Value)
}

func TestOpenRejectsSidecarFromOtherSegment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWriter(t, dir, 100, 10)
	segments, err := w.WriteAll(sortedRecords(100), 7)
	require.NoError(t, err)
	path := segments[0].Path()
	require.NoError(t, segments[0].Close())

	// Open with a mismatching ordinal: the sidecar says 7, the caller says 9.
	// The index must come from a rebuild scan, not the stray sidecar.
	reopened, err := Open(&OpenConfig{ID: 9, Path: path, SparseOffset: 5, Logger: logger.NewNop()})
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, 20, reopened.Index().Len(), "rebuild must honor the caller's sparse offset")
}

func TestSidecarEntriesMatchIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWriter(t, dir, 50, 7)
	segments, err := w.WriteAll(sortedRecords(50), 1)
	require.NoError(t, err)
	closeAll(t, segments)
	seg := segments[0]

	loaded, err := loadSidecar(seg.Path(), seg.ID())
	require.NoError(t, err)

	if diff := cmp.Diff(seg.Index().Entries(), loaded.Entries()); diff != "" {
		t.Fatalf("sidecar round trip mismatch (-want +got):\n%s", diff)
	}
}
