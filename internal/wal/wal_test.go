package wal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ember/internal/record"
	"github.com/iamNilotpal/ember/pkg/errors"
	"github.com/iamNilotpal/ember/pkg/logger"
)

func openTestWAL(t *testing.T) (*WAL, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wal")
	w, err := Open(&Config{Path: path, Logger: logger.NewNop()})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w, path
}

func TestReplayPreservesAppendOrder(t *testing.T) {
	t.Parallel()

	w, _ := openTestWAL(t)
	want := []record.Record{
		record.New("k1", "v1"),
		record.New("k2", "v2"),
		record.NewTombstone("k1"),
		record.New("k1", "v1.1"),
	}
	for _, rec := range want {
		require.NoError(t, w.Append(rec))
	}

	got, err := w.ReplayAll()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestTruncateEmptiesLog(t *testing.T) {
	t.Parallel()

	w, _ := openTestWAL(t)
	require.NoError(t, w.Append(record.New("k", "v")))

	require.NoError(t, w.Truncate())

	size, err := w.Size()
	require.NoError(t, err)
	require.Zero(t, size)

	records, err := w.ReplayAll()
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestReplayDropsPartialTrailingRecord(t *testing.T) {
	t.Parallel()

	w, path := openTestWAL(t)
	require.NoError(t, w.Append(record.New("k1", "v1")))
	require.NoError(t, w.Append(record.New("k2", "v2")))

	// A crash mid-append leaves a torn trailing line.
	raw, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = raw.WriteString(`{"key":"k3","value":"v`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	records, err := w.ReplayAll()
	require.NoError(t, err)
	require.Equal(t, []record.Record{record.New("k1", "v1"), record.New("k2", "v2")}, records)
}

func TestReplayFailsOnInteriorCorruption(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corrupt.wal")
	content := `{"key":"k1","value":"v1"}` + "\n" + "garbage\n" + `{"key":"k2","value":"v2"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	w, err := Open(&Config{Path: path, Logger: logger.NewNop()})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.ReplayAll()
	require.Error(t, err)
	require.True(t, errors.IsCodecError(err))
	require.False(t, errors.IsPartialRecord(err))
}

func TestAppendAfterTruncate(t *testing.T) {
	t.Parallel()

	w, _ := openTestWAL(t)
	require.NoError(t, w.Append(record.New("old", "1")))
	require.NoError(t, w.Truncate())
	require.NoError(t, w.Append(record.New("new", "2")))

	records, err := w.ReplayAll()
	require.NoError(t, err)
	require.Equal(t, []record.Record{record.New("new", "2")}, records)
}
