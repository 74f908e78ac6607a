package ember_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ember/pkg/ember"
	"github.com/iamNilotpal/ember/pkg/errors"
	"github.com/iamNilotpal/ember/pkg/options"
)

func newTestInstance(t *testing.T, dir string, opts ...options.OptionFunc) *ember.Instance {
	t.Helper()

	ctx := context.Background()
	opts = append([]options.OptionFunc{options.WithDataDir(dir)}, opts...)
	instance, err := ember.NewInstance(ctx, "ember-test", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { instance.Close(ctx) })
	return instance
}

func TestWriteReadDelete(t *testing.T) {
	ctx := context.Background()
	instance := newTestInstance(t, t.TempDir())

	require.NoError(t, instance.Write(ctx, "user:1", `{"name":"ada"}`))

	value, found, err := instance.Read(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `{"name":"ada"}`, value)

	has, err := instance.Contains(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, instance.Delete(ctx, "user:1"))

	_, found, err = instance.Read(ctx, "user:1")
	require.NoError(t, err)
	require.False(t, found)

	has, err = instance.Contains(ctx, "user:1")
	require.NoError(t, err)
	require.False(t, has)
}

func TestSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	instance := newTestInstance(t, dir, options.WithMemtableCapacity(4))
	for i := 0; i < 11; i++ {
		require.NoError(t, instance.Write(ctx, fmt.Sprintf("key%02d", i), fmt.Sprintf("v%02d", i)))
	}
	require.NoError(t, instance.Close(ctx))

	reopened := newTestInstance(t, dir, options.WithMemtableCapacity(4))
	for i := 0; i < 11; i++ {
		value, found, err := reopened.Read(ctx, fmt.Sprintf("key%02d", i))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, fmt.Sprintf("v%02d", i), value)
	}
}

func TestRecoverFromForeignWAL(t *testing.T) {
	ctx := context.Background()

	// One instance's abandoned WAL becomes another instance's recovery source.
	sourceDir := t.TempDir()
	source := newTestInstance(t, sourceDir, options.WithWALPath(filepath.Join(sourceDir, "source.wal")))
	require.NoError(t, source.Write(ctx, "carried", "over"))
	require.NoError(t, source.Close(ctx))

	instance := newTestInstance(t, t.TempDir())
	require.NoError(t, instance.RecoverFrom(ctx, filepath.Join(sourceDir, "source.wal")))

	value, found, err := instance.Read(ctx, "carried")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "over", value)
}

func TestInvalidConfiguration(t *testing.T) {
	ctx := context.Background()

	_, err := ember.NewInstance(ctx, "ember-test",
		options.WithDataDir(t.TempDir()),
		options.WithSegmentSize(5),
		options.WithSparseOffset(9),
	)
	require.Error(t, err)
	require.True(t, errors.IsValidationError(err))
}

func TestCanceledContext(t *testing.T) {
	instance := newTestInstance(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, instance.Write(ctx, "k", "v"), context.Canceled)
	_, _, err := instance.Read(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, instance.Delete(ctx, "k"), context.Canceled)
}
