// Package engine provides the core storage engine implementation for the
// Ember key-value store.
//
// The engine coordinates the subsystems of the log-structured merge pipeline:
//   - WAL: every mutation is appended and fsynced here before anything else
//   - Memtable: the in-memory ordered table of pending writes
//   - Segments: immutable sorted files produced by flushing the memtable,
//     each paired with a sparse index that bounds point lookups
//
// Writes append to the WAL and land in the memtable; when the memtable
// reaches capacity it is drained in sorted order into one or more new
// segments, and only after those segments are durable is the WAL truncated.
// Reads consult the memtable first and then the segments newest to oldest,
// stopping at the first definite answer — a value or a tombstone.
//
// The engine is single-threaded and synchronous: operations execute to
// completion on the caller's goroutine, and an instance must not be shared
// across goroutines without external serialization.
package engine

import (
	"context"
	stdErrors "errors"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ember/internal/memtable"
	"github.com/iamNilotpal/ember/internal/record"
	"github.com/iamNilotpal/ember/internal/sstable"
	"github.com/iamNilotpal/ember/internal/wal"
	"github.com/iamNilotpal/ember/pkg/errors"
	"github.com/iamNilotpal/ember/pkg/filesys"
	"github.com/iamNilotpal/ember/pkg/options"
	"github.com/iamNilotpal/ember/pkg/seginfo"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")
)

// Engine is the storage engine behind an Ember instance. It owns the WAL,
// the memtable and every open segment for its lifetime.
type Engine struct {
	options  *options.Options   // Configuration parameters for the engine and its subsystems.
	log      *zap.SugaredLogger // Structured logging throughout the engine.
	closed   atomic.Bool        // Tracks the engine's lifecycle state.
	memtable *memtable.Memtable // In-memory table of pending writes.
	wal      *wal.WAL           // Write-ahead log, appended before every memtable mutation.
	writer   *sstable.Writer    // Converts drained memtables into segment files.
	segments []*sstable.Segment // Open segments in ascending ordinal order.
	nextID   uint64             // Ordinal the next flushed segment will receive.
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New creates and initializes a new Engine instance: it prepares the data
// directories, reopens any segments a previous process left behind, opens the
// write-ahead log and, when that log is non-empty, replays it into the
// memtable before the engine accepts any operation.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Engine configuration is required",
		).WithField("config").WithRule("required")
	}

	opts := config.Options
	config.Logger.Infow("Initializing storage engine",
		"dataDir", opts.DataDir,
		"segmentDir", opts.SegmentDir(),
		"walPath", opts.ResolvedWALPath(),
		"segmentSize", opts.SegmentSize,
		"memtableCapacity", opts.MemtableCapacity,
		"sparseOffset", opts.SparseOffset,
	)

	if err := filesys.CreateDir(opts.DataDir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, opts.DataDir)
	}
	if err := filesys.CreateDir(opts.SegmentDir(), 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, opts.SegmentDir())
	}

	eng := &Engine{
		options:  opts,
		log:      config.Logger,
		memtable: memtable.New(opts.MemtableCapacity),
		writer: sstable.NewWriter(&sstable.WriterConfig{
			Dir:          opts.SegmentDir(),
			Prefix:       opts.SegmentOptions.Prefix,
			SegmentSize:  opts.SegmentSize,
			SparseOffset: opts.SparseOffset,
			Logger:       config.Logger,
		}),
		nextID: 1,
	}

	if err := eng.openSegments(); err != nil {
		return nil, err
	}

	walFile, err := wal.Open(&wal.Config{Path: opts.ResolvedWALPath(), Logger: config.Logger})
	if err != nil {
		eng.closeSegments()
		return nil, err
	}
	eng.wal = walFile

	if err := eng.replayOwnWAL(); err != nil {
		eng.closeSegments()
		if closeErr := walFile.Close(); closeErr != nil {
			config.Logger.Errorw("Failed to close write-ahead log after replay error", "error", closeErr)
		}
		return nil, err
	}

	config.Logger.Infow("Storage engine initialized",
		"segments", len(eng.segments),
		"nextSegmentID", eng.nextID,
		"pendingRecords", eng.memtable.Len(),
	)
	return eng, nil
}

// openSegments discovers the segment files a previous process left behind and
// opens them in ascending ordinal order.
func (e *Engine) openSegments() error {
	paths, err := seginfo.List(e.options.SegmentDir(), e.options.SegmentOptions.Prefix)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to discover segment files").
			WithPath(e.options.SegmentDir())
	}

	for _, path := range paths {
		id, err := seginfo.ParseSegmentID(path, e.options.SegmentOptions.Prefix)
		if err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeSegmentCorrupted, "Unrecognized segment filename").
				WithPath(path)
		}

		seg, err := sstable.Open(&sstable.OpenConfig{
			ID:           id,
			Path:         path,
			SparseOffset: e.options.SparseOffset,
			Logger:       e.log,
		})
		if err != nil {
			e.closeSegments()
			return err
		}

		e.segments = append(e.segments, seg)
		if id >= e.nextID {
			e.nextID = id + 1
		}
	}

	if len(e.segments) > 0 {
		e.log.Infow("Reopened existing segments",
			"count", len(e.segments),
			"oldest", e.segments[0].ID(),
			"newest", e.segments[len(e.segments)-1].ID(),
		)
	}
	return nil
}

// replayOwnWAL rebuilds the memtable from the engine's own write-ahead log.
// Replay applies records in append order, flushing whenever the memtable
// fills. Once any flush has truncated the log, the remaining records no
// longer have WAL backing, so the tail is flushed as well rather than left
// in memory only.
func (e *Engine) replayOwnWAL() error {
	size, err := e.wal.Size()
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}

	records, err := e.wal.ReplayAll()
	if err != nil {
		return err
	}

	flushed := false
	for _, rec := range records {
		if e.memtable.IsFull() {
			if err := e.flush(); err != nil {
				return err
			}
			flushed = true
		}
		e.memtable.Put(rec)
	}
	if flushed && e.memtable.Len() > 0 {
		if err := e.flush(); err != nil {
			return err
		}
	}

	e.log.Infow("Replayed write-ahead log",
		"records", len(records),
		"flushedDuringReplay", flushed,
		"pendingRecords", e.memtable.Len(),
	)
	return nil
}

// Write stores a key-value pair. The record is appended to the WAL before
// the memtable is updated; a full memtable is flushed first so the write
// that triggered the flush lands in the fresh table.
func (e *Engine) Write(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if key == "" {
		return errors.NewRequiredFieldError("key")
	}
	return e.apply(record.New(key, value))
}

// Delete records a tombstone for the key, shadowing any value of it in older
// segments. Deleting a key that was never written still writes the tombstone.
func (e *Engine) Delete(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if key == "" {
		return errors.NewRequiredFieldError("key")
	}
	return e.apply(record.NewTombstone(key))
}

// apply runs one mutation through the write path: flush when the memtable is
// at capacity, append to the WAL, then update the memtable. A failed WAL
// append leaves the memtable untouched so the caller may retry.
func (e *Engine) apply(rec record.Record) error {
	if e.memtable.IsFull() {
		if err := e.flush(); err != nil {
			return err
		}
	}
	if err := e.wal.Append(rec); err != nil {
		return err
	}
	e.memtable.Put(rec)
	return nil
}

// Read resolves a key to its most recent value: the memtable answers first,
// then segments from newest to oldest. The boolean is false when the key is
// absent or its latest record is a tombstone.
func (e *Engine) Read(key string) (string, bool, error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}

	if rec, ok := e.memtable.Get(key); ok {
		if rec.IsTombstone() {
			return "", false, nil
		}
		return *rec.Value, true, nil
	}

	for i := len(e.segments) - 1; i >= 0; i-- {
		rec, found, err := e.segments[i].Get(key)
		if err != nil {
			return "", false, err
		}
		if found {
			if rec.IsTombstone() {
				return "", false, nil
			}
			return *rec.Value, true, nil
		}
	}

	return "", false, nil
}

// Contains reports whether the key currently resolves to a live value.
func (e *Engine) Contains(key string) (bool, error) {
	_, found, err := e.Read(key)
	return found, err
}

// RecoverFrom replays an external write-ahead log file into this engine.
// Records are applied in file order through the normal write path, so they
// land in the engine's own WAL and shadow earlier records for the same key;
// a partial trailing record in the source is dropped. The source file handle
// is scoped to this call. Whatever recovery leaves in the memtable is
// flushed before returning.
func (e *Engine) RecoverFrom(path string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	exists, err := filesys.Exists(path)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to stat recovery source").WithPath(path)
	}
	if !exists {
		return errors.NewStorageError(nil, errors.ErrorCodeIO, "Recovery source does not exist").WithPath(path)
	}

	source, err := wal.Open(&wal.Config{Path: path, Logger: e.log})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			e.log.Errorw("Failed to close recovery source", "path", path, "error", closeErr)
		}
	}()

	records, err := source.ReplayAll()
	if err != nil {
		return err
	}

	for _, rec := range records {
		if err := e.apply(rec); err != nil {
			return err
		}
	}
	if e.memtable.Len() > 0 {
		if err := e.flush(); err != nil {
			return err
		}
	}

	e.log.Infow("Recovered from external write-ahead log",
		"source", path,
		"records", len(records),
		"segments", len(e.segments),
	)
	return nil
}

// flush drains the memtable in sorted order into one or more new segments
// and truncates the WAL. The segment writer fsyncs every segment before
// returning, so truncation never outruns segment durability. If writing the
// segments fails the WAL still holds every record; replay on the next startup
// restores the state, and this instance should be considered poisoned.
func (e *Engine) flush() error {
	if e.memtable.Len() == 0 {
		return nil
	}

	records := e.memtable.DrainSorted()
	segments, err := e.writer.WriteAll(records, e.nextID)
	if err != nil {
		return err
	}

	e.segments = append(e.segments, segments...)
	if len(segments) > 0 {
		e.nextID = segments[len(segments)-1].ID() + 1
	}

	if err := e.wal.Truncate(); err != nil {
		return err
	}

	e.log.Infow("Flushed memtable",
		"records", len(records),
		"newSegments", len(segments),
		"totalSegments", len(e.segments),
		"nextSegmentID", e.nextID,
	)
	return nil
}

// closeSegments closes every open segment, logging rather than failing on
// individual errors. Used on construction failure paths.
func (e *Engine) closeSegments() {
	for _, seg := range e.segments {
		if err := seg.Close(); err != nil {
			e.log.Errorw("Failed to close segment", "segmentID", seg.ID(), "error", err)
		}
	}
}

// Close releases the WAL and segment file handles. The engine cannot be used
// afterwards.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	err := e.wal.Close()
	for _, seg := range e.segments {
		err = multierr.Append(err, seg.Close())
	}
	return err
}
