// Package sstable implements the immutable on-disk segments of the store and
// the sparse indices that make point lookups in them cheap.
//
// A segment is a record file sorted strictly ascending by key, holding at
// most a configured number of records and identified by a monotonically
// increasing ordinal; younger ordinals shadow older ones for the same key.
// Each segment carries an in-memory sparse index mapping every Nth key to its
// byte offset. A lookup consults the index for the byte range the key must
// live in, then scans that range linearly — never more than N records.
//
// The sparse index is persisted next to the segment as an atomically written
// sidecar file so that reopening a segment does not require rescanning it.
// The sidecar is an optimization only: when it is missing or unreadable the
// index is rebuilt by scanning the segment, which remains the source of truth.
package sstable

import (
	"github.com/iamNilotpal/ember/internal/logfile"
	"github.com/iamNilotpal/ember/internal/record"
	"github.com/iamNilotpal/ember/internal/sparse"
	"github.com/iamNilotpal/ember/pkg/errors"
	"go.uber.org/zap"
)

// Segment is a single immutable sorted segment file paired with its sparse
// index. Once constructed it only ever serves reads; the file handle is held
// open for the engine's lifetime.
type Segment struct {
	id    uint64
	path  string
	file  *logfile.File
	index *sparse.Index
	log   *zap.SugaredLogger
}

// OpenConfig holds the parameters needed to open an existing segment file.
type OpenConfig struct {
	ID           uint64
	Path         string
	SparseOffset int
	Logger       *zap.SugaredLogger
}

// Open opens an existing segment file and materializes its sparse index,
// preferring the sidecar written at flush time and falling back to a full
// scan of the segment when the sidecar is missing or unusable.
func Open(config *OpenConfig) (*Segment, error) {
	file, err := logfile.Open(config.Path)
	if err != nil {
		return nil, err
	}

	seg := &Segment{id: config.ID, path: config.Path, file: file, log: config.Logger}

	if index, err := loadSidecar(config.Path, config.ID); err == nil {
		seg.index = index
		return seg, nil
	} else {
		config.Logger.Infow("Sidecar unusable, rebuilding sparse index from segment",
			"segmentID", config.ID,
			"path", config.Path,
			"reason", err,
		)
	}

	index, err := rebuildIndex(file, config.SparseOffset)
	if err != nil {
		if closeErr := file.Close(); closeErr != nil {
			config.Logger.Errorw("Failed to close segment after index rebuild error",
				"segmentID", config.ID, "error", closeErr)
		}
		return nil, err
	}

	seg.index = index
	return seg, nil
}

// rebuildIndex scans a segment from the start, recording every
// sparseOffset-th record in a fresh sparse index.
func rebuildIndex(file *logfile.File, sparseOffset int) (*sparse.Index, error) {
	scanner, err := file.ScanFrom(0)
	if err != nil {
		return nil, err
	}

	index := sparse.New()
	count := 0
	for scanner.Next() {
		if count%sparseOffset == 0 {
			if err := index.Add(scanner.Record().Key, scanner.Offset()); err != nil {
				return nil, err
			}
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return index, nil
}

// ID returns the segment's ordinal.
func (s *Segment) ID() uint64 {
	return s.id
}

// Path returns the full path of the segment file.
func (s *Segment) Path() string {
	return s.path
}

// Index returns the segment's sparse index.
func (s *Segment) Index() *sparse.Index {
	return s.index
}

// Get looks up a key in this segment. The sparse index bounds a byte range
// [lo, hi) the key must reside in; that range is scanned forward until the
// key is found, a greater key is seen, or the bound is crossed. The returned
// record may be a tombstone — callers must treat it as a definite answer that
// terminates the search, not as absence.
func (s *Segment) Get(key string) (record.Record, bool, error) {
	lo, hi, ok := s.index.Bounds(key)
	if !ok {
		return record.Record{}, false, nil
	}

	scanner, err := s.file.ScanFrom(lo)
	if err != nil {
		return record.Record{}, false, err
	}

	scanned := 0
	for scanner.Next() {
		if hi >= 0 && scanner.Offset() >= hi {
			break
		}

		rec := scanner.Record()
		if scanned == 0 && rec.Key > key {
			// The index promised a record with key <= the probe at lo.
			return record.Record{}, false, errors.NewInvariantError(
				nil, errors.ErrorCodeIndexedKeyMissing,
				"Segment scan started past the indexed key",
			).WithKey(key).WithSegmentID(s.id).WithOffset(lo).
				WithDetail("firstScannedKey", rec.Key)
		}
		scanned++

		if rec.Key == key {
			return rec, true, nil
		}
		if rec.Key > key {
			return record.Record{}, false, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return record.Record{}, false, err
	}

	if scanned == 0 {
		// The index pointed at a byte range the segment doesn't have.
		return record.Record{}, false, errors.NewInvariantError(
			nil, errors.ErrorCodeIndexedKeyMissing,
			"Segment scan found no record at the indexed offset",
		).WithKey(key).WithSegmentID(s.id).WithOffset(lo)
	}

	return record.Record{}, false, nil
}

// Close releases the segment's file handle.
func (s *Segment) Close() error {
	return s.file.Close()
}
