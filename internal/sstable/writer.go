package sstable

import (
	"path/filepath"

	"github.com/iamNilotpal/ember/internal/logfile"
	"github.com/iamNilotpal/ember/internal/record"
	"github.com/iamNilotpal/ember/internal/sparse"
	"github.com/iamNilotpal/ember/pkg/errors"
	"github.com/iamNilotpal/ember/pkg/seginfo"
	"go.uber.org/zap"
)

// Writer converts sorted record streams into segment files. A single
// WriteAll call may produce several segments: when a segment reaches its
// record cap it is sealed and the next one is opened.
type Writer struct {
	dir          string // Directory segment files are written into.
	prefix       string // Filename prefix for new segments.
	segmentSize  int    // Maximum records per segment before rotation.
	sparseOffset int    // Records between consecutive sparse index entries.
	log          *zap.SugaredLogger
}

// WriterConfig holds the parameters needed to construct a segment writer.
type WriterConfig struct {
	Dir          string
	Prefix       string
	SegmentSize  int
	SparseOffset int
	Logger       *zap.SugaredLogger
}

// NewWriter creates a segment writer.
func NewWriter(config *WriterConfig) *Writer {
	return &Writer{
		dir:          config.Dir,
		prefix:       config.Prefix,
		segmentSize:  config.SegmentSize,
		sparseOffset: config.SparseOffset,
		log:          config.Logger,
	}
}

// WriteAll writes the records, which must be strictly ascending by key, into
// one or more new segment files starting at ordinal firstID. Every produced
// segment is fsynced and has its sparse index sidecar written before WriteAll
// returns, so the caller may truncate the write-ahead log immediately after.
// The returned segments are open for reads, in ascending ordinal order.
func (w *Writer) WriteAll(records []record.Record, firstID uint64) ([]*Segment, error) {
	var (
		segments []*Segment
		file     *logfile.File
		index    *sparse.Index
		path     string
		count    int
		id       = firstID
		lastKey  string
	)

	seal := func() error {
		if file == nil {
			return nil
		}
		// Segment data must be durable before the WAL referencing it is
		// truncated, so the sync happens here and not at the caller's leisure.
		if err := file.Sync(); err != nil {
			return err
		}
		if err := saveSidecar(path, id, index); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to persist sparse index sidecar").
				WithSegmentID(id).WithPath(seginfo.SidecarName(path))
		}

		segments = append(segments, &Segment{id: id, path: path, file: file, index: index, log: w.log})
		w.log.Infow("Sealed segment",
			"segmentID", id,
			"path", path,
			"records", count,
			"indexEntries", index.Len(),
		)

		file, index = nil, nil
		count = 0
		id++
		return nil
	}

	for _, rec := range records {
		if file != nil && count == w.segmentSize {
			if err := seal(); err != nil {
				return nil, err
			}
		}

		if file == nil {
			path = filepath.Join(w.dir, seginfo.GenerateName(id, w.prefix))
			var err error
			if file, err = logfile.Open(path); err != nil {
				return nil, err
			}
			index = sparse.New()
		}

		if count > 0 || len(segments) > 0 {
			if rec.Key <= lastKey {
				return nil, errors.NewInvariantError(
					nil, errors.ErrorCodeUnsortedSegment,
					"Segment writer requires strictly ascending keys",
				).WithKey(rec.Key).WithSegmentID(id).
					WithDetail("previousKey", lastKey)
			}
		}
		lastKey = rec.Key

		offset, err := file.Append(rec)
		if err != nil {
			return nil, err
		}

		if count%w.sparseOffset == 0 {
			if err := index.Add(rec.Key, offset); err != nil {
				return nil, err
			}
		}
		count++
	}

	if err := seal(); err != nil {
		return nil, err
	}

	return segments, nil
}
