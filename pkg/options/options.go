// Package options provides data structures and functions for configuring the
// Ember database. It defines the parameters that control storage behavior:
// directory paths, segment capacity and rotation, memtable capacity and
// sparse index density.
package options

import (
	"path/filepath"
	"strings"

	"github.com/iamNilotpal/ember/pkg/errors"
)

// Defines configurable parameters for segment file placement and naming.
type segmentOptions struct {
	// Specifies the subdirectory of DataDir where segment files are stored.
	//
	// Default: "segments"
	Directory string `json:"directory"`

	// Defines the filename prefix for segment files.
	// Final filename will be: `prefix_segmentId_timestamp.seg`
	//
	// Default: "segment"
	Prefix string `json:"prefix"`
}

// Defines the configuration parameters for Ember DB.
type Options struct {
	// Specifies the base path where files will be stored.
	//
	// Default: "/var/lib/emberdb"
	DataDir string `json:"dataDir"`

	// Defines the maximum number of records a segment file can hold before
	// the writer rotates to a new segment.
	//
	//  - Default: 2000
	//  - Minimum: 1
	SegmentSize int `json:"segmentSize"`

	// Defines the maximum number of distinct keys held in the memtable.
	// Reaching this capacity triggers a flush to a new segment.
	//
	//  - Default: 100
	//  - Minimum: 1
	MemtableCapacity int `json:"memtableCapacity"`

	// Controls sparse index density: one index entry is recorded for every
	// SparseOffset records written to a segment, always including the first.
	//
	//  - Default: 20
	//  - Range: 1 to SegmentSize
	SparseOffset int `json:"sparseOffset"`

	// Overrides the path of the write-ahead log file. When empty, the WAL
	// lives at DataDir/ember.wal.
	WALPath string `json:"walPath"`

	// Configures segment file placement and naming convention.
	SegmentOptions *segmentOptions `json:"segmentOptions"`
}

// OptionFunc is a function type that modifies the Ember system's configuration.
type OptionFunc func(*Options)

// WithDataDir sets the primary data directory for Ember.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithSegmentSize sets the maximum number of records per segment file.
func WithSegmentSize(size int) OptionFunc {
	return func(o *Options) {
		if size >= 1 {
			o.SegmentSize = size
		}
	}
}

// WithMemtableCapacity sets the maximum number of distinct keys in the memtable.
func WithMemtableCapacity(capacity int) OptionFunc {
	return func(o *Options) {
		if capacity >= 1 {
			o.MemtableCapacity = capacity
		}
	}
}

// WithSparseOffset sets how many records are written per sparse index entry.
func WithSparseOffset(offset int) OptionFunc {
	return func(o *Options) {
		if offset >= 1 {
			o.SparseOffset = offset
		}
	}
}

// WithWALPath sets an explicit path for the write-ahead log file.
func WithWALPath(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.WALPath = path
		}
	}
}

// WithSegmentDir sets the subdirectory for storing segment files.
func WithSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.Directory = directory
		}
	}
}

// WithSegmentPrefix sets the file name prefix for segment files.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentOptions.Prefix = prefix
		}
	}
}

// ResolvedWALPath returns the effective WAL path: the explicit override when
// one was set, otherwise the default location inside the data directory.
func (o *Options) ResolvedWALPath() string {
	if o.WALPath != "" {
		return o.WALPath
	}
	return filepath.Join(o.DataDir, DefaultWALName)
}

// SegmentDir returns the full path of the directory holding segment files.
func (o *Options) SegmentDir() string {
	return filepath.Join(o.DataDir, o.SegmentOptions.Directory)
}

// Validate enforces the configuration constraints before an engine is built:
// SegmentSize >= 1, MemtableCapacity >= 1 and 1 <= SparseOffset <= SegmentSize.
func (o *Options) Validate() error {
	if o.DataDir == "" {
		return errors.NewRequiredFieldError("dataDir")
	}
	if o.SegmentSize < 1 {
		return errors.NewFieldRangeError("segmentSize", o.SegmentSize, 1, nil)
	}
	if o.MemtableCapacity < 1 {
		return errors.NewFieldRangeError("memtableCapacity", o.MemtableCapacity, 1, nil)
	}
	if o.SparseOffset < 1 || o.SparseOffset > o.SegmentSize {
		return errors.NewFieldRangeError("sparseOffset", o.SparseOffset, 1, o.SegmentSize).
			WithExpected("1 <= sparseOffset <= segmentSize")
	}
	return nil
}
