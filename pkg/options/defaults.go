package options

const (
	// DefaultDataDir specifies the default base directory where EmberDB will
	// store its data files. If no other directory is specified during
	// initialization, this path will be used.
	DefaultDataDir = "/var/lib/emberdb"

	// DefaultSegmentSize is the maximum number of records held by a single
	// segment file before the writer rotates to the next one.
	DefaultSegmentSize = 2000

	// DefaultMemtableCapacity is the maximum number of distinct keys the
	// in-memory table holds before it is flushed to a segment.
	DefaultMemtableCapacity = 100

	// DefaultSparseOffset controls index density: one sparse index entry is
	// recorded for every DefaultSparseOffset records written to a segment.
	DefaultSparseOffset = 20

	// DefaultWALName is the filename of the write-ahead log inside the data
	// directory.
	DefaultWALName = "ember.wal"

	// DefaultSegmentDirectory specifies the default subdirectory within the
	// main data directory where segment files will be stored.
	DefaultSegmentDirectory = "segments"

	// DefaultSegmentPrefix defines the default prefix for segment file names.
	// For example, a segment file might be named "segment_00001_1678881234567890.seg".
	DefaultSegmentPrefix = "segment"
)

// Holds the default configuration settings for an EmberDB instance.
var defaultOptions = Options{
	DataDir:          DefaultDataDir,
	SegmentSize:      DefaultSegmentSize,
	MemtableCapacity: DefaultMemtableCapacity,
	SparseOffset:     DefaultSparseOffset,
	SegmentOptions: &segmentOptions{
		Prefix:    DefaultSegmentPrefix,
		Directory: DefaultSegmentDirectory,
	},
}

// NewDefaultOptions returns a fresh copy of the default configuration.
// The segment options are copied too, so mutating one instance never leaks
// into another.
func NewDefaultOptions() Options {
	opts := defaultOptions
	segOpts := *defaultOptions.SegmentOptions
	opts.SegmentOptions = &segOpts
	return opts
}
