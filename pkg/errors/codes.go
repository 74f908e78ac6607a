package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes cover the fundamental categories of failures that can
// occur anywhere in the engine. Every more specific code refines one of these.
const (
	// ErrorCodeIO represents failures in input/output operations: reading or
	// writing the WAL, segment files or sparse index sidecars, as well as
	// directory creation and file discovery.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents caller-side errors where the provided
	// data or configuration doesn't meet the engine's requirements.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected failures that don't fit into
	// other categories. These indicate bugs rather than environmental problems.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes describe the failure modes of the persistence
// layer: the WAL file, segment files and the directories that hold them.
const (
	// ErrorCodeSegmentCorrupted indicates that a segment file's data has been
	// damaged or is in an inconsistent state.
	ErrorCodeSegmentCorrupted ErrorCode = "SEGMENT_CORRUPTED"

	// ErrorCodePermissionDenied indicates insufficient permissions to access a
	// file or directory. Distinct from generic I/O errors because it has a
	// specific resolution path: adjust permissions or run with elevated privileges.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted
	// read-only and no durable write can succeed until it is remounted.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Codec-specific error codes describe record encoding and decoding failures.
// These surface when a WAL or segment line cannot be turned back into a record.
const (
	// ErrorCodeMalformedRecord indicates a line that is not a well-formed
	// record object with the required key and value fields.
	ErrorCodeMalformedRecord ErrorCode = "MALFORMED_RECORD"

	// ErrorCodeEmptyKey indicates a record whose key field is the empty
	// string. Keys must be non-empty.
	ErrorCodeEmptyKey ErrorCode = "EMPTY_KEY"

	// ErrorCodePartialRecord indicates a trailing line with no terminating
	// newline at EOF, the signature of a crash mid-append. WAL replay drops
	// such a record; every other consumer treats it as corruption.
	ErrorCodePartialRecord ErrorCode = "PARTIAL_RECORD"
)

// Invariant error codes describe conditions that should be impossible when
// both the code and the on-disk data are healthy. They are not recoverable
// by the engine.
const (
	// ErrorCodeSparseIndexViolation indicates a sparse index whose keys or
	// offsets are not strictly increasing.
	ErrorCodeSparseIndexViolation ErrorCode = "SPARSE_INDEX_VIOLATION"

	// ErrorCodeIndexedKeyMissing indicates that a key recorded in a segment's
	// sparse index was never encountered while scanning that segment.
	ErrorCodeIndexedKeyMissing ErrorCode = "INDEXED_KEY_MISSING"

	// ErrorCodeUnsortedSegment indicates that a record stream handed to the
	// segment writer was not strictly ascending by key.
	ErrorCodeUnsortedSegment ErrorCode = "UNSORTED_SEGMENT"
)
