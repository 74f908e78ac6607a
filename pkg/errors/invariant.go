package errors

// InvariantError reports a condition that should be impossible while both the
// code and the on-disk data are healthy, such as a sparse index whose keys go
// backwards. It indicates a bug or on-disk corruption and is not recoverable
// by the engine.
type InvariantError struct {
	*baseError
	key       string // The key being processed when the invariant broke.
	segmentID uint64 // The segment involved, if any.
	offset    int64  // Byte offset at which the violation was detected.
}

// NewInvariantError creates a new invariant-violation error.
func NewInvariantError(err error, code ErrorCode, msg string) *InvariantError {
	return &InvariantError{baseError: NewBaseError(err, code, msg)}
}

// WithDetail adds contextual information while preserving the InvariantError type.
func (ie *InvariantError) WithDetail(key string, value any) *InvariantError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithKey captures the key being processed when the invariant broke.
func (ie *InvariantError) WithKey(key string) *InvariantError {
	ie.key = key
	return ie
}

// WithSegmentID sets which segment was involved in the violation.
func (ie *InvariantError) WithSegmentID(id uint64) *InvariantError {
	ie.segmentID = id
	return ie
}

// WithOffset records the byte position at which the violation was detected.
func (ie *InvariantError) WithOffset(offset int64) *InvariantError {
	ie.offset = offset
	return ie
}

// Key returns the key being processed when the invariant broke.
func (ie *InvariantError) Key() string {
	return ie.key
}

// SegmentID returns the segment involved in the violation.
func (ie *InvariantError) SegmentID() uint64 {
	return ie.segmentID
}

// Offset returns the byte position at which the violation was detected.
func (ie *InvariantError) Offset() int64 {
	return ie.offset
}
