// Package errors provides the structured error taxonomy used throughout the
// Ember storage engine.
//
// The system is built around a foundational baseError that domain-specific
// error types embed. Each type captures the context its failures need for
// diagnosis: a StorageError knows which file and byte offset were involved,
// a CodecError carries the raw line that failed to decode, an InvariantError
// records the key and segment where an impossible condition was detected, and
// a ValidationError identifies the configuration field and rule that were
// violated. All of them share a common ErrorCode vocabulary so callers can
// branch on failure modes without parsing messages.
//
// Every public engine operation returns either success or an error from this
// package, with two exceptions: an operation on a closed engine returns the
// engine's ErrEngineClosed sentinel, a plain error, and the pkg/ember facade
// returns the context's own error when the context it is given is done.
// Errors propagate up unchanged from the component that raised them;
// the engine performs no automatic retry. The helpers below (IsStorageError,
// AsCodecError, ...) extract the typed context from anywhere in a wrapped
// chain, and the Classify* functions map raw syscall failures onto the more
// actionable storage codes (disk full, read-only filesystem, permissions).
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsStorageError determines if an error is related to storage operations,
// such as file I/O, disk space issues or segment file corruption.
func IsStorageError(err error) bool {
	var se *StorageError
	return stdErrors.As(err, &se)
}

// IsCodecError determines if an error was raised while encoding or decoding
// a record line.
func IsCodecError(err error) bool {
	var ce *CodecError
	return stdErrors.As(err, &ce)
}

// IsInvariantError determines if an error reports a broken engine invariant.
// Invariant errors indicate a bug or on-disk corruption; callers should not
// continue using the engine instance after observing one.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return stdErrors.As(err, &ie)
}

// IsValidationError checks if the given error is a ValidationError or
// contains one in its error chain.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsPartialRecord reports whether an error is the codec error produced by a
// trailing line with no terminating newline. WAL replay uses this to drop the
// torn record a mid-write crash leaves behind.
func IsPartialRecord(err error) bool {
	if ce, ok := AsCodecError(err); ok {
		return ce.Code() == ErrorCodePartialRecord
	}
	return false
}

// AsStorageError extracts StorageError context from an error chain, providing
// access to the segment ID, file name, path and offset involved in a failure.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsCodecError extracts CodecError context from an error chain, providing
// access to the raw line and file position that failed to decode.
func AsCodecError(err error) (*CodecError, bool) {
	var ce *CodecError
	if stdErrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsInvariantError extracts InvariantError context from an error chain.
func AsInvariantError(err error) (*InvariantError, bool) {
	var ie *InvariantError
	if stdErrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// AsValidationError extracts ValidationError context from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error that supports it, or
// returns ErrorCodeInternal for errors that don't carry one.
func GetErrorCode(err error) ErrorCode {
	if se, ok := AsStorageError(err); ok {
		return se.Code()
	}
	if ce, ok := AsCodecError(err); ok {
		return ce.Code()
	}
	if ie, ok := AsInvariantError(err); ok {
		return ie.Code()
	}
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	return ErrorCodeInternal
}

// ClassifyFileOpenError analyzes file opening failures and returns
// appropriate error codes based on the underlying system error. This provides
// much more specific information than a generic I/O error.
func ClassifyFileOpenError(err error, filePath, fileName string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied,
			"Insufficient permissions to open file",
		).WithPath(filePath).
			WithFileName(fileName).
			WithDetail("operation", "file_open")
	}

	if errno, ok := extractErrno(err); ok {
		switch errno {
		case syscall.ENOSPC:
			return NewStorageError(
				err, ErrorCodeDiskFull,
				"Insufficient disk space to create file",
			).WithPath(filePath).
				WithFileName(fileName).
				WithDetail("operation", "file_open")
		case syscall.EROFS:
			return NewStorageError(
				err, ErrorCodeFilesystemReadonly,
				"Cannot create file on read-only filesystem",
			).WithPath(filePath).
				WithFileName(fileName).
				WithDetail("operation", "file_open")
		}
	}

	return NewStorageError(err, ErrorCodeIO, "Failed to open file").
		WithPath(filePath).
		WithFileName(fileName).
		WithDetail("operation", "file_open")
}

// ClassifySyncError analyzes fsync failures and returns appropriate error
// codes. Sync failures can indicate anything from disk space problems to
// filesystem corruption.
func ClassifySyncError(err error, fileName, filePath string, offset int64) error {
	if errno, ok := extractErrno(err); ok {
		switch errno {
		case syscall.ENOSPC:
			return NewStorageError(
				err, ErrorCodeDiskFull,
				"Cannot sync file: insufficient disk space",
			).WithFileName(fileName).
				WithPath(filePath).
				WithOffset(offset).
				WithDetail("operation", "file_sync")
		case syscall.EROFS:
			return NewStorageError(
				err, ErrorCodeFilesystemReadonly,
				"Cannot sync file: filesystem is read-only",
			).WithFileName(fileName).
				WithPath(filePath).
				WithOffset(offset).
				WithDetail("operation", "file_sync")
		case syscall.EIO:
			// I/O errors during sync often indicate hardware or corruption issues.
			return NewStorageError(
				err, ErrorCodeIO,
				"I/O error during file sync - possible hardware or corruption issue",
			).WithFileName(fileName).
				WithPath(filePath).
				WithOffset(offset).
				WithDetail("operation", "file_sync").
				WithDetail("severity", "high")
		}
	}

	return NewStorageError(
		err, ErrorCodeIO, "Failed to sync file to disk",
	).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
		WithDetail("operation", "file_sync")
}

// ClassifyDirectoryCreationError analyzes directory creation failures and
// returns appropriate error codes based on the underlying system error.
func ClassifyDirectoryCreationError(err error, path string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied,
			"Insufficient permissions to create directory",
		).WithPath(path).WithDetail("operation", "directory_creation")
	}

	if errno, ok := extractErrno(err); ok {
		switch errno {
		case syscall.ENOSPC:
			return NewStorageError(
				err, ErrorCodeDiskFull,
				"Insufficient disk space to create directory",
			).WithPath(path).WithDetail("operation", "directory_creation")
		case syscall.EROFS:
			return NewStorageError(
				err, ErrorCodeFilesystemReadonly,
				"Cannot create directory on read-only filesystem",
			).WithPath(path).WithDetail("operation", "directory_creation")
		}
	}

	return NewStorageError(
		err, ErrorCodeIO, "Failed to create directory",
	).WithPath(path).WithDetail("operation", "directory_creation")
}

// extractErrno digs the syscall.Errno out of an *os.PathError chain.
func extractErrno(err error) (syscall.Errno, bool) {
	var pathErr *os.PathError
	if stdErrors.As(err, &pathErr) {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			return errno, true
		}
	}
	return 0, false
}
