// Package logfile implements the append-only record file underlying both the
// write-ahead log and the segment files. It collapses the three roles a
// record file plays into one type: positioning (Seek/Tell), appending
// (Append returns the offset a write began at) and forward iteration
// (ScanFrom yields decoded records one at a time until EOF or the first
// error).
package logfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/iamNilotpal/ember/internal/record"
	"github.com/iamNilotpal/ember/pkg/errors"
)

// File is an append-only record file. All writes go to the end of the file;
// reads are forward scans from an arbitrary byte offset.
type File struct {
	file *os.File // Underlying file handle, opened read-write.
	path string   // Full path, kept for error context.
	name string   // Base name, kept for error context.
}

// Open opens (creating if necessary) an append-only record file.
func Open(path string) (*File, error) {
	name := filepath.Base(path)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, name)
	}

	return &File{file: file, path: path, name: name}, nil
}

// Path returns the full path of the underlying file.
func (f *File) Path() string {
	return f.path
}

// Seek positions the file at the given byte offset.
func (f *File) Seek(offset int64) error {
	if _, err := f.file.Seek(offset, io.SeekStart); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to seek record file").
			WithFileName(f.name).WithPath(f.path).WithOffset(offset)
	}
	return nil
}

// Tell reports the current byte offset.
func (f *File) Tell() (int64, error) {
	offset, err := f.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to read record file position").
			WithFileName(f.name).WithPath(f.path)
	}
	return offset, nil
}

// Append encodes the record and writes it at the end of the file, returning
// the byte offset at which the write began.
func (f *File) Append(rec record.Record) (int64, error) {
	line, err := rec.Encode()
	if err != nil {
		return 0, err
	}

	offset, err := f.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to seek to end of record file").
			WithFileName(f.name).WithPath(f.path)
	}

	if _, err := f.file.Write(line); err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to append record").
			WithFileName(f.name).WithPath(f.path).WithOffset(offset).
			WithDetail("key", rec.Key)
	}

	return offset, nil
}

// Sync flushes written data to stable storage.
func (f *File) Sync() error {
	if err := f.file.Sync(); err != nil {
		size, _ := f.Tell()
		return errors.ClassifySyncError(err, f.name, f.path, size)
	}
	return nil
}

// Truncate resets the file to zero length and rewinds the position.
func (f *File) Truncate() error {
	if err := f.file.Truncate(0); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to truncate record file").
			WithFileName(f.name).WithPath(f.path)
	}
	return f.Seek(0)
}

// Size reports the current length of the file in bytes.
func (f *File) Size() (int64, error) {
	stat, err := f.file.Stat()
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to stat record file").
			WithFileName(f.name).WithPath(f.path)
	}
	return stat.Size(), nil
}

// Close releases the underlying file handle.
func (f *File) Close() error {
	if err := f.file.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close record file").
			WithFileName(f.name).WithPath(f.path)
	}
	return nil
}

// ScanFrom positions the file at offset and returns a pull iterator over the
// records from there to EOF. The iterator is neither infinite nor restartable;
// a fresh scan requires a new call.
func (f *File) ScanFrom(offset int64) (*Scanner, error) {
	if err := f.Seek(offset); err != nil {
		return nil, err
	}

	return &Scanner{
		reader:   bufio.NewReader(f.file),
		next:     offset,
		fileName: f.name,
	}, nil
}

// Scanner decodes records one at a time from an append-only record file.
// Callers loop on Next, reading Offset and Record per item, and check Err
// once iteration stops.
type Scanner struct {
	reader   *bufio.Reader
	offset   int64         // Offset of the record most recently returned.
	next     int64         // Offset the next read will begin at.
	rec      record.Record // Record most recently decoded.
	err      error
	fileName string
}

// Next advances to the next record. It returns false at EOF or on the first
// error; Err distinguishes the two.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}

	line, err := s.reader.ReadString('\n')
	if err == io.EOF {
		if len(line) > 0 {
			// A trailing fragment without its newline: the signature of a
			// crash mid-append.
			s.err = errors.NewCodecError(nil, errors.ErrorCodePartialRecord, "Record file ends with a partial line").
				WithLine(line).
				WithOffset(s.next).
				WithFileName(s.fileName)
		}
		return false
	}
	if err != nil {
		s.err = errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to read record line").
			WithFileName(s.fileName).WithOffset(s.next)
		return false
	}

	rec, err := record.Decode([]byte(line))
	if err != nil {
		if ce, ok := errors.AsCodecError(err); ok {
			ce.WithOffset(s.next).WithFileName(s.fileName)
		}
		s.err = err
		return false
	}

	s.offset = s.next
	s.next += int64(len(line))
	s.rec = rec
	return true
}

// Offset returns the byte offset of the record most recently returned by Next.
func (s *Scanner) Offset() int64 {
	return s.offset
}

// Record returns the record most recently decoded by Next.
func (s *Scanner) Record() record.Record {
	return s.rec
}

// Err returns the error that stopped iteration, or nil after a clean EOF.
func (s *Scanner) Err() error {
	return s.err
}
