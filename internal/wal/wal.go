// Package wal implements the write-ahead log. Every mutating operation is
// appended and fsynced here before the memtable is touched, so that a crash
// at any point leaves a replayable prefix of the accepted writes. The log is
// truncated to zero length once a flush has made its contents durable in a
// segment.
package wal

import (
	"github.com/iamNilotpal/ember/internal/logfile"
	"github.com/iamNilotpal/ember/internal/record"
	"github.com/iamNilotpal/ember/pkg/errors"
	"go.uber.org/zap"
)

// WAL is the engine's write-ahead log. It exclusively owns its underlying
// record file for the engine's lifetime.
type WAL struct {
	file *logfile.File
	log  *zap.SugaredLogger
}

// Config holds the parameters needed to open a write-ahead log.
type Config struct {
	Path   string
	Logger *zap.SugaredLogger
}

// Open opens (creating if necessary) the write-ahead log at the configured path.
func Open(config *Config) (*WAL, error) {
	file, err := logfile.Open(config.Path)
	if err != nil {
		return nil, err
	}
	return &WAL{file: file, log: config.Logger}, nil
}

// Append encodes the record, writes it at the end of the log and flushes it
// to stable storage. Durability granularity is per-write: once Append
// returns, a subsequent flush may safely discard the record from the log.
func (w *WAL) Append(rec record.Record) error {
	if _, err := w.file.Append(rec); err != nil {
		return err
	}
	return w.file.Sync()
}

// Replay returns a scanner over the log from offset zero. Records appear in
// the exact order they were appended.
func (w *WAL) Replay() (*logfile.Scanner, error) {
	return w.file.ScanFrom(0)
}

// ReplayAll collects every record in the log in append order. A partial
// trailing line, the residue of a crash mid-append, is dropped; any other
// malformed line stops replay and surfaces its codec error to the caller.
func (w *WAL) ReplayAll() ([]record.Record, error) {
	scanner, err := w.Replay()
	if err != nil {
		return nil, err
	}

	var records []record.Record
	for scanner.Next() {
		records = append(records, scanner.Record())
	}
	if err := scanner.Err(); err != nil {
		if errors.IsPartialRecord(err) {
			w.log.Infow("Dropping partial trailing record from write-ahead log",
				"path", w.file.Path(),
				"replayedRecords", len(records),
			)
			return records, nil
		}
		return nil, err
	}

	return records, nil
}

// Truncate discards the log's contents, resetting it to zero length.
func (w *WAL) Truncate() error {
	return w.file.Truncate()
}

// Size reports the current length of the log in bytes. A zero-length log
// means there are no writes awaiting a flush.
func (w *WAL) Size() (int64, error) {
	return w.file.Size()
}

// Path returns the full path of the log file.
func (w *WAL) Path() string {
	return w.file.Path()
}

// Close releases the log's file handle.
func (w *WAL) Close() error {
	return w.file.Close()
}
