// Package record implements the line codec shared by the write-ahead log and
// the segment files. A record is one JSON object per line, terminated by a
// single newline:
//
//	{"key":"user:42","value":"..."}
//	{"key":"user:42","value":null}
//
// A null value denotes a tombstone, the marker that shadows older values of
// the key. The empty string is a legal value distinct from a tombstone.
// JSON escaping guarantees an encoded record never contains an unescaped
// newline, so line boundaries are always record boundaries.
package record

import (
	"bytes"
	"encoding/json"

	"github.com/iamNilotpal/ember/pkg/errors"
)

// Record is a single logical entry: a non-empty key and either a value or a
// tombstone. A nil Value marks the tombstone case.
type Record struct {
	Key   string
	Value *string
}

// wireRecord is the on-disk shape of a record. Kept separate from Record so
// the exported type doesn't carry JSON tags it has no business exposing.
type wireRecord struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// New creates a value record.
func New(key, value string) Record {
	return Record{Key: key, Value: &value}
}

// NewTombstone creates a delete marker for key.
func NewTombstone(key string) Record {
	return Record{Key: key}
}

// IsTombstone reports whether this record marks its key as deleted.
func (r Record) IsTombstone() bool {
	return r.Value == nil
}

// Encode serializes the record as one newline-terminated JSON line.
func (r Record) Encode() ([]byte, error) {
	if r.Key == "" {
		return nil, errors.NewCodecError(nil, errors.ErrorCodeEmptyKey, "Cannot encode record with empty key")
	}

	line, err := json.Marshal(wireRecord{Key: r.Key, Value: r.Value})
	if err != nil {
		return nil, errors.NewCodecError(err, errors.ErrorCodeMalformedRecord, "Failed to encode record").
			WithDetail("key", r.Key)
	}

	return append(line, '\n'), nil
}

// Decode parses one record line. The line must be a well-formed JSON object
// carrying both the "key" and "value" fields; a missing field is malformed,
// which is distinct from "value" being null. A single trailing newline is
// tolerated.
func Decode(line []byte) (Record, error) {
	line = bytes.TrimSuffix(line, []byte("\n"))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return Record{}, errors.NewCodecError(err, errors.ErrorCodeMalformedRecord, "Record line is not a JSON object").
			WithLine(string(line))
	}

	rawKey, hasKey := fields["key"]
	rawValue, hasValue := fields["value"]
	if !hasKey || !hasValue {
		return Record{}, errors.NewCodecError(nil, errors.ErrorCodeMalformedRecord, "Record object is missing a required field").
			WithLine(string(line)).
			WithDetail("hasKey", hasKey).
			WithDetail("hasValue", hasValue)
	}

	var rec Record
	if err := json.Unmarshal(rawKey, &rec.Key); err != nil {
		return Record{}, errors.NewCodecError(err, errors.ErrorCodeMalformedRecord, "Record key is not a string").
			WithLine(string(line))
	}
	if rec.Key == "" {
		return Record{}, errors.NewCodecError(nil, errors.ErrorCodeEmptyKey, "Record key is empty").
			WithLine(string(line))
	}
	if err := json.Unmarshal(rawValue, &rec.Value); err != nil {
		return Record{}, errors.NewCodecError(err, errors.ErrorCodeMalformedRecord, "Record value is neither a string nor null").
			WithLine(string(line))
	}

	return rec, nil
}
