// Package ember provides an embedded key-value store organized as a
// log-structured merge tree. Writes are made durable in a write-ahead log,
// buffered in an in-memory table and flushed to immutable sorted segment
// files; reads search memory first and then segments newest to oldest, with
// per-segment sparse indices bounding the on-disk scans. It is designed to be
// embedded in a single process as a library: there is no network surface, and
// an instance must not be shared across goroutines without external
// serialization.
package ember

import (
	"context"

	"github.com/iamNilotpal/ember/internal/engine"
	"github.com/iamNilotpal/ember/pkg/logger"
	"github.com/iamNilotpal/ember/pkg/options"
)

// Instance represents a single Ember store. It encapsulates the engine
// responsible for data handling and the configuration options this instance
// was built with.
//
// Instance is the primary entry point for interacting with the store,
// providing methods for writing, reading and deleting key-value pairs and
// for recovering state from a write-ahead log.
type Instance struct {
	engine  *engine.Engine   // The underlying storage engine handling read/write operations.
	options *options.Options // Configuration options applied to this instance.
}

// NewInstance creates and initializes a new Ember store instance. Defaults
// are applied first, then any provided functional options, and the resulting
// configuration is validated before the engine is constructed. If a non-empty
// write-ahead log already exists at the configured path, it is replayed
// before the instance accepts any operation.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	// Initialize a logger for the given service.
	log := logger.New(service)

	// Initialize default options.
	defaultOpts := options.NewDefaultOptions()

	// Apply any provided functional options to override defaults.
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	if err := defaultOpts.Validate(); err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// Write stores a key-value pair in the store. If the key already exists, its
// value will be updated. The operation is durable: the record is appended to
// the write-ahead log before it becomes readable.
func (i *Instance) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return i.engine.Write(key, value)
}

// Read retrieves the value associated with the given key. The boolean is
// false when the key was never written or its most recent record is a delete
// marker.
func (i *Instance) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	return i.engine.Read(key)
}

// Contains reports whether the key currently resolves to a live value.
func (i *Instance) Contains(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return i.engine.Contains(key)
}

// Delete removes a key-value pair from the store by writing a tombstone that
// shadows any older value of the key. Deleting an absent key is not an error.
func (i *Instance) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return i.engine.Delete(key)
}

// RecoverFrom replays an external write-ahead log file into this instance,
// applying its records in file order. The source file is opened for the
// duration of the call only.
func (i *Instance) RecoverFrom(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return i.engine.RecoverFrom(path)
}

// Close gracefully shuts down the instance, releasing the write-ahead log
// and segment file handles.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
