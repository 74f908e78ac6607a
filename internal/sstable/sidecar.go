package sstable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/iamNilotpal/ember/internal/sparse"
	"github.com/iamNilotpal/ember/pkg/seginfo"
)

// sidecar is the persisted form of a segment's sparse index. It lives next to
// the segment file under the same base name with the .idx extension and is
// keyed by the segment ordinal so a stray sidecar can never be attached to
// the wrong segment.
type sidecar struct {
	SegmentID uint64         `json:"segmentId"`
	Entries   []sparse.Entry `json:"entries"`
}

// saveSidecar persists a segment's sparse index. The write is atomic
// (write-to-temp, rename) so a crash can never leave a torn sidecar — at
// worst the old or no sidecar remains, and both cases fall back to a scan.
func saveSidecar(segmentPath string, id uint64, index *sparse.Index) error {
	data, err := json.Marshal(sidecar{SegmentID: id, Entries: index.Entries()})
	if err != nil {
		return fmt.Errorf("failed to encode sparse index sidecar: %w", err)
	}

	path := seginfo.SidecarName(segmentPath)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write sparse index sidecar %s: %w", path, err)
	}
	return nil
}

// loadSidecar reads a segment's persisted sparse index. Any failure —
// missing file, malformed JSON, ordinal mismatch, non-monotonic entries — is
// returned for the caller to log before rebuilding the index by scan; the
// sidecar is never trusted over the segment itself.
func loadSidecar(segmentPath string, id uint64) (*sparse.Index, error) {
	path := seginfo.SidecarName(segmentPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("malformed sparse index sidecar %s: %w", path, err)
	}
	if sc.SegmentID != id {
		return nil, fmt.Errorf("sidecar %s belongs to segment %d, expected %d", path, sc.SegmentID, id)
	}

	return sparse.FromEntries(sc.Entries)
}
