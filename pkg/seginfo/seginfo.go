// Package seginfo provides utilities for managing sequential segment files in
// a file-based storage system.
//
// Filename Format: prefix_NNNNN_timestamp.seg
//
// Where:
//   - prefix: A configurable string identifying the file type (e.g., "segment").
//   - NNNNN: A zero-padded 5-digit sequence number (00001, 00002, etc.).
//   - timestamp: A nanosecond-precision Unix timestamp for uniqueness and traceability.
//   - .seg: A fixed file extension.
//
// Each segment file may be accompanied by a sparse index sidecar that shares
// its base name with the .idx extension:
//
//	segment_00001_1678881234567890.seg
//	segment_00001_1678881234567890.idx
//
// Zero-padded IDs and monotonically increasing timestamps make plain
// lexicographic sorting of filenames equal to sorting by segment ordinal.
package seginfo

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/iamNilotpal/ember/pkg/filesys"
)

const (
	// SegmentExtension is the file extension of segment data files.
	SegmentExtension = ".seg"

	// SidecarExtension is the file extension of sparse index sidecar files.
	SidecarExtension = ".idx"
)

// GenerateName creates a properly formatted filename for a new segment file.
// %05d ensures zero-padding (00001, 00002, etc.) for proper lexicographic sorting.
func GenerateName(id uint64, prefix string) string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("%s_%05d_%d%s", prefix, id, timestamp, SegmentExtension)
}

// SidecarName derives the sparse index sidecar filename for a segment file.
func SidecarName(segmentName string) string {
	return strings.TrimSuffix(segmentName, SegmentExtension) + SidecarExtension
}

// List returns the full paths of every segment file under dir with the given
// prefix, sorted ascending by segment ordinal. The result is empty when no
// segments exist yet.
func List(dir, prefix string) ([]string, error) {
	// Construct the search pattern for segment files.
	// Example: "/var/data/segments/segment_*.seg"
	searchPattern := filepath.Join(dir, prefix+"*"+SegmentExtension)

	matchingFiles, err := filesys.ReadDir(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to read segment directory with pattern %s: %w", searchPattern, err)
	}

	// Lexicographic order equals ordinal order thanks to the zero-padded IDs.
	slices.Sort(matchingFiles)
	return matchingFiles, nil
}

// Last returns the highest segment ordinal currently on disk, or zero when
// the directory holds no segments yet.
func Last(dir, prefix string) (uint64, error) {
	files, err := List(dir, prefix)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	return ParseSegmentID(files[len(files)-1], prefix)
}

// ParseSegmentID extracts the sequence ID from a segment filename.
func ParseSegmentID(fullPath, prefix string) (uint64, error) {
	// Extract just the filename from the full path.
	_, filename := filepath.Split(fullPath)

	// Validate that the filename starts with our expected prefix.
	if !strings.HasPrefix(filename, prefix) {
		return 0, fmt.Errorf("filename %s does not start with expected prefix %s", filename, prefix)
	}

	// Remove the prefix and file extension to get the core components.
	// Example: "segment_00001_1678881234567890.seg" -> "00001_1678881234567890"
	withoutPrefix := strings.TrimPrefix(filename, prefix)
	withoutExtension := strings.TrimSuffix(withoutPrefix, filepath.Ext(withoutPrefix))

	// Split by underscores to separate ID and timestamp.
	// Example: "_00001_1678881234567890" -> ["", "00001", "1678881234567890"]
	parts := strings.Split(withoutExtension, "_")

	// We expect: ["", "ID", "timestamp"] (empty first element due to leading underscore).
	if len(parts) < 3 {
		return 0, fmt.Errorf("filename %s has unexpected format, expected prefix_ID_timestamp.seg", filename)
	}

	// Parse the ID component (second element after splitting).
	idStr := parts[1]
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse segment ID '%s' as integer: %w", idStr, err)
	}

	return id, nil
}
