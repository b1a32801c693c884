// Package ffprobe wraps the ffprobe binary for media inspection.
//
// The pipeline uses it to read source speech durations before alignment and
// to verify deliverable stream layout in tests and diagnostics.
package ffprobe
