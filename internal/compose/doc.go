// Package compose assembles per-scene rendered clips and speech audio into
// the final deliverable video.
//
// The assembler validates that scene video and audio counts agree before any
// subprocess runs, aligns each scene's speech to its target duration, joins
// the video and audio sequences via stream copy, and muxes the two streams
// into one MP4. Video is never re-encoded in this pipeline; only the audio
// track is (to AAC at the configured bitrate). Intermediate artifacts are
// removed on every exit path, success or failure.
package compose
