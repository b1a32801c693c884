// Package concat joins ordered lists of homogeneous media segments into one
// continuous stream using ffmpeg's concat demuxer with stream copy.
//
// The caller guarantees uniform encoding parameters across the inputs of a
// given kind; this package only handles manifest generation (with proper
// quoting of special characters in paths) and the subprocess invocation.
package concat
