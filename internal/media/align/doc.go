// Package align rescales speech clips so their duration matches a scene's
// target, using chained bounded-ratio tempo filters in a single ffmpeg pass.
//
// ffmpeg's atempo filter only accepts ratios in [0.5, 2.0] per application.
// SplitSpeedFactor decomposes an arbitrary positive speed ratio into a chain
// of acceptable sub-ratios; Aligner applies the chain, resamples to the
// configured output rate and channel count, and optionally appends an
// independent pitch stage.
package align
