// Package pipeline orchestrates a full generation run: storyboard
// scripting, scene rendering, speech synthesis, and final composition.
//
// Each stage runs under its own timeout and records its transition in the
// jobs store, so an interrupted run leaves an inspectable failure state
// rather than a half-written deliverable.
package pipeline
