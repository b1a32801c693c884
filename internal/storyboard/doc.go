// Package storyboard defines the validated content structure consumed by the
// rendering, synthesis, and assembly stages.
//
// A Storyboard arrives as JSON from the language model. Decode parses it,
// normalizes scene ordering (scene number ascending is the canonical render
// and playback order everywhere in the pipeline), and validates the fields
// the downstream stages rely on.
package storyboard
