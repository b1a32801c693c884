// Package textutil provides small text normalization helpers shared across
// the pipeline: filesystem-safe names for scenes and deliverables, and
// display-title casing.
package textutil
