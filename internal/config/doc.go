// Package config loads, normalizes, and validates reelsmith configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// REELSMITH_LLM_API_KEY. The Config type centralizes every knob the CLI and
// pipeline need, so staging/output directories and external tool commands are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
