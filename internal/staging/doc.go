// Package staging manages per-job scratch directories.
//
// Every pipeline run works inside its own workspace under the configured
// staging root. A file lock on the root prevents concurrent runs from
// interleaving ffmpeg intermediates, and stale workspaces left behind by
// crashed runs are swept on startup.
package staging
