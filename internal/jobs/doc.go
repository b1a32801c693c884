// Package jobs persists video generation jobs in SQLite.
//
// Each job tracks one concept-to-deliverable run through the pipeline
// stages (scripting, rendering, synthesizing, composing). The store is
// the source of truth for job status and progress; the CLI reads it to
// report history and in-flight work.
package jobs
