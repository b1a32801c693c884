package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks precondition failures detected before any external
	// process is launched: count mismatches, non-positive durations, empty
	// concat lists.
	ErrValidation = errors.New("validation error")
	// ErrExternalTool marks a non-zero exit from ffmpeg, ffprobe, the
	// renderer, or the speech synthesizer.
	ErrExternalTool = errors.New("external tool error")
	// ErrIO marks missing inputs or unwritable output locations.
	ErrIO = errors.New("io error")
	// ErrConfiguration marks unusable configuration discovered at runtime.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures with no more specific classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatalToRequest reports whether the error should abort the whole video
// request rather than a single retryable step. Every classified failure in
// this pipeline aborts the request; only a nil error does not.
func IsFatalToRequest(err error) bool {
	return err != nil
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
