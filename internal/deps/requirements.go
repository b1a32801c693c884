package deps

import "reelsmith/internal/config"

// DefaultRequirements returns the external binaries a full pipeline run needs.
func DefaultRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "audio alignment, concatenation, and muxing",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "media duration and stream inspection",
		},
		{
			Name:        "Renderer",
			Command:     cfg.Render.Command,
			Description: "scene rendering (manim-compatible CLI)",
		},
		{
			Name:        "TTS",
			Command:     cfg.TTS.Command,
			Description: "speech synthesis for narration",
		},
	}
}

// MissingRequired returns the non-optional statuses that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, status)
		}
	}
	return missing
}
