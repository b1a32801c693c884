package storyboard

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"reelsmith/internal/services"
	"reelsmith/internal/textutil"
)

// Metadata describes the video as a whole.
type Metadata struct {
	Title                string   `json:"title"`
	TotalDurationSeconds float64  `json:"duration_seconds"`
	KeyConcepts          []string `json:"key_concepts"`
}

// RenderingInstructions carry the shared visual parameters for every scene.
type RenderingInstructions struct {
	Resolution string `json:"resolution"`
	FrameRate  int    `json:"frame_rate"`
	Quality    string `json:"quality"`
}

// Scene is one indivisible unit of content with its own target duration,
// narration script, and renderer program.
type Scene struct {
	Number          int     `json:"scene_number"`
	Name            string  `json:"scene_name"`
	DurationSeconds float64 `json:"duration_seconds"`
	VoiceOver       string  `json:"voice_over"`
	VisualCode      string  `json:"visual_code"`
}

// Storyboard is the full validated content structure.
type Storyboard struct {
	Metadata     Metadata              `json:"video_metadata"`
	Scenes       []Scene               `json:"scenes"`
	Instructions RenderingInstructions `json:"rendering_instructions"`
}

// Decode parses, normalizes, and validates a storyboard JSON document.
func Decode(data []byte) (*Storyboard, error) {
	var board Storyboard
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, services.Wrap(services.ErrValidation, "storyboard", "decode", "invalid JSON", err)
	}
	board.Normalize()
	if err := board.Validate(); err != nil {
		return nil, err
	}
	return &board, nil
}

// Normalize sorts scenes into canonical order and trims text fields.
// Scene number ascending is the one ordering every per-scene collection
// shares; nothing downstream reorders by content.
func (s *Storyboard) Normalize() {
	sort.SliceStable(s.Scenes, func(i, j int) bool {
		return s.Scenes[i].Number < s.Scenes[j].Number
	})
	s.Metadata.Title = strings.TrimSpace(s.Metadata.Title)
	for i := range s.Scenes {
		s.Scenes[i].Name = strings.TrimSpace(s.Scenes[i].Name)
	}
}

// Validate checks the structural invariants the pipeline depends on.
func (s *Storyboard) Validate() error {
	fail := func(message string) error {
		return services.Wrap(services.ErrValidation, "storyboard", "validate", message, nil)
	}

	if s.Metadata.Title == "" {
		return fail("video_metadata.title is required")
	}
	if len(s.Scenes) == 0 {
		return fail("at least one scene is required")
	}

	numbers := make(map[int]struct{}, len(s.Scenes))
	names := make(map[string]struct{}, len(s.Scenes))
	for _, scene := range s.Scenes {
		if scene.Number < 1 {
			return fail(fmt.Sprintf("scene %q: scene_number must be >= 1, got %d", scene.Name, scene.Number))
		}
		if _, dup := numbers[scene.Number]; dup {
			return fail(fmt.Sprintf("duplicate scene_number %d", scene.Number))
		}
		numbers[scene.Number] = struct{}{}

		if scene.Name == "" {
			return fail(fmt.Sprintf("scene %d: scene_name is required", scene.Number))
		}
		if scene.Name != textutil.SanitizeFileName(scene.Name) {
			return fail(fmt.Sprintf("scene %d: scene_name %q is not filesystem-safe", scene.Number, scene.Name))
		}
		if _, dup := names[scene.Name]; dup {
			return fail(fmt.Sprintf("duplicate scene_name %q", scene.Name))
		}
		names[scene.Name] = struct{}{}

		if scene.DurationSeconds <= 0 {
			return fail(fmt.Sprintf("scene %q: duration_seconds must be positive, got %.3f", scene.Name, scene.DurationSeconds))
		}
		if strings.TrimSpace(scene.VoiceOver) == "" {
			return fail(fmt.Sprintf("scene %q: voice_over is required", scene.Name))
		}
	}
	return nil
}

// DeliverableName derives the final output filename (without directory) from
// the video title. A repeat run with the same title overwrites the previous
// deliverable.
func (s *Storyboard) DeliverableName() string {
	return textutil.DeliverableName(s.Metadata.Title) + ".mp4"
}

// ClipFileName returns the rendered clip filename for a scene.
func (sc Scene) ClipFileName() string {
	return sc.Name + ".mp4"
}

// SpeechFileName returns the raw speech clip filename for a scene.
func (sc Scene) SpeechFileName() string {
	return fmt.Sprintf("audio_%d.wav", sc.Number)
}
