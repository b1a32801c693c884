package storyboard

import (
	"errors"
	"testing"

	"reelsmith/internal/services"
)

const validDoc = `{
  "video_metadata": {"title": "Backpropagation Explained", "duration_seconds": 12, "key_concepts": ["chain rule"]},
  "scenes": [
    {"scene_number": 2, "scene_name": "ChainRule", "duration_seconds": 7, "voice_over": "Apply the chain rule.", "visual_code": "..."},
    {"scene_number": 1, "scene_name": "Intro", "duration_seconds": 5, "voice_over": "Welcome.", "visual_code": "..."}
  ],
  "rendering_instructions": {"resolution": "1920x1080", "frame_rate": 30, "quality": "medium_quality"}
}`

func TestDecodeNormalizesSceneOrder(t *testing.T) {
	board, err := Decode([]byte(validDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if board.Scenes[0].Number != 1 || board.Scenes[1].Number != 2 {
		t.Fatalf("expected scenes sorted by number, got %+v", board.Scenes)
	}
	if board.DeliverableName() != "Backpropagation_Explained.mp4" {
		t.Fatalf("unexpected deliverable name %q", board.DeliverableName())
	}
}

func TestDecodeReadsMetadataDuration(t *testing.T) {
	board, err := Decode([]byte(validDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if board.Metadata.TotalDurationSeconds != 12 {
		t.Fatalf("expected total duration 12, got %v", board.Metadata.TotalDurationSeconds)
	}
	if len(board.Metadata.KeyConcepts) != 1 || board.Metadata.KeyConcepts[0] != "chain rule" {
		t.Fatalf("unexpected key concepts %v", board.Metadata.KeyConcepts)
	}
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("{nope"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Storyboard)
	}{
		{"missing title", func(b *Storyboard) { b.Metadata.Title = "" }},
		{"no scenes", func(b *Storyboard) { b.Scenes = nil }},
		{"zero scene number", func(b *Storyboard) { b.Scenes[0].Number = 0 }},
		{"duplicate number", func(b *Storyboard) { b.Scenes[1].Number = b.Scenes[0].Number }},
		{"empty name", func(b *Storyboard) { b.Scenes[0].Name = "" }},
		{"unsafe name", func(b *Storyboard) { b.Scenes[0].Name = "a/b" }},
		{"duplicate name", func(b *Storyboard) { b.Scenes[1].Name = b.Scenes[0].Name }},
		{"non-positive duration", func(b *Storyboard) { b.Scenes[0].DurationSeconds = 0 }},
		{"empty voice over", func(b *Storyboard) { b.Scenes[0].VoiceOver = " " }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			board, err := Decode([]byte(validDoc))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			tc.mutate(board)
			if err := board.Validate(); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSceneFileNames(t *testing.T) {
	scene := Scene{Number: 3, Name: "Conclusion"}
	if scene.ClipFileName() != "Conclusion.mp4" {
		t.Fatalf("unexpected clip name %q", scene.ClipFileName())
	}
	if scene.SpeechFileName() != "audio_3.wav" {
		t.Fatalf("unexpected speech name %q", scene.SpeechFileName())
	}
}
