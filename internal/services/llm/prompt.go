package llm

import (
	"fmt"
	"sort"
	"strings"
)

// storyboardSystemPrompt instructs the model to respond with the exact
// storyboard JSON schema the pipeline consumes.
const storyboardSystemPrompt = `You are an expert educational video creator. You write storyboards for
narrated videos whose visuals are rendered with the Manim library.

Respond with JSON only, using exactly this structure:
{
  "video_metadata": {
    "title": "Clear, descriptive title",
    "duration_seconds": <estimated total duration>,
    "key_concepts": ["concept1", "concept2"]
  },
  "scenes": [
    {
      "scene_number": 1,
      "scene_name": "DescriptiveSceneName",
      "duration_seconds": <scene duration>,
      "voice_over": "Complete narration script for this scene",
      "visual_code": "Body of a Manim Scene.construct method for this scene"
    }
  ],
  "rendering_instructions": {
    "resolution": "WIDTHxHEIGHT",
    "frame_rate": 30,
    "quality": "medium_quality"
  }
}

Scene names must be valid Python class names, unique within the video.
Scene numbers start at 1 and increase without gaps. The visual_code for
each scene is indented into a construct method verbatim, so it must not
contain class or def statements. Every scene needs narration.`

// FormatSpec describes the pacing and framing for one video format.
type FormatSpec struct {
	AspectRatio string
	Resolution  string
	Duration    string
	Structure   string
}

var formatSpecs = map[string]FormatSpec{
	"short": {
		AspectRatio: "9:16 portrait",
		Resolution:  "1080x1920",
		Duration:    "30-60 seconds",
		Structure:   "hook, single core concept, memorable conclusion",
	},
	"medium": {
		AspectRatio: "16:9 landscape",
		Resolution:  "1920x1080",
		Duration:    "10-15 minutes",
		Structure:   "introduction, foundation, core teaching, application, summary",
	},
	"long": {
		AspectRatio: "16:9 landscape",
		Resolution:  "1920x1080",
		Duration:    "30-40 minutes",
		Structure:   "opening, foundation building, core instruction, synthesis, conclusion",
	},
}

// FormatNames returns the supported format identifiers in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(formatSpecs))
	for name := range formatSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsValidFormat reports whether name is a supported video format.
func IsValidFormat(name string) bool {
	_, ok := formatSpecs[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// userPrompt renders the storyboard request for the model.
func userPrompt(req Request) string {
	spec := formatSpecs[strings.ToLower(strings.TrimSpace(req.Format))]
	audience := strings.TrimSpace(req.AudienceLevel)
	if audience == "" {
		audience = "general"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Create an educational video storyboard about: %s\n\n", strings.TrimSpace(req.Concept))
	fmt.Fprintf(&b, "Video format: %s (%s, %s)\n", strings.ToLower(strings.TrimSpace(req.Format)), spec.AspectRatio, spec.Resolution)
	fmt.Fprintf(&b, "Target duration: %s\n", spec.Duration)
	fmt.Fprintf(&b, "Structure: %s\n", spec.Structure)
	fmt.Fprintf(&b, "Audience level: %s\n", audience)
	b.WriteString("\nUse the resolution above in rendering_instructions. Break the video into focused scenes and keep each scene's narration paced to its declared duration.")
	return b.String()
}
