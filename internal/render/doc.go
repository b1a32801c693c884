// Package render drives the external scene renderer (a manim-compatible
// CLI) to produce one video-only MP4 clip per storyboard scene.
package render
