package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/storyboard"
)

const defaultResolution = "1920x1080"

// Config carries renderer invocation settings.
type Config struct {
	Command   string
	Quality   string
	FrameRate int
	OutputDir string
}

// Renderer compiles storyboard scenes into video clips via an external
// renderer process.
type Renderer struct {
	cfg    Config
	logger *slog.Logger
	run    func(ctx context.Context, name string, args ...string) error
}

// New constructs a renderer.
func New(cfg Config) *Renderer {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = "manim"
	}
	return &Renderer{
		cfg:    cfg,
		logger: logging.NewNop(),
		run:    defaultCommandRunner,
	}
}

// SetLogger updates the renderer's logging destination.
func (r *Renderer) SetLogger(logger *slog.Logger) {
	if r != nil {
		r.logger = logging.NewComponentLogger(logger, "render")
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (r *Renderer) WithCommandRunner(run func(ctx context.Context, name string, args ...string) error) {
	if r != nil && run != nil {
		r.run = run
	}
}

// RenderScene writes the scene program to workDir, invokes the renderer,
// and moves the produced clip into the configured output directory under
// the scene's canonical name.
func (r *Renderer) RenderScene(ctx context.Context, scene storyboard.Scene, instructions storyboard.RenderingInstructions, workDir string) (string, error) {
	programPath := filepath.Join(workDir, "scene_"+scene.Name+".py")
	if err := os.WriteFile(programPath, []byte(sceneProgram(scene)), 0o644); err != nil {
		return "", services.Wrap(services.ErrIO, "render", "write scene program", scene.Name, err)
	}
	defer func() {
		_ = os.Remove(programPath)
	}()

	resolution := strings.TrimSpace(instructions.Resolution)
	if resolution == "" {
		resolution = defaultResolution
	}
	frameRate := instructions.FrameRate
	if frameRate <= 0 {
		frameRate = r.cfg.FrameRate
	}
	quality := strings.TrimSpace(instructions.Quality)
	if quality == "" {
		quality = r.cfg.Quality
	}

	args := []string{
		programPath,
		scene.Name,
		"--fps", fmt.Sprintf("%d", frameRate),
		"--" + quality,
		"-r", resolution,
		"--format", "mp4",
	}

	r.logger.Debug("rendering scene",
		logging.String(logging.FieldScene, scene.Name),
		logging.String("resolution", resolution),
		logging.Int("frame_rate", frameRate),
	)

	if err := r.run(ctx, r.cfg.Command, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "renderer", scene.Name, err)
	}

	produced, err := r.locateOutput(scene, workDir)
	if err != nil {
		return "", err
	}

	finalPath := filepath.Join(r.cfg.OutputDir, scene.ClipFileName())
	if produced != finalPath {
		if err := fileutil.MoveFile(produced, finalPath); err != nil {
			return "", services.Wrap(services.ErrIO, "render", "collect output", scene.Name, err)
		}
	}
	return finalPath, nil
}

// locateOutput finds the freshly rendered clip: first at the canonical
// location, then inside the renderer's default media tree under workDir.
func (r *Renderer) locateOutput(scene storyboard.Scene, workDir string) (string, error) {
	canonical := filepath.Join(r.cfg.OutputDir, scene.ClipFileName())
	if _, err := os.Stat(canonical); err == nil {
		return canonical, nil
	}

	var candidates []string
	mediaRoot := filepath.Join(workDir, "media")
	_ = filepath.WalkDir(mediaRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".mp4") {
			candidates = append(candidates, path)
		}
		return nil
	})
	if len(candidates) == 0 {
		return "", services.Wrap(services.ErrIO, "render", "locate output",
			fmt.Sprintf("no MP4 produced for scene %q", scene.Name), nil)
	}
	sort.Strings(candidates)
	return candidates[len(candidates)-1], nil
}

// sceneProgram renders the scene's visual code into a runnable program for
// the renderer CLI.
func sceneProgram(scene storyboard.Scene) string {
	var b strings.Builder
	b.WriteString("from manim import *\n\n\n")
	b.WriteString("class " + scene.Name + "(Scene):\n")
	b.WriteString("    def construct(self):\n")
	for _, line := range strings.Split(scene.VisualCode, "\n") {
		b.WriteString("        " + line + "\n")
	}
	return b.String()
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
