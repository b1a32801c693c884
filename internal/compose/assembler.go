package compose

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelsmith/internal/logging"
	"reelsmith/internal/media/align"
	"reelsmith/internal/media/concat"
	"reelsmith/internal/services"
	"reelsmith/internal/textutil"
)

// Config carries the fixed media parameters for assembly.
type Config struct {
	SampleRate    int
	Channels      int
	Bitrate       string
	OutputDir     string
	StagingDir    string
	FFmpegBinary  string
	FFprobeBinary string
}

// AudioClip pairs a raw speech file with the scene it narrates.
type AudioClip struct {
	Path          string
	TargetSeconds float64
	SceneNumber   int
	SceneName     string
}

// Request describes one composition. VideoClips and AudioClips must share
// the canonical scene order (scene number ascending).
type Request struct {
	Title      string
	VideoClips []string
	AudioClips []AudioClip
}

// Assembler orchestrates alignment, concatenation, and muxing.
type Assembler struct {
	cfg          Config
	aligner      *align.Aligner
	concatenator *concat.Concatenator
	logger       *slog.Logger
	run          func(ctx context.Context, name string, args ...string) error
}

// New constructs an assembler from the given media configuration.
func New(cfg Config, logger *slog.Logger) *Assembler {
	if strings.TrimSpace(cfg.FFmpegBinary) == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(cfg.FFprobeBinary) == "" {
		cfg.FFprobeBinary = "ffprobe"
	}
	a := &Assembler{
		cfg:          cfg,
		aligner:      align.New(cfg.SampleRate, cfg.Channels, cfg.FFmpegBinary, cfg.FFprobeBinary),
		concatenator: concat.New(cfg.FFmpegBinary),
		logger:       logging.NewComponentLogger(logger, "compose"),
		run:          defaultCommandRunner,
	}
	a.aligner.SetLogger(logger)
	a.concatenator.SetLogger(logger)
	return a
}

// SetLogger updates the assembler's logging destination.
func (a *Assembler) SetLogger(logger *slog.Logger) {
	if a == nil {
		return
	}
	a.logger = logging.NewComponentLogger(logger, "compose")
	a.aligner.SetLogger(logger)
	a.concatenator.SetLogger(logger)
}

// WithCommandRunner injects a custom command runner for tests. The runner is
// shared by alignment, concatenation, and muxing.
func (a *Assembler) WithCommandRunner(run func(ctx context.Context, name string, args ...string) error) {
	if a == nil || run == nil {
		return
	}
	a.run = run
	a.aligner.WithCommandRunner(run)
	a.concatenator.WithCommandRunner(run)
}

// WithProbe injects a custom duration probe for tests.
func (a *Assembler) WithProbe(probe func(ctx context.Context, binary, path string) (float64, error)) {
	if a != nil {
		a.aligner.WithProbe(probe)
	}
}

// Compose produces the final deliverable and returns its path. Any failure
// aborts the whole composition and leaves no deliverable behind; completed
// intermediates are removed on every exit path.
func (a *Assembler) Compose(ctx context.Context, req Request) (string, error) {
	if len(req.VideoClips) != len(req.AudioClips) {
		return "", services.Wrap(services.ErrValidation, "compose", "precondition",
			fmt.Sprintf("scene video count %d does not match audio count %d", len(req.VideoClips), len(req.AudioClips)), nil)
	}
	if len(req.VideoClips) == 0 {
		return "", services.Wrap(services.ErrValidation, "compose", "precondition", "no scenes to compose", nil)
	}
	for _, path := range req.VideoClips {
		if _, err := os.Stat(path); err != nil {
			return "", services.Wrap(services.ErrIO, "compose", "inputs", path, err)
		}
	}
	for _, clip := range req.AudioClips {
		if _, err := os.Stat(clip.Path); err != nil {
			return "", services.Wrap(services.ErrIO, "compose", "inputs", clip.Path, err)
		}
	}

	var intermediates []string
	defer func() {
		for _, path := range intermediates {
			_ = os.Remove(path)
		}
	}()

	alignedClips := make([]string, 0, len(req.AudioClips))
	for _, clip := range req.AudioClips {
		aligned, err := a.aligner.Align(ctx, clip.Path, clip.TargetSeconds, align.Options{})
		if err != nil {
			return "", fmt.Errorf("scene %d (%s): %w", clip.SceneNumber, clip.SceneName, err)
		}
		intermediates = append(intermediates, aligned)
		alignedClips = append(alignedClips, aligned)
	}

	videoOnly := filepath.Join(a.cfg.StagingDir, "video_noaudio.mp4")
	if err := a.concatenator.Concat(ctx, req.VideoClips, videoOnly); err != nil {
		return "", fmt.Errorf("video track: %w", err)
	}
	intermediates = append(intermediates, videoOnly)

	mergedSpeech := filepath.Join(a.cfg.StagingDir, "speech_merged.wav")
	if err := a.concatenator.Concat(ctx, alignedClips, mergedSpeech); err != nil {
		return "", fmt.Errorf("audio track: %w", err)
	}
	intermediates = append(intermediates, mergedSpeech)

	deliverable := filepath.Join(a.cfg.OutputDir, textutil.DeliverableName(req.Title)+".mp4")
	if err := a.mux(ctx, videoOnly, mergedSpeech, deliverable); err != nil {
		_ = os.Remove(deliverable)
		return "", err
	}

	a.logger.Info("composition complete",
		logging.String(logging.FieldEventType, "compose_complete"),
		logging.Int("scene_count", len(req.VideoClips)),
		logging.String("deliverable", deliverable),
	)
	return deliverable, nil
}

// mux combines the concatenated video stream (copied, untouched) with the
// merged speech track (re-encoded to AAC) into the final container.
func (a *Assembler) mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", a.cfg.Bitrate,
		outPath,
	}
	if err := a.run(ctx, a.cfg.FFmpegBinary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "compose", "mux", outPath, err)
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
