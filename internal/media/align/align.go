package align

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelsmith/internal/logging"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/services"
)

// atempo accepts ratios in [minTempoRatio, maxTempoRatio] per filter stage.
const (
	minTempoRatio = 0.5
	maxTempoRatio = 2.0
)

// Options carries per-clip alignment adjustments.
type Options struct {
	// PitchShift, when non-zero, appends an independent pitch stage after
	// all tempo stages. It does not participate in the speed computation.
	PitchShift float64
}

// Aligner stretches speech clips to target durations via ffmpeg.
type Aligner struct {
	sampleRate    int
	channels      int
	ffmpegBinary  string
	ffprobeBinary string
	logger        *slog.Logger
	run           func(ctx context.Context, name string, args ...string) error
	probe         func(ctx context.Context, binary, path string) (float64, error)
}

// New constructs an aligner emitting clips at the fixed sample rate and
// channel count, regardless of each source file's original parameters.
func New(sampleRate, channels int, ffmpegBinary, ffprobeBinary string) *Aligner {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Aligner{
		sampleRate:    sampleRate,
		channels:      channels,
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		logger:        logging.NewNop(),
		run:           defaultCommandRunner,
		probe:         ffprobe.Duration,
	}
}

// SetLogger updates the aligner's logging destination.
func (a *Aligner) SetLogger(logger *slog.Logger) {
	if a != nil {
		a.logger = logging.NewComponentLogger(logger, "align")
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (a *Aligner) WithCommandRunner(run func(ctx context.Context, name string, args ...string) error) {
	if a != nil && run != nil {
		a.run = run
	}
}

// WithProbe injects a custom duration probe for tests.
func (a *Aligner) WithProbe(probe func(ctx context.Context, binary, path string) (float64, error)) {
	if a != nil && probe != nil {
		a.probe = probe
	}
}

// SplitSpeedFactor decomposes a positive speed ratio into atempo-acceptable
// stages. Ratios above 2.0 peel off factors of exactly 2.0; ratios below 0.5
// peel off factors of exactly 0.5; the in-range remainder is always emitted
// as the final stage, so a ratio already inside [0.5, 2.0] — including
// exactly 1.0 — yields exactly one stage. Each peel halves the remaining
// log-distance, so the chain has O(log speed) stages.
func SplitSpeedFactor(speed float64) []float64 {
	if speed <= 0 {
		return nil
	}
	var factors []float64
	remaining := speed
	for remaining < minTempoRatio || remaining > maxTempoRatio {
		segment := maxTempoRatio
		if remaining < minTempoRatio {
			segment = minTempoRatio
		}
		factors = append(factors, segment)
		remaining /= segment
	}
	return append(factors, remaining)
}

// AlignedPath returns the output path Align writes for a given source clip.
func AlignedPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + "_aligned" + ext
}

// Align stretches sourcePath so its duration matches targetSeconds and
// writes the result next to the source. The output is resampled to the
// configured sample rate and channel count in the same pass.
func (a *Aligner) Align(ctx context.Context, sourcePath string, targetSeconds float64, opts Options) (string, error) {
	if targetSeconds <= 0 {
		return "", services.Wrap(services.ErrValidation, "align", "",
			fmt.Sprintf("target duration must be positive, got %.3f", targetSeconds), nil)
	}

	sourceSeconds, err := a.probe(ctx, a.ffprobeBinary, sourcePath)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "align", "probe", sourcePath, err)
	}

	speed := sourceSeconds / targetSeconds
	factors := SplitSpeedFactor(speed)
	filters := make([]string, 0, len(factors)+1)
	for _, factor := range factors {
		filters = append(filters, fmt.Sprintf("atempo=%.3f", factor))
	}
	if opts.PitchShift != 0 {
		filters = append(filters, fmt.Sprintf("rubberband=pitch=%g", opts.PitchShift))
	}

	outPath := AlignedPath(sourcePath)
	args := []string{
		"-y",
		"-i", sourcePath,
		"-vn",
		"-ac", fmt.Sprintf("%d", a.channels),
		"-ar", fmt.Sprintf("%d", a.sampleRate),
		"-af", strings.Join(filters, ","),
		outPath,
	}

	a.logger.Debug("aligning speech clip",
		logging.String("source", sourcePath),
		logging.Float64("source_seconds", sourceSeconds),
		logging.Float64("target_seconds", targetSeconds),
		logging.Float64("speed", speed),
		logging.Int("tempo_stages", len(factors)),
	)

	if err := a.run(ctx, a.ffmpegBinary, args...); err != nil {
		_ = os.Remove(outPath)
		return "", services.Wrap(services.ErrExternalTool, "align", "atempo", sourcePath, err)
	}
	return outPath, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
