package concat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

// Concatenator joins media segments back-to-back without re-encoding.
type Concatenator struct {
	ffmpegBinary string
	logger       *slog.Logger
	run          func(ctx context.Context, name string, args ...string) error
}

// New constructs a concatenator using the given ffmpeg binary.
func New(ffmpegBinary string) *Concatenator {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Concatenator{
		ffmpegBinary: ffmpegBinary,
		logger:       logging.NewNop(),
		run:          defaultCommandRunner,
	}
}

// SetLogger updates the concatenator's logging destination.
func (c *Concatenator) SetLogger(logger *slog.Logger) {
	if c != nil {
		c.logger = logging.NewComponentLogger(logger, "concat")
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (c *Concatenator) WithCommandRunner(run func(ctx context.Context, name string, args ...string) error) {
	if c != nil && run != nil {
		c.run = run
	}
}

// Manifest renders the concat-demuxer file list for the given inputs.
// Paths are made absolute and single quotes are escaped so embedded special
// characters cannot break parsing.
func Manifest(inputs []string) (string, error) {
	var b strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", input, err)
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String(), nil
}

// Concat joins inputs in list order into outPath via stream copy. A
// single-element list is a legal degenerate case; an empty list is a
// validation error raised before any subprocess runs.
func (c *Concatenator) Concat(ctx context.Context, inputs []string, outPath string) error {
	if len(inputs) == 0 {
		return services.Wrap(services.ErrValidation, "concat", "", "no segments to concatenate", nil)
	}

	manifest, err := Manifest(inputs)
	if err != nil {
		return services.Wrap(services.ErrIO, "concat", "manifest", outPath, err)
	}

	dir := filepath.Dir(outPath)
	manifestPath := filepath.Join(dir, ".concat-"+filepath.Base(outPath)+".txt")
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "concat", "write manifest", manifestPath, err)
	}
	defer func() {
		_ = os.Remove(manifestPath)
	}()

	c.logger.Debug("concatenating segments",
		logging.Int("segment_count", len(inputs)),
		logging.String("output", outPath),
	)

	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", manifestPath, "-c", "copy", outPath}
	if err := c.run(ctx, c.ffmpegBinary, args...); err != nil {
		_ = os.Remove(outPath)
		return services.Wrap(services.ErrExternalTool, "concat", "ffmpeg", outPath, err)
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
