package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

// Config carries synthesizer invocation settings.
type Config struct {
	Command  string
	Voice    string
	Language string
}

// Synthesizer produces narration audio through an external TTS process.
type Synthesizer struct {
	cfg    Config
	logger *slog.Logger
	run    func(ctx context.Context, name string, args ...string) error
}

// New constructs a synthesizer.
func New(cfg Config) *Synthesizer {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = "tts"
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = "en"
	}
	return &Synthesizer{
		cfg:    cfg,
		logger: logging.NewNop(),
		run:    defaultCommandRunner,
	}
}

// SetLogger updates the synthesizer's logging destination.
func (s *Synthesizer) SetLogger(logger *slog.Logger) {
	if s != nil {
		s.logger = logging.NewComponentLogger(logger, "tts")
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (s *Synthesizer) WithCommandRunner(run func(ctx context.Context, name string, args ...string) error) {
	if s != nil && run != nil {
		s.run = run
	}
}

// Synthesize speaks text into a WAV file at outPath.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrValidation, "tts", "synthesize", "empty narration text", nil)
	}

	args := []string{
		"--text", text,
		"--out", outPath,
		"--language", s.cfg.Language,
	}
	if voice := strings.TrimSpace(s.cfg.Voice); voice != "" {
		args = append(args, "--voice", voice)
	}

	s.logger.Debug("synthesizing narration",
		logging.String("output", outPath),
		logging.Int("text_length", len(text)),
	)

	if err := s.run(ctx, s.cfg.Command, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "tts", "synthesize", outPath, err)
	}
	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "tts", "synthesize",
			fmt.Sprintf("synthesizer produced no audio at %s", outPath), err)
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
