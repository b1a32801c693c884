package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

func TestSynthesizePassesConfiguredFlags(t *testing.T) {
	out := filepath.Join(t.TempDir(), "audio_1.wav")
	s := New(Config{Command: "tts", Voice: "en_speaker_3", Language: "en"})
	var gotName string
	var gotArgs []string
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(out, []byte("wav"), 0o644)
	})

	if err := s.Synthesize(context.Background(), "The chain rule composes derivatives.", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotName != "tts" {
		t.Fatalf("unexpected command %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{"--text", "--out " + out, "--language en", "--voice en_speaker_3"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in args %q", fragment, joined)
		}
	}
}

func TestSynthesizeOmitsVoiceWhenUnset(t *testing.T) {
	out := filepath.Join(t.TempDir(), "audio_1.wav")
	s := New(Config{})
	var gotArgs []string
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return os.WriteFile(out, []byte("wav"), 0o644)
	})
	if err := s.Synthesize(context.Background(), "hello", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if strings.Contains(strings.Join(gotArgs, " "), "--voice") {
		t.Fatalf("voice flag must be omitted when unset, got %v", gotArgs)
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	s := New(Config{})
	invoked := false
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		invoked = true
		return nil
	})
	err := s.Synthesize(context.Background(), "   ", "out.wav")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if invoked {
		t.Fatal("synthesizer must not be invoked for empty text")
	}
}

func TestSynthesizeErrorsWhenNoAudioProduced(t *testing.T) {
	out := filepath.Join(t.TempDir(), "audio_1.wav")
	s := New(Config{})
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})
	err := s.Synthesize(context.Background(), "hello", out)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error when output missing, got %v", err)
	}
}

func TestSynthesizeWrapsToolFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "audio_1.wav")
	s := New(Config{})
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 2")
	})
	err := s.Synthesize(context.Background(), "hello", out)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
