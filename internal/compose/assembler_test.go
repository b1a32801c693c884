package compose

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

func writeStub(t *testing.T, path string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestAssembler(t *testing.T) (*Assembler, string) {
	t.Helper()
	base := t.TempDir()
	staging := filepath.Join(base, "staging")
	output := filepath.Join(base, "output")
	for _, dir := range []string{staging, output} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	cfg := Config{
		SampleRate: 48000,
		Channels:   2,
		Bitrate:    "192k",
		OutputDir:  output,
		StagingDir: staging,
	}
	return New(cfg, nil), base
}

func TestComposeRejectsCountMismatch(t *testing.T) {
	assembler, base := newTestAssembler(t)
	invocations := 0
	assembler.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		invocations++
		return nil
	})
	assembler.WithProbe(func(ctx context.Context, binary, path string) (float64, error) {
		invocations++
		return 1, nil
	})

	req := Request{
		Title: "Mismatch",
		VideoClips: []string{
			writeStub(t, filepath.Join(base, "v1.mp4")),
			writeStub(t, filepath.Join(base, "v2.mp4")),
			writeStub(t, filepath.Join(base, "v3.mp4")),
		},
		AudioClips: []AudioClip{
			{Path: writeStub(t, filepath.Join(base, "a1.wav")), TargetSeconds: 1},
			{Path: writeStub(t, filepath.Join(base, "a2.wav")), TargetSeconds: 1},
		},
	}
	_, err := assembler.Compose(context.Background(), req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, fragment := range []string{"3", "2"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected both counts in error, got %q", err.Error())
		}
	}
	if invocations != 0 {
		t.Fatalf("expected no external invocations before validation, got %d", invocations)
	}
}

func TestComposeRejectsEmptyRequest(t *testing.T) {
	assembler, _ := newTestAssembler(t)
	_, err := assembler.Compose(context.Background(), Request{Title: "Empty"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestComposeReportsMissingInput(t *testing.T) {
	assembler, base := newTestAssembler(t)
	req := Request{
		Title:      "Missing",
		VideoClips: []string{filepath.Join(base, "absent.mp4")},
		AudioClips: []AudioClip{{Path: writeStub(t, filepath.Join(base, "a1.wav")), TargetSeconds: 1}},
	}
	_, err := assembler.Compose(context.Background(), req)
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestComposeHappyPathSequencesStages(t *testing.T) {
	assembler, base := newTestAssembler(t)
	assembler.WithProbe(func(ctx context.Context, binary, path string) (float64, error) {
		return 6.0, nil
	})

	var muxArgs []string
	var kinds []string
	assembler.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		joined := strings.Join(args, " ")
		out := args[len(args)-1]
		switch {
		case strings.Contains(joined, "-af"):
			kinds = append(kinds, "align")
		case strings.Contains(joined, "-f concat"):
			kinds = append(kinds, "concat")
		default:
			kinds = append(kinds, "mux")
			muxArgs = args
		}
		// Simulate the tool writing its output file.
		return os.WriteFile(out, []byte("media"), 0o644)
	})

	req := Request{
		Title: "Two Scene Video",
		VideoClips: []string{
			writeStub(t, filepath.Join(base, "Intro.mp4")),
			writeStub(t, filepath.Join(base, "ChainRule.mp4")),
		},
		AudioClips: []AudioClip{
			{Path: writeStub(t, filepath.Join(base, "audio_1.wav")), TargetSeconds: 5, SceneNumber: 1, SceneName: "Intro"},
			{Path: writeStub(t, filepath.Join(base, "audio_2.wav")), TargetSeconds: 7, SceneNumber: 2, SceneName: "ChainRule"},
		},
	}

	deliverable, err := assembler.Compose(context.Background(), req)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if filepath.Base(deliverable) != "Two_Scene_Video.mp4" {
		t.Fatalf("unexpected deliverable name %q", deliverable)
	}
	if _, err := os.Stat(deliverable); err != nil {
		t.Fatalf("expected deliverable to exist: %v", err)
	}

	want := []string{"align", "align", "concat", "concat", "mux"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected stage sequence %v, want %v", kinds, want)
	}

	joined := strings.Join(muxArgs, " ")
	if !strings.Contains(joined, "-c:v copy") {
		t.Fatalf("video must be stream-copied in mux, got %q", joined)
	}
	if !strings.Contains(joined, "-c:a aac") || !strings.Contains(joined, "-b:a 192k") {
		t.Fatalf("audio must be re-encoded to aac at the configured bitrate, got %q", joined)
	}

	// Intermediates are purged once the deliverable exists.
	for _, leftover := range []string{
		filepath.Join(base, "staging", "video_noaudio.mp4"),
		filepath.Join(base, "staging", "speech_merged.wav"),
		filepath.Join(base, "audio_1_aligned.wav"),
		filepath.Join(base, "audio_2_aligned.wav"),
	} {
		if _, err := os.Stat(leftover); !os.IsNotExist(err) {
			t.Fatalf("expected intermediate %s to be removed, got %v", leftover, err)
		}
	}
}

func TestComposeAlignmentFailureNamesScene(t *testing.T) {
	assembler, base := newTestAssembler(t)
	assembler.WithProbe(func(ctx context.Context, binary, path string) (float64, error) {
		return 6.0, nil
	})
	assembler.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		out := args[len(args)-1]
		if strings.HasSuffix(out, "audio_2_aligned.wav") {
			return errors.New("exit status 1")
		}
		return os.WriteFile(out, []byte("media"), 0o644)
	})

	req := Request{
		Title: "Failing",
		VideoClips: []string{
			writeStub(t, filepath.Join(base, "v1.mp4")),
			writeStub(t, filepath.Join(base, "v2.mp4")),
		},
		AudioClips: []AudioClip{
			{Path: writeStub(t, filepath.Join(base, "audio_1.wav")), TargetSeconds: 5, SceneNumber: 1, SceneName: "Intro"},
			{Path: writeStub(t, filepath.Join(base, "audio_2.wav")), TargetSeconds: 7, SceneNumber: 2, SceneName: "ChainRule"},
		},
	}

	_, err := assembler.Compose(context.Background(), req)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "scene 2 (ChainRule)") {
		t.Fatalf("expected offending scene in error, got %q", err.Error())
	}

	// No deliverable and no leaked intermediates.
	if _, statErr := os.Stat(filepath.Join(base, "output", "Failing.mp4")); !os.IsNotExist(statErr) {
		t.Fatalf("no deliverable expected after failure")
	}
	if _, statErr := os.Stat(filepath.Join(base, "audio_1_aligned.wav")); !os.IsNotExist(statErr) {
		t.Fatal("expected aligned clip from completed step to be cleaned up")
	}
}
