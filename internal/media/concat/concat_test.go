package concat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

func TestManifestEscapesQuotes(t *testing.T) {
	manifest, err := Manifest([]string{"/clips/it's a scene.mp4"})
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	if !strings.Contains(manifest, `file '/clips/it'\''s a scene.mp4'`) {
		t.Fatalf("expected escaped quote in manifest, got %q", manifest)
	}
}

func TestManifestMakesPathsAbsolute(t *testing.T) {
	manifest, err := Manifest([]string{"relative.mp4"})
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	line := strings.TrimSpace(manifest)
	path := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
	if !filepath.IsAbs(path) {
		t.Fatalf("expected absolute path in manifest, got %q", path)
	}
}

func TestConcatRejectsEmptyList(t *testing.T) {
	c := New("ffmpeg")
	invoked := false
	c.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		invoked = true
		return nil
	})
	err := c.Concat(context.Background(), nil, "/tmp/out.mp4")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if invoked {
		t.Fatal("no subprocess should run for an empty list")
	}
}

func TestConcatWritesAndRemovesManifest(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "joined.mp4")
	manifestPath := filepath.Join(dir, ".concat-joined.mp4.txt")

	c := New("ffmpeg")
	var sawManifest string
	c.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			t.Fatalf("manifest missing during run: %v", err)
		}
		sawManifest = string(data)
		return nil
	})

	inputs := []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "b.mp4")}
	if err := c.Concat(context.Background(), inputs, out); err != nil {
		t.Fatalf("Concat: %v", err)
	}

	if strings.Count(sawManifest, "file '") != 2 {
		t.Fatalf("expected two manifest entries, got %q", sawManifest)
	}
	if _, err := os.Stat(manifestPath); !os.IsNotExist(err) {
		t.Fatalf("expected manifest to be removed after run, got %v", err)
	}
}

func TestConcatSingleSegmentIsLegal(t *testing.T) {
	dir := t.TempDir()
	c := New("ffmpeg")
	var gotArgs []string
	c.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return nil
	})
	if err := c.Concat(context.Background(), []string{filepath.Join(dir, "only.wav")}, filepath.Join(dir, "out.wav")); err != nil {
		t.Fatalf("Concat: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "-f concat") || !strings.Contains(joined, "-c copy") {
		t.Fatalf("expected stream-copy concat invocation, got %q", joined)
	}
}

func TestConcatWrapsToolFailure(t *testing.T) {
	dir := t.TempDir()
	c := New("ffmpeg")
	c.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 1")
	})
	err := c.Concat(context.Background(), []string{filepath.Join(dir, "a.mp4")}, filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
