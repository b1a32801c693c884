package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/compose"
	"reelsmith/internal/jobs"
	"reelsmith/internal/logging"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/services/llm"
	"reelsmith/internal/storyboard"
	"reelsmith/internal/testsupport"
)

func testBoard() *storyboard.Storyboard {
	return &storyboard.Storyboard{
		Metadata: storyboard.Metadata{Title: "The Chain Rule", TotalDurationSeconds: 60},
		Scenes: []storyboard.Scene{
			{Number: 1, Name: "Intro", DurationSeconds: 25, VoiceOver: "Why nesting matters.", VisualCode: "pass"},
			{Number: 2, Name: "ChainRule", DurationSeconds: 35, VoiceOver: "Compose the derivatives.", VisualCode: "pass"},
		},
		Instructions: storyboard.RenderingInstructions{Resolution: "1920x1080", FrameRate: 30, Quality: "medium_quality"},
	}
}

type fakeGenerator struct {
	board *storyboard.Storyboard
	err   error
	got   llm.Request
}

func (f *fakeGenerator) GenerateStoryboard(ctx context.Context, req llm.Request) (*storyboard.Storyboard, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.board, nil
}

type fakeRenderer struct {
	failScene string
	rendered  []string
}

func (f *fakeRenderer) RenderScene(ctx context.Context, scene storyboard.Scene, instructions storyboard.RenderingInstructions, workDir string) (string, error) {
	if scene.Name == f.failScene {
		return "", errors.New("renderer crashed")
	}
	clip := filepath.Join(workDir, scene.ClipFileName())
	if err := os.WriteFile(clip, []byte("clip"), 0o644); err != nil {
		return "", err
	}
	f.rendered = append(f.rendered, scene.Name)
	return clip, nil
}

type fakeSynthesizer struct {
	spoken []string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	f.spoken = append(f.spoken, text)
	return os.WriteFile(outPath, []byte("wav"), 0o644)
}

type fakeComposer struct {
	got         compose.Request
	deliverable string
}

func (f *fakeComposer) Compose(ctx context.Context, req compose.Request) (string, error) {
	f.got = req
	return f.deliverable, nil
}

func newTestPipeline(t *testing.T) (*pipeline.Pipeline, *jobs.Store, *fakeGenerator, *fakeRenderer, *fakeSynthesizer, *fakeComposer) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	p, err := pipeline.New(cfg, logging.NewNop(), store)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	generator := &fakeGenerator{board: testBoard()}
	renderer := &fakeRenderer{}
	synthesizer := &fakeSynthesizer{}
	composer := &fakeComposer{deliverable: filepath.Join(cfg.Paths.OutputDir, "The_Chain_Rule.mp4")}

	p.WithGenerator(generator)
	p.WithRenderer(renderer)
	p.WithSynthesizer(synthesizer)
	p.WithComposer(composer)
	p.WithProbe(func(ctx context.Context, binary, path string) (float64, error) {
		return 5.5, nil
	})
	return p, store, generator, renderer, synthesizer, composer
}

func TestRunCompletesJob(t *testing.T) {
	p, store, generator, renderer, synthesizer, composer := newTestPipeline(t)

	job, err := p.Run(context.Background(), pipeline.Request{
		Concept:       "the chain rule",
		Format:        "short",
		AudienceLevel: "beginner",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if generator.got.Concept != "the chain rule" || generator.got.Format != "short" {
		t.Fatalf("unexpected generator request: %+v", generator.got)
	}
	if strings.Join(renderer.rendered, ",") != "Intro,ChainRule" {
		t.Fatalf("scenes must render in storyboard order, got %v", renderer.rendered)
	}
	if len(synthesizer.spoken) != 2 || synthesizer.spoken[0] != "Why nesting matters." {
		t.Fatalf("unexpected narration: %v", synthesizer.spoken)
	}

	if composer.got.Title != "The Chain Rule" {
		t.Fatalf("unexpected compose title %q", composer.got.Title)
	}
	if len(composer.got.VideoClips) != 2 || len(composer.got.AudioClips) != 2 {
		t.Fatalf("compose request must carry both tracks: %+v", composer.got)
	}
	// Alignment targets come from the probed clip durations, not the
	// storyboard estimates.
	for _, clip := range composer.got.AudioClips {
		if clip.TargetSeconds != 5.5 {
			t.Fatalf("expected probed target 5.5, got %v", clip.TargetSeconds)
		}
	}
	if composer.got.AudioClips[1].SceneName != "ChainRule" {
		t.Fatalf("audio clips must keep scene identity: %+v", composer.got.AudioClips)
	}

	stored, err := store.GetByJobID(context.Background(), job.JobID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if stored.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed job, got %s", stored.Status)
	}
	if stored.DeliverablePath != composer.deliverable {
		t.Fatalf("unexpected deliverable %q", stored.DeliverablePath)
	}
	if stored.Title != "The Chain Rule" || stored.StoryboardJSON == "" {
		t.Fatalf("expected title and storyboard recorded, got %+v", stored)
	}
}

func TestRunMarksJobFailedOnRenderError(t *testing.T) {
	p, store, _, renderer, _, _ := newTestPipeline(t)
	renderer.failScene = "ChainRule"

	job, err := p.Run(context.Background(), pipeline.Request{Concept: "x", Format: "short"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "scene 2 (ChainRule)") {
		t.Fatalf("expected offending scene in error, got %q", err.Error())
	}

	stored, getErr := store.GetByJobID(context.Background(), job.JobID)
	if getErr != nil {
		t.Fatalf("GetByJobID: %v", getErr)
	}
	if stored.Status != jobs.StatusFailed {
		t.Fatalf("expected failed job, got %s", stored.Status)
	}
	if !strings.Contains(stored.ErrorMessage, "renderer crashed") {
		t.Fatalf("expected failure reason recorded, got %q", stored.ErrorMessage)
	}
}

func TestRunMarksJobFailedOnGeneratorError(t *testing.T) {
	p, store, generator, _, _, _ := newTestPipeline(t)
	generator.err = errors.New("model unavailable")

	job, err := p.Run(context.Background(), pipeline.Request{Concept: "x", Format: "short"})
	if err == nil {
		t.Fatal("expected error")
	}
	stored, getErr := store.GetByJobID(context.Background(), job.JobID)
	if getErr != nil {
		t.Fatalf("GetByJobID: %v", getErr)
	}
	if stored.Status != jobs.StatusFailed {
		t.Fatalf("expected failed job, got %s", stored.Status)
	}
}

func TestRunRemovesWorkspace(t *testing.T) {
	p, _, _, _, _, composer := newTestPipeline(t)

	if _, err := p.Run(context.Background(), pipeline.Request{Concept: "x", Format: "short"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stagingDir := filepath.Join(filepath.Dir(filepath.Dir(composer.deliverable)), "staging")
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "job-") {
			t.Fatalf("workspace %s must be removed after the run", entry.Name())
		}
	}
}
