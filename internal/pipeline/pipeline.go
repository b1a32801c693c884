package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"reelsmith/internal/compose"
	"reelsmith/internal/config"
	"reelsmith/internal/jobs"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/render"
	"reelsmith/internal/services"
	"reelsmith/internal/services/llm"
	"reelsmith/internal/staging"
	"reelsmith/internal/storyboard"
	"reelsmith/internal/tts"
)

// StoryboardGenerator produces a storyboard for a concept.
type StoryboardGenerator interface {
	GenerateStoryboard(ctx context.Context, req llm.Request) (*storyboard.Storyboard, error)
}

// SceneRenderer turns one scene into a video clip.
type SceneRenderer interface {
	RenderScene(ctx context.Context, scene storyboard.Scene, instructions storyboard.RenderingInstructions, workDir string) (string, error)
}

// SpeechSynthesizer turns narration text into a WAV file.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Composer assembles aligned clips into the deliverable.
type Composer interface {
	Compose(ctx context.Context, req compose.Request) (string, error)
}

// Request describes one generation run.
type Request struct {
	Concept       string
	Format        string
	AudienceLevel string
	ShowProgress  bool
}

// Pipeline runs generation jobs end to end.
type Pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *jobs.Store
	manager *staging.Manager

	generator   StoryboardGenerator
	renderer    SceneRenderer
	synthesizer SpeechSynthesizer
	composer    Composer
	probe       func(ctx context.Context, binary, path string) (float64, error)
}

// New wires a pipeline from the configuration.
func New(cfg *config.Config, logger *slog.Logger, store *jobs.Store) (*Pipeline, error) {
	manager, err := staging.NewManager(cfg.Paths.StagingDir)
	if err != nil {
		return nil, err
	}

	renderer := render.New(render.Config{
		Command:   cfg.Render.Command,
		Quality:   cfg.Render.Quality,
		FrameRate: cfg.Render.FrameRate,
		OutputDir: cfg.Paths.RenderDir,
	})
	renderer.SetLogger(logger)

	synthesizer := tts.New(tts.Config{
		Command:  cfg.TTS.Command,
		Voice:    cfg.TTS.Voice,
		Language: cfg.TTS.Language,
	})
	synthesizer.SetLogger(logger)

	composer := compose.New(compose.Config{
		SampleRate:    cfg.Audio.SampleRate,
		Channels:      cfg.Audio.Channels,
		Bitrate:       cfg.Video.Bitrate,
		OutputDir:     cfg.Paths.OutputDir,
		StagingDir:    cfg.Paths.StagingDir,
		FFmpegBinary:  cfg.FFmpegBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
	}, logger)

	return &Pipeline{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		store:   store,
		manager: manager,
		generator: llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}),
		renderer:    renderer,
		synthesizer: synthesizer,
		composer:    composer,
		probe:       ffprobe.Duration,
	}, nil
}

// WithGenerator overrides the storyboard generator (used in tests).
func (p *Pipeline) WithGenerator(g StoryboardGenerator) {
	if p != nil && g != nil {
		p.generator = g
	}
}

// WithRenderer overrides the scene renderer (used in tests).
func (p *Pipeline) WithRenderer(r SceneRenderer) {
	if p != nil && r != nil {
		p.renderer = r
	}
}

// WithSynthesizer overrides the speech synthesizer (used in tests).
func (p *Pipeline) WithSynthesizer(s SpeechSynthesizer) {
	if p != nil && s != nil {
		p.synthesizer = s
	}
}

// WithComposer overrides the composer (used in tests).
func (p *Pipeline) WithComposer(c Composer) {
	if p != nil && c != nil {
		p.composer = c
	}
}

// WithProbe overrides the clip duration probe (used in tests).
func (p *Pipeline) WithProbe(probe func(ctx context.Context, binary, path string) (float64, error)) {
	if p != nil && probe != nil {
		p.probe = probe
	}
}

// Run executes a full generation and returns the finished job. On failure
// the job is marked failed with the error message and the error returned.
func (p *Pipeline) Run(ctx context.Context, req Request) (*jobs.Job, error) {
	job, err := p.store.NewJob(ctx, req.Concept, req.Format, req.AudienceLevel)
	if err != nil {
		return nil, err
	}
	ctx = services.WithRequestID(services.WithJobID(ctx, job.ID), job.JobID)
	logger := logging.WithContext(ctx, p.logger)

	release, err := p.manager.Acquire(ctx)
	if err != nil {
		return job, p.fail(ctx, job, err)
	}
	defer release()

	maxAge := time.Duration(p.cfg.Workflow.StagingMaxAgeHours) * time.Hour
	if maxAge > 0 {
		staging.CleanStale(p.manager.Root(), maxAge, logger)
	}

	ws, err := p.manager.Create(job.JobID)
	if err != nil {
		return job, p.fail(ctx, job, err)
	}
	defer func() {
		_ = ws.Remove()
	}()

	board, err := p.runScripting(ctx, job, req)
	if err != nil {
		return job, p.fail(ctx, job, err)
	}

	clips, targets, err := p.runRendering(ctx, job, board, ws, req.ShowProgress)
	if err != nil {
		return job, p.fail(ctx, job, err)
	}

	speech, err := p.runSynthesis(ctx, job, board, ws, req.ShowProgress)
	if err != nil {
		return job, p.fail(ctx, job, err)
	}

	deliverable, err := p.runComposition(ctx, job, board, clips, targets, speech)
	if err != nil {
		return job, p.fail(ctx, job, err)
	}

	if err := p.store.MarkCompleted(ctx, job, deliverable); err != nil {
		return job, err
	}
	logger.Info("job complete",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("deliverable", deliverable),
	)
	return job, nil
}

func (p *Pipeline) fail(ctx context.Context, job *jobs.Job, cause error) error {
	if markErr := p.store.MarkFailed(ctx, job, cause.Error()); markErr != nil {
		p.logger.Error("record job failure",
			logging.Error(markErr),
			logging.String(logging.FieldEventType, "job_fail_record_error"),
		)
	}
	return cause
}

func (p *Pipeline) transition(ctx context.Context, job *jobs.Job, status jobs.Status, stage, message string) error {
	job.Status = status
	job.SetProgress(stage, message, 0)
	return p.store.Update(ctx, job)
}

// stageContext annotates ctx with the stage name and applies the configured
// stage timeout.
func (p *Pipeline) stageContext(ctx context.Context, stage string) (context.Context, context.CancelFunc) {
	ctx = services.WithStage(ctx, stage)
	timeout := time.Duration(p.cfg.Workflow.StageTimeoutSeconds) * time.Second
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (p *Pipeline) runScripting(ctx context.Context, job *jobs.Job, req Request) (*storyboard.Storyboard, error) {
	if err := p.transition(ctx, job, jobs.StatusScripting, "scripting", "generating storyboard"); err != nil {
		return nil, err
	}
	stageCtx, cancel := p.stageContext(ctx, "scripting")
	defer cancel()

	board, err := p.generator.GenerateStoryboard(stageCtx, llm.Request{
		Concept:       req.Concept,
		Format:        req.Format,
		AudienceLevel: req.AudienceLevel,
	})
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(board)
	if err != nil {
		return nil, fmt.Errorf("encode storyboard: %w", err)
	}
	job.Title = board.Metadata.Title
	job.StoryboardJSON = string(encoded)
	if err := p.store.Update(ctx, job); err != nil {
		return nil, err
	}

	logging.WithContext(ctx, p.logger).Info("storyboard ready",
		logging.String(logging.FieldEventType, "storyboard_ready"),
		logging.String("title", board.Metadata.Title),
		logging.Int("scene_count", len(board.Scenes)),
	)
	return board, nil
}

// runRendering renders every scene and probes each clip's real duration,
// which later becomes the alignment target for that scene's narration.
func (p *Pipeline) runRendering(ctx context.Context, job *jobs.Job, board *storyboard.Storyboard, ws staging.Workspace, showProgress bool) ([]string, []float64, error) {
	if err := p.transition(ctx, job, jobs.StatusRendering, "rendering", "rendering scenes"); err != nil {
		return nil, nil, err
	}
	stageCtx, cancel := p.stageContext(ctx, "rendering")
	defer cancel()

	bar := newStageBar(showProgress, "rendering scenes", len(board.Scenes))
	defer finishBar(bar)

	clips := make([]string, 0, len(board.Scenes))
	targets := make([]float64, 0, len(board.Scenes))
	for i, scene := range board.Scenes {
		clip, err := p.renderer.RenderScene(stageCtx, scene, board.Instructions, ws.Work)
		if err != nil {
			return nil, nil, fmt.Errorf("scene %d (%s): %w", scene.Number, scene.Name, err)
		}
		duration, err := p.probe(stageCtx, p.cfg.FFprobeBinary(), clip)
		if err != nil {
			return nil, nil, fmt.Errorf("scene %d (%s): %w", scene.Number, scene.Name, err)
		}
		clips = append(clips, clip)
		targets = append(targets, duration)

		job.SetProgress("rendering", fmt.Sprintf("rendered %s", scene.Name),
			float64(i+1)/float64(len(board.Scenes))*100)
		if err := p.store.Update(ctx, job); err != nil {
			return nil, nil, err
		}
		bumpBar(bar)
	}
	return clips, targets, nil
}

func (p *Pipeline) runSynthesis(ctx context.Context, job *jobs.Job, board *storyboard.Storyboard, ws staging.Workspace, showProgress bool) ([]string, error) {
	if err := p.transition(ctx, job, jobs.StatusSynthesizing, "synthesizing", "synthesizing narration"); err != nil {
		return nil, err
	}
	stageCtx, cancel := p.stageContext(ctx, "synthesizing")
	defer cancel()

	bar := newStageBar(showProgress, "synthesizing narration", len(board.Scenes))
	defer finishBar(bar)

	speech := make([]string, 0, len(board.Scenes))
	for i, scene := range board.Scenes {
		out := filepath.Join(ws.Speech, scene.SpeechFileName())
		if err := p.synthesizer.Synthesize(stageCtx, scene.VoiceOver, out); err != nil {
			return nil, fmt.Errorf("scene %d (%s): %w", scene.Number, scene.Name, err)
		}
		speech = append(speech, out)

		job.SetProgress("synthesizing", fmt.Sprintf("narrated %s", scene.Name),
			float64(i+1)/float64(len(board.Scenes))*100)
		if err := p.store.Update(ctx, job); err != nil {
			return nil, err
		}
		bumpBar(bar)
	}
	return speech, nil
}

func (p *Pipeline) runComposition(ctx context.Context, job *jobs.Job, board *storyboard.Storyboard, clips []string, targets []float64, speech []string) (string, error) {
	if err := p.transition(ctx, job, jobs.StatusComposing, "composing", "assembling deliverable"); err != nil {
		return "", err
	}
	stageCtx, cancel := p.stageContext(ctx, "composing")
	defer cancel()

	audioClips := make([]compose.AudioClip, 0, len(board.Scenes))
	for i, scene := range board.Scenes {
		audioClips = append(audioClips, compose.AudioClip{
			Path:          speech[i],
			TargetSeconds: targets[i],
			SceneNumber:   scene.Number,
			SceneName:     scene.Name,
		})
	}
	return p.composer.Compose(stageCtx, compose.Request{
		Title:      board.Metadata.Title,
		VideoClips: clips,
		AudioClips: audioClips,
	})
}
