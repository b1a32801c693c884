package config

const (
	defaultStagingDir          = "~/.local/share/reelsmith/staging"
	defaultRenderDir           = "~/.local/share/reelsmith/renders"
	defaultOutputDir           = "~/reelsmith/videos"
	defaultLogDir              = "~/.local/share/reelsmith/logs"
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "google/gemini-3-flash-preview"
	defaultLLMReferer          = "https://github.com/reelsmith/reelsmith"
	defaultLLMTitle            = "Reelsmith Storyboard"
	defaultLLMTimeoutSeconds   = 120
	defaultTTSCommand          = "tts"
	defaultTTSLanguage         = "en"
	defaultRenderCommand       = "manim"
	defaultRenderQuality       = "medium_quality"
	defaultRenderFrameRate     = 30
	defaultAudioSampleRate     = 48000
	defaultAudioChannels       = 2
	defaultVideoBitrate        = "192k"
	defaultStageTimeoutSeconds = 900
	defaultStagingMaxAgeHours  = 48
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			RenderDir:  defaultRenderDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		TTS: TTS{
			Command:  defaultTTSCommand,
			Language: defaultTTSLanguage,
		},
		Render: Render{
			Command:   defaultRenderCommand,
			Quality:   defaultRenderQuality,
			FrameRate: defaultRenderFrameRate,
		},
		Audio: Audio{
			SampleRate: defaultAudioSampleRate,
			Channels:   defaultAudioChannels,
		},
		Video: Video{
			Bitrate: defaultVideoBitrate,
		},
		Workflow: Workflow{
			StageTimeoutSeconds: defaultStageTimeoutSeconds,
			StagingMaxAgeHours:  defaultStagingMaxAgeHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
