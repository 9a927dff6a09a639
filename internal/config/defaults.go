package config

const (
	defaultDataDir               = "~/.local/share/capgenius"
	defaultLogDir                = "~/.local/share/capgenius/logs"
	defaultAPIBind               = "127.0.0.1:7510"
	defaultGeminiBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel           = "gemini-3-flash-preview"
	defaultGeminiTTSModel        = "gemini-2.5-flash-preview-tts"
	defaultGeminiTimeoutSeconds  = 300
	defaultWhisperModel          = "whisper-1"
	defaultTranscriptionProvider = "gemini"
	defaultTranscriptionTimeout  = 300
	defaultMaxVideoMB            = 200
	defaultTranscriptionLanguage = "en"
	defaultPixelsPerSecond       = 60
	defaultMinCaptionDuration    = 0.1
	defaultTimelineCommitMode    = "live"
	defaultExportFilename        = "Premiere_Captions.srt"
	defaultNtfyTimeoutSeconds    = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TTSModel:       defaultGeminiTTSModel,
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
		},
		Whisper: Whisper{
			Model: defaultWhisperModel,
		},
		Transcription: Transcription{
			Provider:        defaultTranscriptionProvider,
			TimeoutSeconds:  defaultTranscriptionTimeout,
			MaxVideoMB:      defaultMaxVideoMB,
			DefaultLanguage: defaultTranscriptionLanguage,
		},
		Timeline: Timeline{
			PixelsPerSecond:  defaultPixelsPerSecond,
			MinDuration:      defaultMinCaptionDuration,
			CommitMode:       defaultTimelineCommitMode,
			RollbackOnCancel: true,
		},
		Export: Export{
			Filename: defaultExportFilename,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
