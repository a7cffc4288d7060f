package config

const (
	defaultDataDir                   = "~/.local/share/recall"
	defaultUploadDir                 = "~/.local/share/recall/uploads"
	defaultFramesDir                 = "~/.local/share/recall/frames"
	defaultLogDir                    = "~/.local/share/recall/logs"
	defaultAPIBind                   = "127.0.0.1:7490"
	defaultOwnerHeader               = "X-Owner-ID"
	defaultMaxUploadMB               = 512
	defaultOpenAIBaseURL             = "https://api.openai.com/v1"
	defaultTranscriptionModel        = "whisper-1"
	defaultTargetLanguage            = "en"
	defaultSilenceThresholdDB        = -40.0
	defaultTranscriptionTimeout      = 300
	defaultSummaryProvider           = "openai"
	defaultSummaryModel              = "gpt-4o-mini"
	defaultSummaryMaxWords           = 150
	defaultSummaryFallbackSentences  = 3
	defaultSummaryTimeout            = 60
	defaultKeyframeInterval          = 30
	defaultKeyframeTimeout           = 600
	defaultWorkflowWorkers           = 2
	defaultWorkflowQueueSize         = 32
	defaultWorkflowJobTimeoutSeconds = 3600
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			UploadDir: defaultUploadDir,
			FramesDir: defaultFramesDir,
			LogDir:    defaultLogDir,
		},
		API: API{
			Bind:        defaultAPIBind,
			OwnerHeader: defaultOwnerHeader,
			MaxUploadMB: defaultMaxUploadMB,
		},
		OpenAI: OpenAI{
			BaseURL: defaultOpenAIBaseURL,
		},
		Transcription: Transcription{
			Model:              defaultTranscriptionModel,
			TargetLanguage:     defaultTargetLanguage,
			SilenceThresholdDB: defaultSilenceThresholdDB,
			TimeoutSeconds:     defaultTranscriptionTimeout,
		},
		Summarization: Summarization{
			Provider:          defaultSummaryProvider,
			Model:             defaultSummaryModel,
			MaxWords:          defaultSummaryMaxWords,
			FallbackSentences: defaultSummaryFallbackSentences,
			TimeoutSeconds:    defaultSummaryTimeout,
		},
		Keyframes: Keyframes{
			Interval:       defaultKeyframeInterval,
			TimeoutSeconds: defaultKeyframeTimeout,
		},
		Workflow: Workflow{
			Workers:           defaultWorkflowWorkers,
			QueueSize:         defaultWorkflowQueueSize,
			JobTimeoutSeconds: defaultWorkflowJobTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
