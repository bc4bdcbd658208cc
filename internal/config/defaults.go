package config

const (
	defaultWorkDir              = "~/.local/share/stitcher/work"
	defaultArtifactDir          = "~/.local/share/stitcher/artifacts"
	defaultLogDir               = "~/.local/share/stitcher/logs"
	defaultAPIBind              = "127.0.0.1:7512"
	defaultTranscriptionBaseURL = "https://api.openai.com/v1"
	defaultTranscriptionModel   = "whisper-1"
	defaultTranscriptionTimeout = 300
	defaultSizeCeilingMiB       = 22
	defaultTranslationBaseURL   = "https://translate.googleapis.com"
	defaultTranslationTimeout   = 60
	defaultNotifyTimeout        = 30
	defaultWorkers              = 4
	defaultDownloadTimeout      = 600
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:     defaultWorkDir,
			ArtifactDir: defaultArtifactDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		Transcription: Transcription{
			BaseURL:        defaultTranscriptionBaseURL,
			Model:          defaultTranscriptionModel,
			RequestTimeout: defaultTranscriptionTimeout,
			SizeCeilingMiB: defaultSizeCeilingMiB,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			RequestTimeout: defaultTranslationTimeout,
			Languages: []Language{
				{Name: "Russian", Code: "ru"},
				{Name: "English", Code: "en"},
				{Name: "Kazakh", Code: "kk"},
			},
		},
		Notify: Notify{
			RequestTimeout: defaultNotifyTimeout,
		},
		Workflow: Workflow{
			Workers:         defaultWorkers,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
