package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	InputPath  string
	OutputPath string
	// OutputDir receives PDFs rendered by the HTTP server.
	OutputDir string

	// Server
	ServeAddr      string
	MaxUploadBytes int64

	// LLM
	LLMBaseURL        string
	LLMModel          string
	LLMAPIKey         string
	TranscribeModel   string
	BriefSystemPrompt string

	// Extraction
	OCRLanguages []string

	// Meetings
	Meetings bool
	TeamFile string

	// Behavior
	ExtractOnly      bool
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheMaxEntries  int
	CacheClear       bool
	CacheStrictPerms bool
	Verbose          bool
}

// Defaults shared by the CLI flags and the config file overlay.
const (
	DefaultOutputPath     = "brief.pdf"
	DefaultOutputDir      = "output"
	DefaultCacheDir       = ".gobrief-cache"
	DefaultMaxUploadBytes = 10 << 20
)
