package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gobrief/internal/app"
	"github.com/hyperifyio/gobrief/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		if errors.Is(err, errVersion) {
			fmt.Printf("gobrief %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
			os.Exit(0)
		}
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps run errors: 2 when the input itself is unusable, 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if app.UnusableInput(err) {
		return 2
	}
	return 1
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	if strings.TrimSpace(cfg.ServeAddr) != "" {
		return server.New(a, cfg.OutputDir, cfg.MaxUploadBytes).ListenAndServe(ctx, cfg.ServeAddr)
	}
	return a.Run(ctx)
}

var errVersion = errors.New("version requested")

// parseConfig resolves configuration with precedence
// flags > env > config file > defaults.
func parseConfig(args []string) (app.Config, error) {
	fs := flag.NewFlagSet("gobrief", flag.ContinueOnError)
	var (
		fl          app.Config
		configPath  string
		envFiles    string
		ocrLangs    string
		promptFile  string
		showVersion bool
	)
	fs.StringVar(&fl.InputPath, "input", "", "Path to the document to brief")
	fs.StringVar(&fl.OutputPath, "output", app.DefaultOutputPath, "Path to write the brief PDF")
	fs.StringVar(&fl.OutputDir, "output.dir", app.DefaultOutputDir, "Directory for PDFs rendered by the HTTP server")
	fs.StringVar(&fl.ServeAddr, "serve", "", "Serve the HTTP API on this address instead of a one-shot run, e.g. :8080")
	fs.Int64Var(&fl.MaxUploadBytes, "max.upload", app.DefaultMaxUploadBytes, "Maximum upload size in bytes")
	fs.StringVar(&fl.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	fs.StringVar(&fl.LLMModel, "llm.model", "", "Model name")
	fs.StringVar(&fl.LLMAPIKey, "llm.key", "", "API key for OpenAI-compatible server")
	fs.StringVar(&fl.TranscribeModel, "transcribe.model", "", "Speech-to-text model for audio and video (default whisper-1)")
	fs.StringVar(&fl.BriefSystemPrompt, "brief.systemPrompt", "", "Override the brief system prompt (inline string)")
	fs.StringVar(&promptFile, "brief.systemPromptFile", "", "Path to file containing the brief system prompt")
	fs.StringVar(&ocrLangs, "ocr.lang", "", "Comma-separated Tesseract languages, e.g. eng,fin")
	fs.BoolVar(&fl.Meetings, "meetings", false, "Also schedule follow-up meetings and write a meeting plan PDF")
	fs.StringVar(&fl.TeamFile, "team", "", "YAML team roster for meeting scheduling")
	fs.BoolVar(&fl.ExtractOnly, "extract-only", false, "Print the extracted text and exit without calling the model")
	fs.BoolVar(&fl.Verbose, "v", false, "Verbose logging")
	fs.StringVar(&fl.CacheDir, "cache.dir", app.DefaultCacheDir, "LLM cache directory path; empty disables caching")
	fs.DurationVar(&fl.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.IntVar(&fl.CacheMaxEntries, "cache.maxEntries", 0, "Maximum cache entries kept, least recently used evicted first; 0 disables")
	fs.BoolVar(&fl.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&fl.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.StringVar(&configPath, "config", "", "YAML or JSON config file")
	fs.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load; missing files are ignored")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	if showVersion {
		return app.Config{}, errVersion
	}

	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		return app.Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := app.Config{
		OutputPath:     app.DefaultOutputPath,
		OutputDir:      app.DefaultOutputDir,
		CacheDir:       app.DefaultCacheDir,
		MaxUploadBytes: app.DefaultMaxUploadBytes,
	}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	if promptFile != "" {
		b, err := os.ReadFile(promptFile)
		if err != nil {
			return app.Config{}, fmt.Errorf("read prompt: %w", err)
		}
		fl.BriefSystemPrompt = string(b)
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if promptFile != "" {
		set["brief.systemPrompt"] = true
	}
	applyFlags(&cfg, fl, set)
	if set["ocr.lang"] {
		cfg.OCRLanguages = splitCSV(ocrLangs)
	}

	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set flag values over cfg.
func applyFlags(cfg *app.Config, fl app.Config, set map[string]bool) {
	str := map[string]struct{ dst, src *string }{
		"input":              {&cfg.InputPath, &fl.InputPath},
		"output":             {&cfg.OutputPath, &fl.OutputPath},
		"output.dir":         {&cfg.OutputDir, &fl.OutputDir},
		"serve":              {&cfg.ServeAddr, &fl.ServeAddr},
		"llm.base":           {&cfg.LLMBaseURL, &fl.LLMBaseURL},
		"llm.model":          {&cfg.LLMModel, &fl.LLMModel},
		"llm.key":            {&cfg.LLMAPIKey, &fl.LLMAPIKey},
		"transcribe.model":   {&cfg.TranscribeModel, &fl.TranscribeModel},
		"brief.systemPrompt": {&cfg.BriefSystemPrompt, &fl.BriefSystemPrompt},
		"team":               {&cfg.TeamFile, &fl.TeamFile},
		"cache.dir":          {&cfg.CacheDir, &fl.CacheDir},
	}
	for name, p := range str {
		if set[name] {
			*p.dst = *p.src
		}
	}
	boolean := map[string]struct{ dst, src *bool }{
		"meetings":          {&cfg.Meetings, &fl.Meetings},
		"extract-only":      {&cfg.ExtractOnly, &fl.ExtractOnly},
		"v":                 {&cfg.Verbose, &fl.Verbose},
		"cache.clear":       {&cfg.CacheClear, &fl.CacheClear},
		"cache.strictPerms": {&cfg.CacheStrictPerms, &fl.CacheStrictPerms},
	}
	for name, p := range boolean {
		if set[name] {
			*p.dst = *p.src
		}
	}
	if set["max.upload"] {
		cfg.MaxUploadBytes = fl.MaxUploadBytes
	}
	if set["cache.maxAge"] {
		cfg.CacheMaxAge = fl.CacheMaxAge
	}
	if set["cache.maxEntries"] {
		cfg.CacheMaxEntries = fl.CacheMaxEntries
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
