package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gobrief/internal/brief"
	"github.com/hyperifyio/gobrief/internal/cache"
	"github.com/hyperifyio/gobrief/internal/extract"
	"github.com/hyperifyio/gobrief/internal/layout"
	"github.com/hyperifyio/gobrief/internal/llm"
	"github.com/hyperifyio/gobrief/internal/meeting"
)

// Deps are the external capabilities the pipeline talks to. New builds them
// from Config; tests pass stubs to NewWithDeps.
type Deps struct {
	Oracle      llm.Oracle
	OCR         extract.OCR
	Transcriber extract.Transcriber
	// Stdout receives extract-only output. Defaults to os.Stdout.
	Stdout io.Writer
}

type App struct {
	cfg       Config
	extractor *extract.Extractor
	briefer   *brief.Generator
	scheduler *meeting.Scheduler
	engine    *layout.Engine
	team      []meeting.TeamMember
	stdout    io.Writer
}

// Outcome is the result of running one upload through extraction and brief
// generation.
type Outcome struct {
	Extraction extract.Result
	BriefText  string
	Brief      brief.Brief
}

// New wires the OpenAI-compatible client, the LLM cache and the local OCR
// engine into an App.
func New(ctx context.Context, cfg Config) (*App, error) {
	transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		transportCfg.BaseURL = cfg.LLMBaseURL
	}
	transportCfg.HTTPClient = newLLMHTTPClient()
	provider := &llm.OpenAIProvider{Inner: openai.NewClientWithConfig(transportCfg)}

	oracle := &llm.ChatOracle{Client: provider, Model: cfg.LLMModel}
	if cfg.CacheDir != "" {
		prepareCache(cfg)
		oracle.Cache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	if !cfg.ExtractOnly {
		preflight(ctx, provider)
	}
	return NewWithDeps(cfg, Deps{
		Oracle:      oracle,
		OCR:         &extract.TesseractOCR{Languages: cfg.OCRLanguages},
		Transcriber: &llm.WhisperTranscriber{Client: provider, Model: cfg.TranscribeModel},
	})
}

// NewWithDeps builds an App around the given capabilities.
func NewWithDeps(cfg Config, deps Deps) (*App, error) {
	team := meeting.DefaultRoster()
	if strings.TrimSpace(cfg.TeamFile) != "" {
		t, err := meeting.LoadRoster(cfg.TeamFile)
		if err != nil {
			return nil, err
		}
		team = t
	}
	a := &App{
		cfg:       cfg,
		extractor: extract.New(deps.OCR, deps.Transcriber),
		briefer:   &brief.Generator{Oracle: deps.Oracle, SystemPrompt: cfg.BriefSystemPrompt, Model: cfg.LLMModel},
		scheduler: meeting.NewScheduler(deps.Oracle),
		engine:    layout.New(),
		team:      team,
		stdout:    deps.Stdout,
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	return a, nil
}

// prepareCache applies cache invalidation controls. Failures only warn.
func prepareCache(cfg Config) {
	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
		}
	}
	if cfg.CacheMaxAge > 0 {
		if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
			log.Warn().Err(err).Msg("cache purge failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("purged stale cache entries")
		}
	}
	if cfg.CacheMaxEntries > 0 {
		if _, err := cache.EnforceLimits(cfg.CacheDir, cfg.CacheMaxEntries); err != nil {
			log.Warn().Err(err).Msg("cache limit enforcement failed")
		}
	}
}

// preflight lists models as a best-effort connectivity check.
func preflight(ctx context.Context, lister llm.ModelLister) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) > 0 {
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	} else {
		log.Warn().Msg("LLM returned zero models")
	}
}

// Config returns the configuration the App was built with.
func (a *App) Config() Config { return a.cfg }

// Team returns the roster used for meeting scheduling.
func (a *App) Team() []meeting.TeamMember { return a.team }

// RouteAndExtract detects the upload's format and extracts canonical text.
func (a *App) RouteAndExtract(ctx context.Context, up extract.Upload) extract.Result {
	res := a.extractor.RouteAndExtract(ctx, up)
	ev := log.Debug().Str("file", up.Filename).Str("format", res.Format.String()).Bool("success", res.Success)
	if res.Success {
		ev = ev.Int("chars", len(res.Text))
	}
	ev.Msg("extracted")
	return res
}

// Brief extracts the upload and generates a brief from it. A failed
// extraction is returned as an error wrapping its extract kind.
func (a *App) Brief(ctx context.Context, up extract.Upload) (Outcome, error) {
	out := Outcome{Extraction: a.RouteAndExtract(ctx, up)}
	if !out.Extraction.Success {
		return out, fmt.Errorf("extract %s: %w", up.Filename, out.Extraction.Err)
	}
	text, err := a.briefer.Generate(ctx, out.Extraction.Text)
	if err != nil {
		return out, err
	}
	out.BriefText = text
	out.Brief = brief.Parse(text)
	return out, nil
}

// Render lays text out and writes it as a PDF to outputPath.
func (a *App) Render(text, outputPath string) (string, error) {
	return a.engine.Render(text, outputPath)
}

// Meetings schedules follow-up meetings for a generated brief.
func (a *App) Meetings(ctx context.Context, briefText string) (meeting.Plan, error) {
	return a.scheduler.Schedule(ctx, briefText, a.team)
}

// Run executes the one-shot CLI pipeline on cfg.InputPath.
func (a *App) Run(ctx context.Context) error {
	data, err := os.ReadFile(a.cfg.InputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	up := extract.Upload{Filename: filepath.Base(a.cfg.InputPath), Data: data}

	if a.cfg.ExtractOnly {
		res := a.RouteAndExtract(ctx, up)
		if !res.Success {
			return fmt.Errorf("extract %s: %w", up.Filename, res.Err)
		}
		_, err := fmt.Fprintln(a.stdout, res.Text)
		return err
	}

	out, err := a.Brief(ctx, up)
	if err != nil {
		return err
	}
	path, err := a.Render(out.BriefText, a.cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("render brief: %w", err)
	}
	log.Info().Str("path", path).Str("title", out.Brief.Title).Int("sections", len(out.Brief.Sections)).Msg("brief written")

	if !a.cfg.Meetings {
		return nil
	}
	plan, err := a.Meetings(ctx, out.BriefText)
	if err != nil {
		return fmt.Errorf("schedule meetings: %w", err)
	}
	planPath, err := a.Render(meeting.FormatPlan(plan), meetingsPath(a.cfg.OutputPath))
	if err != nil {
		return fmt.Errorf("render meetings: %w", err)
	}
	log.Info().Str("path", planPath).Int("meetings", len(plan.Meetings)).Bool("fallback", plan.Fallback).Msg("meeting plan written")
	return nil
}

// meetingsPath derives the meeting plan file from the brief output path,
// e.g. out/brief.pdf -> out/brief-meetings.pdf.
func meetingsPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "-meetings" + lo.CoalesceOrEmpty(ext, ".pdf")
}

// UnusableInput reports whether err means the input itself could not be
// used, as opposed to a failure of the pipeline.
func UnusableInput(err error) bool {
	return errors.Is(err, extract.ErrUnsupportedFormat) ||
		errors.Is(err, extract.ErrEmptyContent) ||
		errors.Is(err, brief.ErrNoInput)
}
