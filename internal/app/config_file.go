package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Input     string `yaml:"input" json:"input"`
	Output    string `yaml:"output" json:"output"`
	OutputDir string `yaml:"outputDir" json:"outputDir"`

	Serve struct {
		Addr           string `yaml:"addr" json:"addr"`
		MaxUploadBytes int64  `yaml:"maxUploadBytes" json:"maxUploadBytes"`
	} `yaml:"serve" json:"serve"`

	LLM struct {
		BaseURL         string `yaml:"base" json:"base"`
		Model           string `yaml:"model" json:"model"`
		APIKey          string `yaml:"key" json:"key"`
		TranscribeModel string `yaml:"transcribeModel" json:"transcribeModel"`
	} `yaml:"llm" json:"llm"`

	OCR struct {
		Languages []string `yaml:"languages" json:"languages"`
	} `yaml:"ocr" json:"ocr"`

	Meetings struct {
		Enable   bool   `yaml:"enable" json:"enable"`
		TeamFile string `yaml:"teamFile" json:"teamFile"`
	} `yaml:"meetings" json:"meetings"`

	Verbose bool `yaml:"verbose" json:"verbose"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		MaxEntries  int           `yaml:"maxEntries" json:"maxEntries"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Prompts struct {
		BriefSystemPrompt     string `yaml:"briefSystemPrompt" json:"briefSystemPrompt"`
		BriefSystemPromptFile string `yaml:"briefSystemPromptFile" json:"briefSystemPromptFile"`
	} `yaml:"prompts" json:"prompts"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	if p := strings.TrimSpace(fc.Prompts.BriefSystemPromptFile); p != "" {
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		pb, err := os.ReadFile(p)
		if err != nil {
			return fc, fmt.Errorf("read brief prompt: %w", err)
		}
		fc.Prompts.BriefSystemPrompt = string(pb)
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are still unset or at their flag default.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	str := func(dst *string, def, v string) {
		if (*dst == "" || *dst == def) && v != "" {
			*dst = v
		}
	}
	str(&cfg.InputPath, "", fc.Input)
	str(&cfg.OutputPath, DefaultOutputPath, fc.Output)
	str(&cfg.OutputDir, DefaultOutputDir, fc.OutputDir)
	str(&cfg.ServeAddr, "", fc.Serve.Addr)
	str(&cfg.LLMBaseURL, "", fc.LLM.BaseURL)
	str(&cfg.LLMModel, "", fc.LLM.Model)
	str(&cfg.LLMAPIKey, "", fc.LLM.APIKey)
	str(&cfg.TranscribeModel, "", fc.LLM.TranscribeModel)
	str(&cfg.TeamFile, "", fc.Meetings.TeamFile)
	str(&cfg.CacheDir, DefaultCacheDir, fc.Cache.Dir)
	str(&cfg.BriefSystemPrompt, "", fc.Prompts.BriefSystemPrompt)

	if (cfg.MaxUploadBytes == 0 || cfg.MaxUploadBytes == DefaultMaxUploadBytes) && fc.Serve.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = fc.Serve.MaxUploadBytes
	}
	if len(cfg.OCRLanguages) == 0 && len(fc.OCR.Languages) > 0 {
		cfg.OCRLanguages = append([]string{}, fc.OCR.Languages...)
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if cfg.CacheMaxEntries == 0 && fc.Cache.MaxEntries > 0 {
		cfg.CacheMaxEntries = fc.Cache.MaxEntries
	}
	if !cfg.Meetings && fc.Meetings.Enable {
		cfg.Meetings = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
}

// ValidateConfig performs minimal validation of required settings. The CLI
// needs an input unless it serves; only extract-only runs may omit the model.
func ValidateConfig(cfg Config) error {
	serving := strings.TrimSpace(cfg.ServeAddr) != ""
	if !serving && strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: input path is required (or set -serve)")
	}
	if !serving && !cfg.ExtractOnly && strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	if !cfg.ExtractOnly && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if cfg.MaxUploadBytes < 0 || cfg.CacheMaxEntries < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
