package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// that are set. Env wins over the config file; flags are applied afterwards.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.LLMBaseURL, "LLM_BASE_URL")
	override(&cfg.LLMModel, "LLM_MODEL")
	override(&cfg.LLMAPIKey, "OPENAI_API_KEY")
	override(&cfg.LLMAPIKey, "LLM_API_KEY")
	override(&cfg.TranscribeModel, "TRANSCRIBE_MODEL")
	override(&cfg.BriefSystemPrompt, "BRIEF_SYSTEM_PROMPT")
	override(&cfg.CacheDir, "CACHE_DIR")
	override(&cfg.ServeAddr, "SERVE_ADDR")
	override(&cfg.OutputDir, "OUTPUT_DIR")
	override(&cfg.TeamFile, "TEAM_FILE")

	if l := splitList(os.Getenv("OCR_LANGUAGES")); len(l) > 0 {
		cfg.OCRLanguages = l
	}
	if n, ok := envInt64("MAX_UPLOAD_BYTES"); ok {
		cfg.MaxUploadBytes = n
	}
	if n, ok := envInt64("CACHE_MAX_ENTRIES"); ok {
		cfg.CacheMaxEntries = int(n)
	}
	if d, ok := envDuration("CACHE_MAX_AGE"); ok {
		cfg.CacheMaxAge = d
	}

	setBool := func(dst *bool, envKey string) {
		if v, ok := envBool(envKey); ok {
			*dst = v
		}
	}
	setBool(&cfg.Meetings, "MEETINGS")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}

func envBool(key string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func envInt64(key string) (int64, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func envDuration(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

// splitList splits a comma- or plus-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '+' }) {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
