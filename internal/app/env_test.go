package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nBAR=\"beta\"\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	if err := LoadEnvFiles(envPath); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("FOO"); got != "alpha" {
		t.Fatalf("FOO=%q, want alpha", got)
	}
	if got := os.Getenv("BAR"); got != "beta" {
		t.Fatalf("BAR=%q, want beta", got)
	}
}

// Later files override earlier ones; missing files are skipped.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if err := LoadEnvFiles(a, filepath.Join(dir, "missing.env"), b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

func TestApplyEnvOverrides_FromEnv(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CACHE_DIR", "")
	t.Setenv("OCR_LANGUAGES", "eng+fin")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("CACHE_MAX_AGE", "36h")
	t.Setenv("MEETINGS", "yes")

	cfg := Config{CacheDir: "from-file"}
	ApplyEnvOverrides(&cfg)
	if cfg.LLMAPIKey != "sk-test" {
		t.Fatalf("LLMAPIKey=%q, want fallback from OPENAI_API_KEY", cfg.LLMAPIKey)
	}
	if cfg.CacheDir != "from-file" {
		t.Fatalf("unset env must not clear CacheDir: %q", cfg.CacheDir)
	}
	if len(cfg.OCRLanguages) != 2 || cfg.OCRLanguages[1] != "fin" {
		t.Fatalf("OCRLanguages=%v", cfg.OCRLanguages)
	}
	if cfg.MaxUploadBytes != 2048 || cfg.CacheMaxAge != 36*time.Hour || !cfg.Meetings {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
}

func TestApplyEnvOverrides_BooleansBothWays(t *testing.T) {
	t.Setenv("MEETINGS", "off")
	t.Setenv("CACHE_CLEAR", "1")
	t.Setenv("LLM_MODEL", "env-model")
	cfg := Config{Meetings: true, LLMModel: "file-model"}
	ApplyEnvOverrides(&cfg)
	if cfg.Meetings {
		t.Fatalf("MEETINGS=off should disable meetings")
	}
	if !cfg.CacheClear {
		t.Fatalf("CACHE_CLEAR=1 should enable clearing")
	}
	if cfg.LLMModel != "env-model" {
		t.Fatalf("env should override file value, got %q", cfg.LLMModel)
	}
}
