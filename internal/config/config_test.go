package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stitcher/internal/config"
)

func TestDefaultValidatesOnceKeyIsSet(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.APIKey = "test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	if !strings.Contains(err.Error(), "transcription.api_key") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidateRejectsBadLanguageCode(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.APIKey = "test"
	cfg.Translation.Languages = []config.Language{{Name: "Bogus", Code: "not a tag"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid language code")
	}
}

func TestValidateRejectsDuplicateLanguageCode(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.APIKey = "test"
	cfg.Translation.Languages = []config.Language{
		{Name: "English", Code: "en"},
		{Name: "English again", Code: "en"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate language code")
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
work_dir = "` + filepath.Join(dir, "work") + `"
artifact_dir = "` + filepath.Join(dir, "artifacts") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[transcription]
api_key = "secret"
base_url = "https://api.example.test/v1/"
size_ceiling_mib = 10
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if !exists {
		t.Fatalf("expected config at %s to be found", resolved)
	}
	if cfg.Transcription.BaseURL != "https://api.example.test/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Transcription.BaseURL)
	}
	if cfg.SizeCeilingBytes() != 10*1024*1024 {
		t.Fatalf("unexpected ceiling %d", cfg.SizeCeilingBytes())
	}
	// Unset sections keep defaults.
	if len(cfg.Translation.Languages) != 3 {
		t.Fatalf("expected default language set, got %d entries", len(cfg.Translation.Languages))
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("expected absolute work dir, got %q", cfg.Paths.WorkDir)
	}
}

func TestLoadNormalizesLanguageEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
work_dir = "` + filepath.Join(dir, "work") + `"
artifact_dir = "` + filepath.Join(dir, "artifacts") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[transcription]
api_key = "secret"

[[translation.languages]]
code = "EN"

[[translation.languages]]
name = "Qazaqsha"
code = "kk"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	first := cfg.Translation.Languages[0]
	if first.Code != "en" || first.Name != "English" {
		t.Fatalf("expected normalized en/English, got %+v", first)
	}
	second := cfg.Translation.Languages[1]
	if second.Code != "kk" || second.Name != "Qazaqsha" {
		t.Fatalf("explicit name must be preserved, got %+v", second)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	_, resolved, exists, err := config.Load(path)
	if exists {
		t.Fatalf("did not expect a config at %s", resolved)
	}
	// Defaults alone fail validation because the API key is required.
	if err == nil {
		t.Fatal("expected validation error without api key")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("config.CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[transcription]") {
		t.Fatalf("sample config missing transcription section")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(dir, "work")
	cfg.Paths.ArtifactDir = filepath.Join(dir, "artifacts")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, sub := range []string{"work", "artifacts", "logs"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s to exist", sub)
		}
	}
}
