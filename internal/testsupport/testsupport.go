// Package testsupport provides helpers for building configured fixtures in
// package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"stitcher/internal/artifact"
	"stitcher/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.ArtifactDir = filepath.Join(base, "artifacts")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Transcription.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithLanguages overrides the translation fan-out on the test config.
func WithLanguages(languages ...config.Language) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Translation.Languages = languages
	}
}

// WithWorkers overrides the worker pool size on the test config.
func WithWorkers(count int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.Workers = count
	}
}

// NewArtifactStore opens an artifact store rooted in the config's directories
// and closes it when the test finishes.
func NewArtifactStore(t testing.TB, cfg *config.Config) *artifact.Store {
	t.Helper()
	store, err := artifact.Open(cfg)
	if err != nil {
		t.Fatalf("open artifact store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// WriteFile writes contents to a new file under dir and returns its path.
func WriteFile(t testing.TB, dir, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
