package render_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stitcher/internal/render"
	"stitcher/internal/services"
)

func TestRenderWritesPDF(t *testing.T) {
	renderer := render.New()
	dir := t.TempDir()

	path, err := renderer.Render(render.Document{
		LanguageName: "English",
		LanguageCode: "en",
		Transcript:   "Original speech text.",
		Translation:  "Translated speech text.",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, dir)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if filepath.Base(path) != "transcript_en.pdf" {
		t.Fatalf("unexpected file name %q", filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat pdf: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("rendered PDF is empty")
	}
	header := make([]byte, 5)
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open pdf: %v", err)
	}
	defer file.Close()
	if _, err := file.Read(header); err != nil {
		t.Fatalf("read header: %v", err)
	}
	if string(header) != "%PDF-" {
		t.Fatalf("unexpected header %q", header)
	}
}

func TestRenderDistinctFilesPerLanguage(t *testing.T) {
	renderer := render.New()
	dir := t.TempDir()

	seen := map[string]bool{}
	for _, lang := range []struct{ name, code string }{
		{"Russian", "ru"},
		{"English", "en"},
		{"Kazakh", "kk"},
	} {
		path, err := renderer.Render(render.Document{
			LanguageName: lang.name,
			LanguageCode: lang.code,
			Transcript:   "text",
			Translation:  "text",
		}, dir)
		if err != nil {
			t.Fatalf("render %s: %v", lang.code, err)
		}
		if seen[path] {
			t.Fatalf("duplicate output path %q", path)
		}
		seen[path] = true
	}
}

func TestRenderRejectsEmptyDocument(t *testing.T) {
	renderer := render.New()
	_, err := renderer.Render(render.Document{LanguageName: "English", LanguageCode: "en"}, t.TempDir())
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestRenderSanitizesLanguageCode(t *testing.T) {
	renderer := render.New()
	path, err := renderer.Render(render.Document{
		LanguageName: "Weird",
		LanguageCode: "../EN?",
		Transcript:   "text",
	}, t.TempDir())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if filepath.Base(path) != "transcript_en.pdf" {
		t.Fatalf("unexpected sanitized name %q", filepath.Base(path))
	}
}
