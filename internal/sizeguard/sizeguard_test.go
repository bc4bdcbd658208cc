package sizeguard_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stitcher/internal/media"
	"stitcher/internal/services"
	"stitcher/internal/sizeguard"
)

type fakeTranscoder struct {
	media.Transcoder
	compressCalls int
	outputBytes   int
	compressErr   error
}

func (f *fakeTranscoder) Compress(_ context.Context, _, dst string) error {
	f.compressCalls++
	if f.compressErr != nil {
		return f.compressErr
	}
	return os.WriteFile(dst, make([]byte, f.outputBytes), 0o644)
}

func writeAudio(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestNeedsCompression(t *testing.T) {
	if sizeguard.NeedsCompression(100, 100) {
		t.Fatal("size equal to ceiling should not need compression")
	}
	if !sizeguard.NeedsCompression(101, 100) {
		t.Fatal("size above ceiling should need compression")
	}
}

func TestFitPassesThroughSmallFiles(t *testing.T) {
	src := writeAudio(t, 500)
	fake := &fakeTranscoder{}
	guard := sizeguard.New(fake, 1000)

	path, size, err := guard.Fit(context.Background(), src, t.TempDir())
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if path != src || size != 500 {
		t.Fatalf("expected untouched source, got %q (%d bytes)", path, size)
	}
	if fake.compressCalls != 0 {
		t.Fatalf("expected no compression, got %d calls", fake.compressCalls)
	}
}

func TestFitCompressesOversizedOnce(t *testing.T) {
	src := writeAudio(t, 2000)
	fake := &fakeTranscoder{outputBytes: 800}
	guard := sizeguard.New(fake, 1000)

	workDir := t.TempDir()
	path, size, err := guard.Fit(context.Background(), src, workDir)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if fake.compressCalls != 1 {
		t.Fatalf("expected one compression pass, got %d", fake.compressCalls)
	}
	if size != 800 {
		t.Fatalf("expected compressed size 800, got %d", size)
	}
	if filepath.Dir(path) != workDir {
		t.Fatalf("compressed file should live in work dir, got %q", path)
	}
	if filepath.Base(path) != "audio_compressed.mp3" {
		t.Fatalf("unexpected compressed name %q", filepath.Base(path))
	}
}

func TestFitStillOversizedReportsSizeLimit(t *testing.T) {
	src := writeAudio(t, 2000)
	fake := &fakeTranscoder{outputBytes: 1500}
	guard := sizeguard.New(fake, 1000)

	_, _, err := guard.Fit(context.Background(), src, t.TempDir())
	if !errors.Is(err, services.ErrSizeLimit) {
		t.Fatalf("expected ErrSizeLimit, got %v", err)
	}
	if fake.compressCalls != 1 {
		t.Fatalf("expected exactly one compression attempt, got %d", fake.compressCalls)
	}
}

func TestFitCompressFailureIsTranscriptionError(t *testing.T) {
	src := writeAudio(t, 2000)
	fake := &fakeTranscoder{compressErr: errors.New("encoder exploded")}
	guard := sizeguard.New(fake, 1000)

	_, _, err := guard.Fit(context.Background(), src, t.TempDir())
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
}
