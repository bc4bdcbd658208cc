package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"stitcher/internal/config"
	"stitcher/internal/transport"
)

func TestNewMessengerReturnsNoopWhenWebhookMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notify.WebhookURL = ""
	messenger := transport.NewMessenger(&cfg)
	if err := messenger.SendText(context.Background(), "alice", "hello"); err != nil {
		t.Fatalf("expected noop messenger to return nil, got %v", err)
	}
	if err := messenger.SendFile(context.Background(), "alice", "/nonexistent", ""); err != nil {
		t.Fatalf("expected noop messenger to ignore files, got %v", err)
	}
}

func TestSendTextPostsMultipartFields(t *testing.T) {
	var gotUser, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotUser = r.FormValue("user")
		gotText = r.FormValue("text")
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notify.WebhookURL = server.URL
	messenger := transport.NewMessenger(&cfg)

	if err := messenger.SendText(context.Background(), "alice", "merge finished"); err != nil {
		t.Fatalf("send text: %v", err)
	}
	if gotUser != "alice" || gotText != "merge finished" {
		t.Fatalf("unexpected fields user=%q text=%q", gotUser, gotText)
	}
}

func TestSendFileUploadsContentAndCaption(t *testing.T) {
	var gotCaption, gotName, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotCaption = r.FormValue("caption")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		gotName = header.Filename
		data, _ := io.ReadAll(file)
		gotBody = string(data)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "combined.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg := config.Default()
	cfg.Notify.WebhookURL = server.URL
	messenger := transport.NewMessenger(&cfg)

	if err := messenger.SendFile(context.Background(), "alice", path, "your merged audio"); err != nil {
		t.Fatalf("send file: %v", err)
	}
	if gotCaption != "your merged audio" || gotName != "combined.mp3" || gotBody != "audio" {
		t.Fatalf("unexpected upload caption=%q name=%q body=%q", gotCaption, gotName, gotBody)
	}
}

func TestSendTextReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notify.WebhookURL = server.URL
	messenger := transport.NewMessenger(&cfg)
	if err := messenger.SendText(context.Background(), "alice", "hello"); err == nil {
		t.Fatal("expected delivery error for 502")
	}
}

func TestFetchDownloadsToDest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "video bytes")
	}))
	defer server.Close()

	cfg := config.Default()
	fetcher := transport.NewFetcher(&cfg)
	dest := filepath.Join(t.TempDir(), "clip.mp4")

	if err := fetcher.Fetch(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if string(data) != "video bytes" {
		t.Fatalf("unexpected download contents %q", data)
	}
}

func TestFetchRejectsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	cfg := config.Default()
	fetcher := transport.NewFetcher(&cfg)
	dest := filepath.Join(t.TempDir(), "clip.mp4")

	if err := fetcher.Fetch(context.Background(), server.URL, dest); err == nil {
		t.Fatal("expected error for 404")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("no file should remain after failed fetch, stat err: %v", err)
	}
}
