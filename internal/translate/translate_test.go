package translate_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stitcher/internal/config"
	"stitcher/internal/services"
	"stitcher/internal/translate"
)

func newClient(t *testing.T, baseURL string) translate.Client {
	t.Helper()
	cfg := config.Default()
	cfg.Translation.BaseURL = baseURL
	return translate.NewClient(&cfg)
}

func TestTranslateJoinsSegments(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_a/single" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = map[string]string{
			"client": r.URL.Query().Get("client"),
			"sl":     r.URL.Query().Get("sl"),
			"tl":     r.URL.Query().Get("tl"),
			"dt":     r.URL.Query().Get("dt"),
			"q":      r.URL.Query().Get("q"),
		}
		_, _ = io.WriteString(w, `[[["Hello. ","Привет. ",null,null,3],["How are you?","Как дела?",null,null,3]],null,"ru"]`)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	got, err := client.Translate(context.Background(), "Привет. Как дела?", "en")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Hello. How are you?" {
		t.Fatalf("unexpected translation %q", got)
	}
	if gotQuery["client"] != "gtx" || gotQuery["sl"] != "auto" || gotQuery["tl"] != "en" || gotQuery["dt"] != "t" {
		t.Fatalf("unexpected query %v", gotQuery)
	}
	if gotQuery["q"] != "Привет. Как дела?" {
		t.Fatalf("unexpected source text %q", gotQuery["q"])
	}
}

func TestTranslateSkipsNonStringSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[[["Done.","Готово.",null,null,3],[null,null,"metadata"]],null,"ru"]`)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	got, err := client.Translate(context.Background(), "Готово.", "en")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Done." {
		t.Fatalf("unexpected translation %q", got)
	}
}

func TestTranslateServerErrorIsTranslationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	if _, err := client.Translate(context.Background(), "text", "kk"); !errors.Is(err, services.ErrTranslation) {
		t.Fatalf("expected ErrTranslation, got %v", err)
	}
}

func TestTranslateRejectsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"unexpected": "shape"}`)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	if _, err := client.Translate(context.Background(), "text", "ru"); !errors.Is(err, services.ErrTranslation) {
		t.Fatalf("expected ErrTranslation, got %v", err)
	}
}

func TestTranslateRejectsEmptyInputs(t *testing.T) {
	client := newClient(t, "http://127.0.0.1:0")
	if _, err := client.Translate(context.Background(), "  ", "en"); !errors.Is(err, services.ErrTranslation) {
		t.Fatalf("expected ErrTranslation for empty text, got %v", err)
	}
	if _, err := client.Translate(context.Background(), "text", ""); !errors.Is(err, services.ErrTranslation) {
		t.Fatalf("expected ErrTranslation for empty target, got %v", err)
	}
}
