// Package transcribe uploads audio to a Whisper-compatible speech-to-text
// endpoint and returns the plain transcript.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stitcher/internal/config"
	"stitcher/internal/services"
)

const userAgent = "Stitcher-Go/0.1.0"

// Client uploads audio files for transcription.
type Client interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// NewClient builds a Client from configuration. A missing API key yields a
// client that fails fast with a clear error instead of a rejected upload.
func NewClient(cfg *config.Config) Client {
	timeout := time.Duration(cfg.Transcription.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &whisperClient{
		baseURL: strings.TrimRight(cfg.Transcription.BaseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.Transcription.APIKey),
		model:   cfg.Transcription.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

type whisperClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func (c *whisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if c.apiKey == "" {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "auth", "no API key configured", nil)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "open audio", audioPath, err)
	}
	defer file.Close()

	var body strings.Builder
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "build request", "", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "read audio", audioPath, err)
	}
	if err := writer.WriteField("model", c.model); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "build request", "", err)
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "build request", "", err)
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "build request", "", err)
	}

	endpoint := c.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "build request", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "upload", endpoint, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "read response", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := fmt.Sprintf("status %d: %s", resp.StatusCode, summarize(payload))
		return "", services.Wrap(services.ErrTranscription, "transcribe", "upload", detail, nil)
	}

	transcript := strings.TrimSpace(string(payload))
	if transcript == "" {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "upload", "service returned an empty transcript", errors.New("empty body"))
	}
	return transcript, nil
}

func summarize(payload []byte) string {
	text := strings.TrimSpace(string(payload))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
