package transport

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stitcher/internal/config"
)

const userAgent = "Stitcher-Go/0.1.0"

// Messenger delivers pipeline output to a user.
type Messenger interface {
	// SendText delivers a plain text message.
	SendText(ctx context.Context, user, text string) error
	// SendFile delivers a file with an optional caption.
	SendFile(ctx context.Context, user, path, caption string) error
}

// NewMessenger builds a Messenger from configuration. When no webhook URL is
// configured, a noop implementation is returned so pipelines run unchanged.
func NewMessenger(cfg *config.Config) Messenger {
	endpoint := strings.TrimSpace(cfg.Notify.WebhookURL)
	if endpoint == "" {
		return noopMessenger{}
	}

	timeout := time.Duration(cfg.Notify.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &webhookMessenger{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type noopMessenger struct{}

func (noopMessenger) SendText(context.Context, string, string) error { return nil }

func (noopMessenger) SendFile(context.Context, string, string, string) error { return nil }

type webhookMessenger struct {
	endpoint string
	client   *http.Client
}

func (m *webhookMessenger) SendText(ctx context.Context, user, text string) error {
	var body strings.Builder
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("user", user); err != nil {
		return fmt.Errorf("messenger text: %w", err)
	}
	if err := writer.WriteField("text", text); err != nil {
		return fmt.Errorf("messenger text: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("messenger text: %w", err)
	}
	return m.post(ctx, writer.FormDataContentType(), strings.NewReader(body.String()))
}

func (m *webhookMessenger) SendFile(ctx context.Context, user, path, caption string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("messenger file: open %s: %w", path, err)
	}
	defer file.Close()

	var body strings.Builder
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("user", user); err != nil {
		return fmt.Errorf("messenger file: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("messenger file: %w", err)
		}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("messenger file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("messenger file: read %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("messenger file: %w", err)
	}
	return m.post(ctx, writer.FormDataContentType(), strings.NewReader(body.String()))
}

func (m *webhookMessenger) post(ctx context.Context, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, body)
	if err != nil {
		return fmt.Errorf("messenger request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("messenger delivery: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("messenger delivery: status %d", resp.StatusCode)
	}
	return nil
}
