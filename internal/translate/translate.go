// Package translate calls the public Google translation endpoint and
// reassembles its segmented responses into full translated texts.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stitcher/internal/config"
	"stitcher/internal/services"
)

const userAgent = "Stitcher-Go/0.1.0"

// Client translates text into a single target language.
type Client interface {
	Translate(ctx context.Context, text, targetCode string) (string, error)
}

// NewClient builds a Client from configuration.
func NewClient(cfg *config.Config) Client {
	timeout := time.Duration(cfg.Translation.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &googleClient{
		baseURL: strings.TrimRight(cfg.Translation.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type googleClient struct {
	baseURL string
	client  *http.Client
}

func (c *googleClient) Translate(ctx context.Context, text, targetCode string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", services.Wrap(services.ErrTranslation, "translate", "input", "empty text", nil)
	}
	targetCode = strings.TrimSpace(targetCode)
	if targetCode == "" {
		return "", services.Wrap(services.ErrTranslation, "translate", "input", "empty target language", nil)
	}

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", targetCode)
	query.Set("dt", "t")
	query.Set("q", text)
	endpoint := c.baseURL + "/translate_a/single?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTranslation, "translate", "build request", targetCode, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTranslation, "translate", "request", targetCode, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTranslation, "translate", "read response", targetCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := fmt.Sprintf("%s: status %d", targetCode, resp.StatusCode)
		return "", services.Wrap(services.ErrTranslation, "translate", "request", detail, nil)
	}

	translated, err := decodeResponse(payload)
	if err != nil {
		return "", services.Wrap(services.ErrTranslation, "translate", "parse response", targetCode, err)
	}
	return translated, nil
}

// decodeResponse unpacks the endpoint's positional JSON. The body is an array
// whose first element lists segments, each segment an array whose first
// element is the translated text for one source sentence.
func decodeResponse(payload []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(payload, &outer); err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("empty response body")
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", fmt.Errorf("decode segments: %w", err)
	}

	var b strings.Builder
	for _, segment := range segments {
		var fields []json.RawMessage
		if err := json.Unmarshal(segment, &fields); err != nil {
			return "", fmt.Errorf("decode segment: %w", err)
		}
		if len(fields) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(fields[0], &piece); err != nil {
			// Trailing metadata segments carry non-string first elements.
			continue
		}
		b.WriteString(piece)
	}

	translated := strings.TrimSpace(b.String())
	if translated == "" {
		return "", fmt.Errorf("no translated segments in response")
	}
	return translated, nil
}
