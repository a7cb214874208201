// Package translate calls a Google-translate-compatible endpoint to
// render text into English. Callers treat failures as optional: the
// original text is kept when translation errors out.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"relaybot/core/logger"
)

// Client performs single-shot translations. Safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient builds a client for the given translate endpoint, such as
// "https://translate.googleapis.com/translate_a/single".
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

// ToEnglish translates text from an auto-detected language to English.
func (c *Client) ToEnglish(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", "en")
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("translate: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	out, err := parseResponse(body)
	if err != nil {
		return "", err
	}

	logger.Xlate.Debug("translated",
		slog.String("event", "translate.done"),
		slog.Int("in_len", len(text)),
		slog.Int("out_len", len(out)),
	)
	return out, nil
}

// parseResponse decodes the gtx response shape: a nested array whose
// first element lists segments, each segment an array starting with the
// translated chunk.
func parseResponse(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("translate: decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var chunk string
		if err := json.Unmarshal(seg[0], &chunk); err != nil {
			continue
		}
		b.WriteString(chunk)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("translate: no segments in response")
	}
	return b.String(), nil
}
