// Package jikan is a thin client for a Jikan-compatible media catalogue API.
package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"relaybot/core/logger"
)

// Client queries the catalogue API. Safe for concurrent use.
type Client struct {
	baseURL string
	limit   int
	http    *http.Client
}

// NewClient builds a client for the given API base URL, such as
// "https://api.jikan.moe/v4". A nil httpClient selects a default.
func NewClient(baseURL string, searchLimit int, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if searchLimit <= 0 {
		searchLimit = 10
	}
	return &Client{
		baseURL: baseURL,
		limit:   searchLimit,
		http:    httpClient,
	}
}

// Search queries one media tier and returns the raw result list.
func (c *Client) Search(ctx context.Context, mediaType MediaType, query string) ([]Media, error) {
	endpoint := fmt.Sprintf("%s/%s?q=%s&limit=%d",
		c.baseURL, mediaType, url.QueryEscape(query), c.limit)

	var resp searchResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("search %s: %w", mediaType, err)
	}

	logger.Lookup.Debug("search done",
		slog.String("event", "lookup.search"),
		slog.String("media_type", string(mediaType)),
		slog.String("query", logger.SanitizeLimit(query, 128)),
		slog.Int("results", len(resp.Data)),
	)
	return resp.Data, nil
}

// Characters fetches the character listing for a media entry.
func (c *Client) Characters(ctx context.Context, mediaType MediaType, malID int64) ([]CharacterEntry, error) {
	endpoint := c.baseURL + "/" + string(mediaType) + "/" + strconv.FormatInt(malID, 10) + "/characters"

	var resp charactersResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("characters %s/%d: %w", mediaType, malID, err)
	}
	return resp.Data, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
