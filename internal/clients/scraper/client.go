package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches pages through a rendering scrape proxy. Competitor sites
// block plain HTTP clients, so every page load goes through the proxy's
// scrape endpoint with basic auth.
type Client struct {
	httpClient *http.Client
	endpoint   string
	user       string
	key        string
}

// NewClient creates a new scrape proxy client
func NewClient(endpoint, user, key string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoint:   endpoint,
		user:       user,
		key:        key,
	}
}

// FetchPage loads one URL through the proxy and returns its rendered HTML.
// A response without results yields an empty page, not an error; callers
// treat an empty page like a failed match.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	payload := map[string]string{"url": pageURL}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.user, c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("scrape proxy error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var response struct {
		Results []struct {
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("failed to parse scrape proxy response: %w", err)
	}

	if len(response.Results) == 0 {
		return "", nil
	}
	return response.Results[0].Content, nil
}
