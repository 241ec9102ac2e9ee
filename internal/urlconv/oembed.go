package urlconv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultOEmbedURL = "https://www.youtube.com/oembed"

// titleClient resolves video titles through the oEmbed endpoint. baseURL is
// overridable so tests can point it at a local server.
type titleClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func newTitleClient(userAgent string) *titleClient {
	return &titleClient{
		baseURL:   defaultOEmbedURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (tc *titleClient) videoTitle(ctx context.Context, videoURL string) (string, error) {
	endpoint := fmt.Sprintf("%s?url=%s&format=json", tc.baseURL, url.QueryEscape(videoURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	if tc.userAgent != "" {
		req.Header.Set("User-Agent", tc.userAgent)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oembed status %d", resp.StatusCode)
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Title, nil
}
