// Package fetcher retrieves page HTML for URL conversion, either with a
// plain HTTP client or through a headless browser when a site needs
// JavaScript to produce its content.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeStatic Mode = "static"
	ModeJS     Mode = "javascript"
)

type Options struct {
	Mode         Mode
	Timeout      time.Duration
	UserAgent    string
	BrowserAgent string
	Cookies      []*http.Cookie
}

type Result struct {
	HTML   string
	URL    string
	UsedJS bool
}

type Fetcher struct {
	client *http.Client
	agents *AgentSelector
}

func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		agents: NewAgentSelector(),
	}
}

// Fetch retrieves url according to opts.Mode. Auto mode fetches statically
// first and falls back to the headless browser when the static HTML looks
// like an unrendered app shell.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts Options) (*Result, error) {
	switch opts.Mode {
	case ModeStatic:
		return f.fetchStatic(ctx, url, opts)
	case ModeJS:
		return f.fetchRendered(ctx, url, opts)
	}

	result, err := f.fetchStatic(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	if needsRendering(result.HTML) {
		if rendered, rerr := f.fetchRendered(ctx, url, opts); rerr == nil {
			return rendered, nil
		}
		// Rendering is best effort in auto mode; the static HTML still stands.
	}
	return result, nil
}

func (f *Fetcher) fetchStatic(ctx context.Context, url string, opts Options) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = f.agents.UserAgent(opts.BrowserAgent)
	}
	req.Header.Set("User-Agent", userAgent)

	// Headers that make the request look like a real browser navigation.
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Cache-Control", "max-age=0")

	for _, cookie := range opts.Cookies {
		req.AddCookie(cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Result{HTML: string(body), URL: url}, nil
}

// needsRendering guesses whether static HTML is an unrendered SPA shell:
// framework markers, loading placeholders, or script-heavy pages with a
// near-empty body.
func needsRendering(html string) bool {
	lower := strings.ToLower(html)

	for _, marker := range []string{"data-reactroot", "ng-app", "v-app", "__next_data__", "id=\"root\""} {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	if strings.Contains(lower, "loading") && len(strings.TrimSpace(html)) < 2000 {
		return true
	}

	scriptCount := strings.Count(lower, "<script")
	return scriptCount > 5 && len(strings.TrimSpace(bodyContent(html))) < 1000
}

func bodyContent(html string) string {
	lower := strings.ToLower(html)
	start := strings.Index(lower, "<body")
	if start == -1 {
		return html
	}
	open := strings.Index(html[start:], ">")
	if open == -1 {
		return html
	}
	start += open + 1

	end := strings.Index(lower[start:], "</body>")
	if end == -1 {
		return html[start:]
	}
	return html[start : start+end]
}
