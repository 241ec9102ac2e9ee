package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the production caption endpoint root.
const DefaultBaseURL = "https://www.youtube.com"

const defaultHTTPTimeout = 30 * time.Second

// timedtextClient wraps the shared HTTP plumbing used by both timedtext
// strategies: browser-like headers and the status-code classification that
// turns raw responses into canonical outcomes.
type timedtextClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func newTimedtextClient(baseURL, userAgent string, timeout time.Duration) *timedtextClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	}
	return &timedtextClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// get fetches a timedtext endpoint. A non-nil Outcome means the request
// failed in a way that is already classified; the caller returns it as-is.
func (c *timedtextClient) get(ctx context.Context, query url.Values) ([]byte, *Outcome) {
	u := c.baseURL + "/api/timedtext?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		o := Transient(fmt.Sprintf("building request: %v", err))
		return nil, &o
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		var o Outcome
		if ctx.Err() != nil {
			o = Transient("deadline exceeded")
		} else {
			o = Transient(fmt.Sprintf("request failed: %v", err))
		}
		return nil, &o
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		o := Transient(fmt.Sprintf("reading response: %v", err))
		return nil, &o
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		o := RateLimited(parseRetryAfter(resp.Header.Get("Retry-After")))
		return nil, &o
	case resp.StatusCode == http.StatusNotFound:
		o := NotAvailable("resource not found")
		return nil, &o
	case resp.StatusCode >= 500:
		o := Transient(fmt.Sprintf("HTTP %d", resp.StatusCode))
		return nil, &o
	default:
		o := Unknown(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200)))
		return nil, &o
	}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// captionTrack is one entry in the timedtext track listing.
type captionTrack struct {
	LangCode string `xml:"lang_code,attr"`
	Name     string `xml:"name,attr"`
	Kind     string `xml:"kind,attr"` // "asr" for auto-generated
	Default  string `xml:"lang_default,attr"`
}

type trackList struct {
	XMLName xml.Name       `xml:"transcript_list"`
	Tracks  []captionTrack `xml:"track"`
}

func parseTrackList(data []byte) ([]captionTrack, error) {
	var list trackList
	if err := xml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing track list: %w", err)
	}
	return list.Tracks, nil
}

// pickTrack selects the best track for the requested languages: first
// preference match wins, manual tracks beat auto-generated ones within a
// preference, then the default track, then the first listed.
func pickTrack(tracks []captionTrack, requested []string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	for _, want := range requested {
		var auto *captionTrack
		for i := range tracks {
			t := tracks[i]
			if !matchLanguage(t.LangCode, want) {
				continue
			}
			if t.Kind != "asr" {
				return t, true
			}
			if auto == nil {
				auto = &tracks[i]
			}
		}
		if auto != nil {
			return *auto, true
		}
	}
	for _, t := range tracks {
		if t.Default == "true" {
			return t, true
		}
	}
	return tracks[0], true
}

// json3 is the fmt=json3 caption payload shape: a flat event list where each
// event carries text segments.
type json3Body struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	Segs []json3Seg `json:"segs"`
}

type json3Seg struct {
	UTF8 string `json:"utf8"`
}

// parseJSON3 flattens a json3 payload into plain text and reports how many
// caption entries contributed.
func parseJSON3(data []byte) (string, int, error) {
	var body json3Body
	if err := json.Unmarshal(data, &body); err != nil {
		return "", 0, fmt.Errorf("parsing json3 payload: %w", err)
	}

	var parts []string
	entries := 0
	for _, ev := range body.Events {
		if len(ev.Segs) == 0 {
			continue
		}
		var b strings.Builder
		for _, seg := range ev.Segs {
			b.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(b.String(), "\n", " "))
		if text == "" {
			continue
		}
		parts = append(parts, text)
		entries++
	}
	return strings.Join(parts, " "), entries, nil
}
