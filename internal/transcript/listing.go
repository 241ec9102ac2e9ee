package transcript

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// ListFetchStrategy queries the available caption tracks for a video and then
// fetches the best-matching one. Two round trips, but it always picks the
// right track when several languages exist.
type ListFetchStrategy struct {
	client *timedtextClient
}

// NewListFetchStrategy builds the listing strategy. baseURL and userAgent are
// overridable for testing; empty values select the production defaults.
func NewListFetchStrategy(baseURL, userAgent string, timeout time.Duration) *ListFetchStrategy {
	return &ListFetchStrategy{client: newTimedtextClient(baseURL, userAgent, timeout)}
}

func (s *ListFetchStrategy) ID() string          { return "timedtext-list" }
func (s *ListFetchStrategy) Priority() int       { return 0 }
func (s *ListFetchStrategy) HostKey() string     { return "youtube.timedtext-list" }
func (s *ListFetchStrategy) Languages() []string { return nil }

// Execute lists the tracks, picks one, fetches it as json3 and flattens it.
func (s *ListFetchStrategy) Execute(ctx context.Context, req Request) Outcome {
	listQuery := url.Values{}
	listQuery.Set("type", "list")
	listQuery.Set("v", req.VideoID)

	body, failure := s.client.get(ctx, listQuery)
	if failure != nil {
		return *failure
	}

	tracks, err := parseTrackList(body)
	if err != nil {
		return Transient(err.Error())
	}
	track, ok := pickTrack(tracks, req.Languages)
	if !ok {
		return NotAvailable("no caption tracks listed")
	}

	fetchQuery := url.Values{}
	fetchQuery.Set("v", req.VideoID)
	fetchQuery.Set("lang", track.LangCode)
	fetchQuery.Set("fmt", "json3")
	if track.Kind != "" {
		fetchQuery.Set("kind", track.Kind)
	}
	if track.Name != "" {
		fetchQuery.Set("name", track.Name)
	}

	body, failure = s.client.get(ctx, fetchQuery)
	if failure != nil {
		return *failure
	}
	if len(body) == 0 {
		return NotAvailable(fmt.Sprintf("empty caption payload for listed track %q", track.LangCode))
	}

	text, entries, err := parseJSON3(body)
	if err != nil {
		return Transient(err.Error())
	}
	if entries == 0 {
		return NotAvailable("caption track has no entries")
	}

	return Success(text, "", entries, map[string]string{
		"source":     "timedtext-list",
		"language":   track.LangCode,
		"track_kind": track.Kind,
	})
}
