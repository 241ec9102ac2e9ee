package transcript

import (
	"context"
	"net/url"
	"time"
)

// DirectFetchStrategy fetches a caption track in a single call without the
// prior listing round trip. It trades track selection accuracy for one fewer
// request, which matters when the listing call itself is what trips the rate
// limiter.
type DirectFetchStrategy struct {
	client *timedtextClient
}

// NewDirectFetchStrategy builds the single-call strategy. baseURL and
// userAgent are overridable for testing.
func NewDirectFetchStrategy(baseURL, userAgent string, timeout time.Duration) *DirectFetchStrategy {
	return &DirectFetchStrategy{client: newTimedtextClient(baseURL, userAgent, timeout)}
}

func (s *DirectFetchStrategy) ID() string          { return "timedtext-direct" }
func (s *DirectFetchStrategy) Priority() int       { return 1 }
func (s *DirectFetchStrategy) HostKey() string     { return "youtube.timedtext" }
func (s *DirectFetchStrategy) Languages() []string { return nil }

// Execute fetches the preferred language track directly, retrying once with
// kind=asr because the endpoint answers 200 with an empty body when only
// auto-generated captions exist.
func (s *DirectFetchStrategy) Execute(ctx context.Context, req Request) Outcome {
	lang := preferredLanguage(req.Languages)

	for _, kind := range []string{"", "asr"} {
		q := url.Values{}
		q.Set("v", req.VideoID)
		q.Set("lang", lang)
		q.Set("fmt", "json3")
		if kind != "" {
			q.Set("kind", kind)
		}

		body, failure := s.client.get(ctx, q)
		if failure != nil {
			return *failure
		}
		if len(body) == 0 {
			continue
		}

		text, entries, err := parseJSON3(body)
		if err != nil {
			return Transient(err.Error())
		}
		if entries == 0 {
			continue
		}

		backend := map[string]string{
			"source":   "timedtext-direct",
			"language": lang,
		}
		if kind != "" {
			backend["track_kind"] = kind
		}
		return Success(text, "", entries, backend)
	}

	return NotAvailable("no caption track for language " + lang)
}
