package transcript

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleTrackListXML = `<?xml version="1.0" encoding="utf-8"?>
<transcript_list docid="123">
  <track id="0" name="" lang_code="de" lang_original="Deutsch" lang_translated="German"/>
  <track id="1" name="" lang_code="en" lang_original="English" lang_translated="English" lang_default="true"/>
  <track id="2" name="" lang_code="en" lang_original="English (auto)" kind="asr"/>
</transcript_list>`

func sampleJSON3(text string) string {
	return fmt.Sprintf(`{"events":[{"tStartMs":0,"segs":[{"utf8":%q}]},{"tStartMs":100},{"tStartMs":200,"segs":[{"utf8":"and more"}]}]}`, text)
}

func TestParseJSON3(t *testing.T) {
	text, entries, err := parseJSON3([]byte(sampleJSON3("hello world")))
	if err != nil {
		t.Fatalf("parseJSON3 failed: %v", err)
	}
	if text != "hello world and more" {
		t.Errorf("text = %q", text)
	}
	if entries != 2 {
		t.Errorf("entries = %d, want 2", entries)
	}
}

func TestParseJSON3_Invalid(t *testing.T) {
	if _, _, err := parseJSON3([]byte("<html>nope</html>")); err == nil {
		t.Error("expected error for non-JSON payload")
	}
}

func TestPickTrack(t *testing.T) {
	tracks, err := parseTrackList([]byte(sampleTrackListXML))
	if err != nil {
		t.Fatalf("parseTrackList failed: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("parsed %d tracks, want 3", len(tracks))
	}

	// Manual track beats the asr one for the same language.
	got, ok := pickTrack(tracks, []string{"en"})
	if !ok || got.LangCode != "en" || got.Kind == "asr" {
		t.Errorf("pickTrack(en) = %+v, ok=%v", got, ok)
	}

	// Unknown preference falls back to the default track.
	got, ok = pickTrack(tracks, []string{"fr"})
	if !ok || got.Default != "true" {
		t.Errorf("pickTrack(fr) = %+v, want default track", got)
	}

	// No preference also lands on the default.
	got, ok = pickTrack(tracks, nil)
	if !ok || got.Default != "true" {
		t.Errorf("pickTrack(nil) = %+v, want default track", got)
	}

	if _, ok := pickTrack(nil, []string{"en"}); ok {
		t.Error("pickTrack on empty list should report false")
	}
}

func TestListFetchStrategy_Success(t *testing.T) {
	body := strings.Repeat("transcript text ", 50)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("type") == "list" {
			w.Write([]byte(sampleTrackListXML))
			return
		}
		if q.Get("lang") != "en" {
			t.Errorf("fetched lang %q, want en", q.Get("lang"))
		}
		if q.Get("fmt") != "json3" {
			t.Errorf("fetched fmt %q, want json3", q.Get("fmt"))
		}
		w.Write([]byte(sampleJSON3(body)))
	}))
	defer server.Close()

	s := NewListFetchStrategy(server.URL, "", 5*time.Second)
	out := s.Execute(context.Background(), testRequest())

	if out.Kind != KindSuccess {
		t.Fatalf("kind = %s, detail=%q reason=%q", out.Kind, out.Detail, out.Reason)
	}
	if !strings.Contains(out.Text, "transcript text") {
		t.Errorf("unexpected text %q", truncate(out.Text, 60))
	}
	if out.Backend["language"] != "en" {
		t.Errorf("backend language = %q", out.Backend["language"])
	}
	if out.RawEntryCount != 2 {
		t.Errorf("entries = %d, want 2", out.RawEntryCount)
	}
}

func TestListFetchStrategy_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewListFetchStrategy(server.URL, "", 5*time.Second)
	out := s.Execute(context.Background(), testRequest())

	if out.Kind != KindRateLimited {
		t.Fatalf("kind = %s, want RateLimited", out.Kind)
	}
	if out.RetryAfter != 2*time.Minute {
		t.Errorf("retryAfter = %v, want 2m", out.RetryAfter)
	}
}

func TestListFetchStrategy_NoTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?><transcript_list docid="1"></transcript_list>`))
	}))
	defer server.Close()

	s := NewListFetchStrategy(server.URL, "", 5*time.Second)
	out := s.Execute(context.Background(), testRequest())

	if out.Kind != KindNotAvailable {
		t.Fatalf("kind = %s, want NotAvailable", out.Kind)
	}
}

func TestListFetchStrategy_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := NewListFetchStrategy(server.URL, "", 5*time.Second)
	out := s.Execute(context.Background(), testRequest())

	if out.Kind != KindTransient {
		t.Fatalf("kind = %s, want TransientError", out.Kind)
	}
}

func TestDirectFetchStrategy_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") == "list" {
			t.Error("direct strategy must not issue a listing call")
		}
		w.Write([]byte(sampleJSON3("direct fetch text")))
	}))
	defer server.Close()

	s := NewDirectFetchStrategy(server.URL, "", 5*time.Second)
	out := s.Execute(context.Background(), testRequest())

	if out.Kind != KindSuccess {
		t.Fatalf("kind = %s, detail=%q", out.Kind, out.Detail)
	}
	if out.Backend["source"] != "timedtext-direct" {
		t.Errorf("source = %q", out.Backend["source"])
	}
}

func TestDirectFetchStrategy_FallsBackToASR(t *testing.T) {
	var sawASR bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("kind") == "asr" {
			sawASR = true
			w.Write([]byte(sampleJSON3("auto captions")))
			return
		}
		// Plain request: 200 with empty body, the way the endpoint behaves
		// when only auto-generated captions exist.
	}))
	defer server.Close()

	s := NewDirectFetchStrategy(server.URL, "", 5*time.Second)
	out := s.Execute(context.Background(), testRequest())

	if !sawASR {
		t.Error("expected a kind=asr retry")
	}
	if out.Kind != KindSuccess {
		t.Fatalf("kind = %s, want Success", out.Kind)
	}
	if out.Backend["track_kind"] != "asr" {
		t.Errorf("track_kind = %q, want asr", out.Backend["track_kind"])
	}
}

func TestDirectFetchStrategy_EmptyBothWays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	s := NewDirectFetchStrategy(server.URL, "", 5*time.Second)
	out := s.Execute(context.Background(), testRequest())

	if out.Kind != KindNotAvailable {
		t.Fatalf("kind = %s, want NotAvailable", out.Kind)
	}
}

func TestTimedtextClient_DeadlineIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := NewDirectFetchStrategy(server.URL, "", 5*time.Second)
	out := s.Execute(ctx, testRequest())

	if out.Kind != KindTransient {
		t.Fatalf("kind = %s, want TransientError", out.Kind)
	}
	if out.Detail != "deadline exceeded" {
		t.Errorf("detail = %q", out.Detail)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("60"); got != time.Minute {
		t.Errorf("parseRetryAfter(60) = %v", got)
	}
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("parseRetryAfter('') = %v", got)
	}
	if got := parseRetryAfter("Wed, 21 Oct 2026 07:28:00 GMT"); got != 0 {
		t.Errorf("parseRetryAfter(date) = %v", got)
	}
}
