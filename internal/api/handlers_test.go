package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"markdownd/internal/config"
	"markdownd/internal/converter"
	"markdownd/internal/transcript"
)

type stubFileConverter struct {
	result *converter.Result
	err    error
}

func (s *stubFileConverter) Convert(ctx context.Context, r io.Reader, filename string) (*converter.Result, int64, error) {
	data, _ := io.ReadAll(r)
	if s.err != nil {
		return nil, int64(len(data)), s.err
	}
	return s.result, int64(len(data)), nil
}

type stubURLConverter struct {
	result *converter.Result
	err    error
	gotURL string
}

func (s *stubURLConverter) Convert(ctx context.Context, url string) (*converter.Result, error) {
	s.gotURL = url
	return s.result, s.err
}

func newTestServer(files FileConverter, urls URLConverter) *Server {
	return NewServer(config.Default(), files, urls, nil, nil)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubFileConverter{}, &stubURLConverter{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "healthy" || body["service"] != "markdownd" || body["version"] != "0.2.0" {
		t.Errorf("body = %v", body)
	}
}

func TestConvert_NoFile(t *testing.T) {
	srv := newTestServer(&stubFileConverter{}, &stubURLConverter{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "No file provided" {
		t.Errorf("error = %v", body["error"])
	}
	if body["message"] != "Send file via multipart/form-data or raw body" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestConvert_Multipart(t *testing.T) {
	files := &stubFileConverter{result: &converter.Result{Markdown: "# Doc\n\nbody", Title: "Doc"}}
	srv := newTestServer(files, &stubURLConverter{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "doc.md")
	part.Write([]byte("# Doc\n\nbody"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["markdown"] != "# Doc\n\nbody" {
		t.Errorf("markdown = %v", body["markdown"])
	}
	meta := body["metadata"].(map[string]any)
	if meta["filename"] != "doc.md" {
		t.Errorf("filename = %v", meta["filename"])
	}
	if meta["title"] != "Doc" {
		t.Errorf("title = %v", meta["title"])
	}
	if meta["markdown_length"].(float64) != float64(len("# Doc\n\nbody")) {
		t.Errorf("markdown_length = %v", meta["markdown_length"])
	}
}

func TestConvert_RawBodyWithFilenameHeader(t *testing.T) {
	files := &stubFileConverter{result: &converter.Result{Markdown: "text body"}}
	srv := newTestServer(files, &stubURLConverter{})

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("text body"))
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", "notes.txt")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	meta := decodeBody(t, rec)["metadata"].(map[string]any)
	if meta["filename"] != "notes.txt" {
		t.Errorf("filename = %v", meta["filename"])
	}
	if meta["size_bytes"].(float64) != float64(len("text body")) {
		t.Errorf("size_bytes = %v", meta["size_bytes"])
	}
}

func TestConvert_FailureReportsKind(t *testing.T) {
	files := &stubFileConverter{err: &converter.Error{
		Kind: converter.KindUnsupportedFormat,
		Err:  errors.New("no converter for signature \"exe\""),
	}}
	srv := newTestServer(files, &stubURLConverter{})

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("MZ..."))
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", "app.exe")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Conversion failed" {
		t.Errorf("error = %v", body["error"])
	}
	if body["type"] != "UnsupportedFormat" {
		t.Errorf("type = %v", body["type"])
	}
}

func TestConvertURL_NoURL(t *testing.T) {
	srv := newTestServer(&stubFileConverter{}, &stubURLConverter{})

	for _, payload := range []string{"", "{}", "not json"} {
		req := httptest.NewRequest(http.MethodPost, "/convert/url", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %q: status = %d", payload, rec.Code)
			continue
		}
		body := decodeBody(t, rec)
		if body["error"] != "No URL provided" {
			t.Errorf("payload %q: error = %v", payload, body["error"])
		}
	}
}

func TestConvertURL_Success(t *testing.T) {
	urls := &stubURLConverter{result: &converter.Result{Markdown: "# Page\n\ncontent", Title: "Page"}}
	srv := newTestServer(&stubFileConverter{}, urls)

	req := httptest.NewRequest(http.MethodPost, "/convert/url",
		strings.NewReader(`{"url":"https://example.com/post"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if urls.gotURL != "https://example.com/post" {
		t.Errorf("url = %q", urls.gotURL)
	}
	meta := decodeBody(t, rec)["metadata"].(map[string]any)
	if meta["url"] != "https://example.com/post" {
		t.Errorf("metadata url = %v", meta["url"])
	}
	if meta["title"] != "Page" {
		t.Errorf("title = %v", meta["title"])
	}
}

func TestConvertURL_TranscriptExhausted(t *testing.T) {
	urls := &stubURLConverter{err: &transcript.ExhaustedError{Kind: "RateLimited"}}
	srv := newTestServer(&stubFileConverter{}, urls)

	req := httptest.NewRequest(http.MethodPost, "/convert/url",
		strings.NewReader(`{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "URL conversion failed" {
		t.Errorf("error = %v", body["error"])
	}
	if body["type"] != "RateLimited" {
		t.Errorf("type = %v", body["type"])
	}
}

func TestIndex(t *testing.T) {
	srv := newTestServer(&stubFileConverter{}, &stubURLConverter{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["service"] != "markdownd" {
		t.Errorf("service = %v", body["service"])
	}
	if _, ok := body["endpoints"].(map[string]any); !ok {
		t.Errorf("endpoints missing: %v", body)
	}
}
