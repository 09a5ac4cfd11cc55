package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRunner struct {
	from     string
	body     string
	mediaURL string
	err      error
	calls    int
}

func (f *fakeRunner) HandleMessage(_ context.Context, from, body, mediaURL string) error {
	f.calls++
	f.from = from
	f.body = body
	f.mediaURL = mediaURL
	return f.err
}

func postIncoming(t *testing.T, handler http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/incoming", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIncomingTextMessage(t *testing.T) {
	runner := &fakeRunner{}
	s := NewServer("", 0, runner, t.TempDir(), nil)

	form := url.Values{}
	form.Set("From", "whatsapp:+14155550100")
	form.Set("Body", "hello")

	rec := postIncoming(t, s.Handler(), form)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if runner.from != "whatsapp:+14155550100" || runner.body != "hello" {
		t.Errorf("runner got from=%q body=%q", runner.from, runner.body)
	}
	if runner.mediaURL != "" {
		t.Errorf("mediaURL = %q, want empty", runner.mediaURL)
	}
}

func TestIncomingVoiceMessage(t *testing.T) {
	runner := &fakeRunner{}
	s := NewServer("", 0, runner, t.TempDir(), nil)

	form := url.Values{}
	form.Set("From", "14155550100")
	form.Set("MediaUrl0", "https://gw.example/media/9")

	rec := postIncoming(t, s.Handler(), form)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if runner.mediaURL != "https://gw.example/media/9" {
		t.Errorf("mediaURL = %q", runner.mediaURL)
	}
}

func TestIncomingMissingFrom(t *testing.T) {
	runner := &fakeRunner{}
	s := NewServer("", 0, runner, t.TempDir(), nil)

	form := url.Values{}
	form.Set("Body", "anonymous")

	rec := postIncoming(t, s.Handler(), form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if runner.calls != 0 {
		t.Error("runner must not run without a sender")
	}
}

func TestIncomingTurnFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("store offline")}
	s := NewServer("", 0, runner, t.TempDir(), nil)

	form := url.Values{}
	form.Set("From", "14155550100")
	form.Set("Body", "hello")

	rec := postIncoming(t, s.Handler(), form)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestAudioServing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "reply.mp3"), []byte("mp3 bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewServer("", 0, &fakeRunner{}, dir, nil)
	handler := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/audio/reply.mp3", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "mp3 bytes" {
		t.Errorf("body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("content type = %q", ct)
	}
}

func TestAudioMissingFile(t *testing.T) {
	s := NewServer("", 0, &fakeRunner{}, t.TempDir(), nil)
	handler := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/audio/nope.mp3", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
