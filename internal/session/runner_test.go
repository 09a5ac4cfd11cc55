package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cityguide/cityguided/internal/agent"
	"github.com/cityguide/cityguided/internal/docstore"
	"github.com/cityguide/cityguided/internal/profile"
)

type fakeResponder struct {
	answer string
	err    error
	states []*agent.TurnState
}

func (f *fakeResponder) Run(_ context.Context, state *agent.TurnState) (string, error) {
	f.states = append(f.states, state)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeGateway struct {
	mu      sync.Mutex
	texts   []string
	media   []string
	mediaCh chan string // receives each delivered media URL when set
}

func (g *fakeGateway) DeliverText(_ context.Context, to, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.texts = append(g.texts, to+": "+body)
	return nil
}

func (g *fakeGateway) DeliverMedia(_ context.Context, to, mediaURL string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.media = append(g.media, to+": "+mediaURL)
	if g.mediaCh != nil {
		g.mediaCh <- mediaURL
	}
	return nil
}

type fakeSynthesizer struct {
	audio []byte
	err   error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return f.audio, f.err
}

type fakeFetcher struct {
	audio []byte
	mime  string
	err   error
}

func (f *fakeFetcher) DownloadMedia(_ context.Context, _ string) ([]byte, string, error) {
	return f.audio, f.mime, f.err
}

type fakeTranscriber struct {
	language string
	text     string
	err      error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, string, error) {
	return f.language, f.text, f.err
}

func newTestProfiles(t *testing.T) *profile.Store {
	t.Helper()
	docs, err := docstore.NewStore(filepath.Join(t.TempDir(), "users.db"), slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { docs.Close() })
	return profile.NewStore(docs, slog.Default())
}

func TestRunTurnTranscriptShape(t *testing.T) {
	profiles := newTestProfiles(t)
	responder := &fakeResponder{answer: "It is sunny in Paris today."}
	r := NewRunner(Config{Profiles: profiles, Responder: responder})

	answer, err := r.RunTurn(context.Background(), "+1 (415) 555-0100", "What's the weather in Paris?", false)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if answer != "It is sunny in Paris today." {
		t.Errorf("answer = %q", answer)
	}

	turns, err := profiles.Transcript("14155550100")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("transcript has %d turns, want 3 (system, human, ai)", len(turns))
	}
	if turns[0].Role != profile.RoleSystem {
		t.Errorf("turns[0].Role = %q, want system", turns[0].Role)
	}
	if turns[1].Role != profile.RoleHuman || turns[1].Content != "What's the weather in Paris?" {
		t.Errorf("turns[1] = %+v", turns[1])
	}
	if turns[2].Role != profile.RoleAI || turns[2].Content != answer {
		t.Errorf("turns[2] = %+v", turns[2])
	}
}

func TestRunTurnPreambleSeededOnce(t *testing.T) {
	profiles := newTestProfiles(t)
	responder := &fakeResponder{answer: "ok"}
	r := NewRunner(Config{Profiles: profiles, Responder: responder})

	for i := 0; i < 3; i++ {
		if _, err := r.RunTurn(context.Background(), "14155550100", "hello", false); err != nil {
			t.Fatalf("RunTurn %d: %v", i, err)
		}
	}

	turns, err := profiles.Transcript("14155550100")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	systems := 0
	for _, turn := range turns {
		if turn.Role == profile.RoleSystem {
			systems++
		}
	}
	if systems != 1 {
		t.Errorf("transcript has %d system turns, want exactly 1", systems)
	}
	if turns[0].Role != profile.RoleSystem {
		t.Errorf("preamble not at head, turns[0].Role = %q", turns[0].Role)
	}
	if len(turns) != 7 {
		t.Errorf("transcript has %d turns, want 7 (1 system + 3 pairs)", len(turns))
	}
}

func TestRunTurnStatePassedToResponder(t *testing.T) {
	profiles := newTestProfiles(t)
	responder := &fakeResponder{answer: "ok"}
	r := NewRunner(Config{Profiles: profiles, Responder: responder})

	if _, err := r.RunTurn(context.Background(), "14155550100", "first", false); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RunTurn(context.Background(), "14155550100", "second", false); err != nil {
		t.Fatal(err)
	}

	if len(responder.states) != 2 {
		t.Fatalf("responder ran %d times, want 2", len(responder.states))
	}

	state := responder.states[1]
	if state.Identity != "14155550100" {
		t.Errorf("Identity = %q", state.Identity)
	}
	if state.Message != "second" {
		t.Errorf("Message = %q", state.Message)
	}
	if state.Mood != "Neutral" {
		t.Errorf("Mood = %q, want Neutral for a text turn", state.Mood)
	}
	if !strings.Contains(state.ChatHistory, "human: first") {
		t.Errorf("ChatHistory missing prior human turn:\n%s", state.ChatHistory)
	}
	if strings.Contains(state.ChatHistory, "second") {
		t.Errorf("ChatHistory should not contain the current message:\n%s", state.ChatHistory)
	}
}

func TestRunTurnResponderFailure(t *testing.T) {
	profiles := newTestProfiles(t)
	responder := &fakeResponder{err: errors.New("engine unreachable")}
	r := NewRunner(Config{Profiles: profiles, Responder: responder})

	answer, err := r.RunTurn(context.Background(), "14155550100", "hello", false)
	if err != nil {
		t.Fatalf("RunTurn should absorb responder failure, got %v", err)
	}
	if !strings.Contains(answer, "trouble") {
		t.Errorf("answer = %q, want apology", answer)
	}

	turns, err := profiles.Transcript("14155550100")
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 3 {
		t.Errorf("transcript has %d turns, want 3 (apology still recorded)", len(turns))
	}
}

func TestHandleMessageDeliversReply(t *testing.T) {
	profiles := newTestProfiles(t)
	responder := &fakeResponder{answer: "hello back"}
	gateway := &fakeGateway{}
	r := NewRunner(Config{Profiles: profiles, Responder: responder, Gateway: gateway})

	if err := r.HandleMessage(context.Background(), "14155550100", "hi", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(gateway.texts) != 1 {
		t.Fatalf("delivered %d texts, want 1", len(gateway.texts))
	}
	if gateway.texts[0] != "14155550100: hello back" {
		t.Errorf("delivery = %q", gateway.texts[0])
	}
	if len(gateway.media) != 0 {
		t.Errorf("no synthesizer is configured, so no media should be delivered")
	}
}

func TestHandleMessageSynthesizesReplyForTextTurn(t *testing.T) {
	profiles := newTestProfiles(t)
	responder := &fakeResponder{answer: "Here is your plan."}
	gateway := &fakeGateway{mediaCh: make(chan string, 1)}
	mediaDir := t.TempDir()
	r := NewRunner(Config{
		Profiles:    profiles,
		Responder:   responder,
		Gateway:     gateway,
		Synthesizer: &fakeSynthesizer{audio: []byte("mp3 bytes")},
		MediaDir:    mediaDir,
		PublicURL:   "https://cg.example",
		Retention:   time.Hour,
	})

	if err := r.HandleMessage(context.Background(), "14155550100", "plan my day", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	var mediaURL string
	select {
	case mediaURL = <-gateway.mediaCh:
	case <-time.After(5 * time.Second):
		t.Fatal("audio reply was not delivered for a text turn")
	}

	if !strings.HasPrefix(mediaURL, "https://cg.example/audio/") {
		t.Errorf("media URL = %q, want public audio path", mediaURL)
	}
	if !strings.HasSuffix(mediaURL, ".mp3") {
		t.Errorf("media URL = %q, want .mp3 file", mediaURL)
	}

	name := strings.TrimPrefix(mediaURL, "https://cg.example/audio/")
	data, err := os.ReadFile(filepath.Join(mediaDir, name))
	if err != nil {
		t.Fatalf("synthesized file not written: %v", err)
	}
	if string(data) != "mp3 bytes" {
		t.Errorf("file contents = %q", data)
	}

	if len(gateway.texts) != 1 {
		t.Errorf("text reply should still be delivered, got %d", len(gateway.texts))
	}
}

func TestHandleMessageVoiceTurn(t *testing.T) {
	profiles := newTestProfiles(t)
	responder := &fakeResponder{answer: "ok"}
	gateway := &fakeGateway{}
	r := NewRunner(Config{
		Profiles:    profiles,
		Responder:   responder,
		Gateway:     gateway,
		Fetcher:     &fakeFetcher{audio: []byte("oggdata"), mime: "audio/ogg"},
		Transcriber: &fakeTranscriber{language: "French", text: "Bonjour, quel temps fait-il?"},
	})

	if err := r.HandleMessage(context.Background(), "14155550100", "", "https://gw.example/media/1"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(responder.states) != 1 {
		t.Fatal("responder did not run")
	}
	if responder.states[0].Message != "Bonjour, quel temps fait-il?" {
		t.Errorf("Message = %q, want transcription", responder.states[0].Message)
	}

	p, err := profiles.Get("14155550100")
	if err != nil {
		t.Fatal(err)
	}
	if p.DetectedLanguage != "French" {
		t.Errorf("DetectedLanguage = %q, want French", p.DetectedLanguage)
	}
}

func TestHandleMessageVoiceTranscriptionFailure(t *testing.T) {
	profiles := newTestProfiles(t)
	responder := &fakeResponder{answer: "ok"}
	gateway := &fakeGateway{}
	r := NewRunner(Config{
		Profiles:    profiles,
		Responder:   responder,
		Gateway:     gateway,
		Fetcher:     &fakeFetcher{err: errors.New("media gone")},
		Transcriber: &fakeTranscriber{},
	})

	if err := r.HandleMessage(context.Background(), "14155550100", "", "https://gw.example/media/1"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if responder.states[0].Message != transcribeFallback {
		t.Errorf("Message = %q, want fallback text", responder.states[0].Message)
	}

	p, err := profiles.Get("14155550100")
	if err != nil {
		t.Fatal(err)
	}
	if p.DetectedLanguage != "Unknown" {
		t.Errorf("DetectedLanguage = %q, failure must not change it", p.DetectedLanguage)
	}
}
