// Package session runs one conversational turn end to end: profile
// lookup, transcript maintenance, orchestration, and reply delivery.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cityguide/cityguided/internal/agent"
	"github.com/cityguide/cityguided/internal/mood"
	"github.com/cityguide/cityguided/internal/profile"
	"github.com/cityguide/cityguided/internal/prompts"
	"github.com/cityguide/cityguided/internal/speech"
)

// Responder abstracts the orchestrator for testability. The real
// implementation is *agent.Orchestrator.
type Responder interface {
	Run(ctx context.Context, state *agent.TurnState) (string, error)
}

// Deliverer sends replies back through the messaging gateway.
type Deliverer interface {
	DeliverText(ctx context.Context, to, body string) error
	DeliverMedia(ctx context.Context, to, mediaURL string) error
}

// MediaFetcher downloads inbound media referenced by a gateway URL.
type MediaFetcher interface {
	DownloadMedia(ctx context.Context, mediaURL string) ([]byte, string, error)
}

// transcribeFallback stands in for the message text when an inbound
// voice note cannot be processed. The turn still runs so the user gets
// a reply instead of silence.
const transcribeFallback = "Sorry, I couldn't understand the audio message."

// Config holds the dependencies for a Runner. Profiles and Responder
// are required; everything else degrades gracefully when absent.
type Config struct {
	Profiles    *profile.Store
	Responder   Responder
	Mood        *mood.Classifier
	Transcriber speech.Transcriber
	Synthesizer speech.Synthesizer
	Gateway     Deliverer
	Fetcher     MediaFetcher
	MediaDir    string
	PublicURL   string        // externally reachable base for synthesized audio
	Retention   time.Duration // synthesized file lifetime
	Logger      *slog.Logger
}

// Runner executes turns. One Runner serves all identities; per-identity
// write ordering is the profile store's concern.
type Runner struct {
	profiles    *profile.Store
	responder   Responder
	mood        *mood.Classifier
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	gateway     Deliverer
	fetcher     MediaFetcher
	mediaDir    string
	publicURL   string
	retention   time.Duration
	logger      *slog.Logger
}

// NewRunner creates a session runner.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = 300 * time.Second
	}
	return &Runner{
		profiles:    cfg.Profiles,
		responder:   cfg.Responder,
		mood:        cfg.Mood,
		transcriber: cfg.Transcriber,
		synthesizer: cfg.Synthesizer,
		gateway:     cfg.Gateway,
		fetcher:     cfg.Fetcher,
		mediaDir:    cfg.MediaDir,
		publicURL:   cfg.PublicURL,
		retention:   retention,
		logger:      logger,
	}
}

// HandleMessage processes one inbound gateway message and delivers the
// reply. A non-empty mediaURL marks a voice turn: the audio is
// downloaded and transcribed before the turn runs, and the reply is
// additionally synthesized and delivered as audio.
func (r *Runner) HandleMessage(ctx context.Context, from, body, mediaURL string) error {
	text := body
	voice := mediaURL != ""

	if voice {
		text = r.transcribeInbound(ctx, from, mediaURL)
	}

	answer, err := r.RunTurn(ctx, from, text, voice)
	if err != nil {
		return err
	}

	if r.gateway == nil {
		r.logger.Warn("no gateway configured, dropping reply", "to", from)
		return nil
	}
	if err := r.gateway.DeliverText(ctx, from, answer); err != nil {
		return fmt.Errorf("deliver reply: %w", err)
	}

	// Every turn also gets a spoken reply when synthesis is
	// configured. Synthesis and delivery run detached so the inbound
	// handler returns as soon as the text reply is out.
	if r.synthesizer != nil {
		go r.replyAudio(from, answer)
	}
	return nil
}

// RunTurn executes the core turn for a message that is already text:
// profile get-or-create, transcript update, one orchestrator pass, and
// a single transcript write. It returns the reply text.
func (r *Runner) RunTurn(ctx context.Context, from, text string, voice bool) (string, error) {
	key, p, created, err := r.profiles.GetOrCreate(from)
	if err != nil {
		return "", fmt.Errorf("get or create profile: %w", err)
	}
	if created {
		r.logger.Info("new user profile created", "identity", key)
	}

	turns := p.ChatHistory
	if len(turns) == 0 || turns[0].Role != profile.RoleSystem {
		seeded := make([]profile.Turn, 0, len(turns)+1)
		seeded = append(seeded, profile.Turn{Role: profile.RoleSystem, Content: prompts.SystemPreamble()})
		turns = append(seeded, turns...)
	}

	// Render memory before appending the new message so the decision
	// prompt carries it once, in its own slot.
	history := prompts.RenderHistory(turns)
	turns = append(turns, profile.Turn{Role: profile.RoleHuman, Content: text})

	turnMood := "Neutral"
	if voice && r.mood != nil {
		turnMood = r.mood.Detect(ctx, text)
	}

	answer, err := r.responder.Run(ctx, &agent.TurnState{
		Identity:         key,
		Message:          text,
		Location:         p.Interests.CurrentLocation,
		Mood:             turnMood,
		ChatHistory:      history,
		DetectedLanguage: p.DetectedLanguage,
	})
	if err != nil {
		r.logger.Error("orchestrator failed", "identity", key, "error", err)
		answer = "I'm having trouble thinking right now. Please try again in a moment."
	}

	turns = append(turns, profile.Turn{Role: profile.RoleAI, Content: answer})
	if err := r.profiles.SaveTranscript(key, turns); err != nil {
		return "", fmt.Errorf("save transcript: %w", err)
	}

	r.logger.Info("turn complete",
		"identity", key,
		"voice", voice,
		"mood", turnMood,
		"turns", len(turns),
	)
	return answer, nil
}

// transcribeInbound downloads and transcribes a voice note, updating
// the stored language when detection yields something new. Any failure
// degrades to the fallback text so the turn still produces a reply.
func (r *Runner) transcribeInbound(ctx context.Context, from, mediaURL string) string {
	if r.fetcher == nil || r.transcriber == nil {
		r.logger.Warn("voice message received but audio processing is not configured", "from", from)
		return transcribeFallback
	}

	audio, mimeType, err := r.fetcher.DownloadMedia(ctx, mediaURL)
	if err != nil {
		r.logger.Error("inbound media download failed", "from", from, "error", err)
		return transcribeFallback
	}

	language, text, err := r.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil || text == "" {
		r.logger.Error("transcription failed", "from", from, "error", err)
		return transcribeFallback
	}

	if language != "" && language != "Unknown" {
		key, p, _, err := r.profiles.GetOrCreate(from)
		if err == nil && p.DetectedLanguage != language {
			if err := r.profiles.SetDetectedLanguage(key, language); err != nil {
				r.logger.Warn("language update failed", "identity", key, "error", err)
			}
		}
	}

	r.logger.Debug("voice note transcribed", "from", from, "language", language, "chars", len(text))
	return text
}

// replyAudio synthesizes the answer, parks the file under the media
// dir, delivers its public URL, and schedules removal after the
// retention window. Runs detached; failures are logged only.
func (r *Runner) replyAudio(to, answer string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	audio, err := r.synthesizer.Synthesize(ctx, answer)
	if err != nil {
		r.logger.Error("speech synthesis failed", "to", to, "error", err)
		return
	}

	name := uuid.NewString() + ".mp3"
	path := filepath.Join(r.mediaDir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		r.logger.Error("write synthesized audio", "path", path, "error", err)
		return
	}

	time.AfterFunc(r.retention, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("expire synthesized audio", "path", path, "error", err)
		}
	})

	mediaURL := r.publicURL + "/audio/" + name
	if err := r.gateway.DeliverMedia(ctx, to, mediaURL); err != nil {
		r.logger.Error("audio reply delivery failed", "to", to, "error", err)
		return
	}
	r.logger.Info("audio reply sent", "to", to, "file", name)
}
