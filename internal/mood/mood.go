// Package mood classifies the emotional tone of a user message. The
// classification feeds the decision prompt; it never fails a turn, so
// any engine problem degrades to Neutral.
package mood

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cityguide/cityguided/internal/llm"
)

// Neutral is the fallback mood.
const Neutral = "Neutral"

// moods are the recognized labels, matching the emotion set the
// classifier is asked to choose from.
var moods = []string{"Happy", "Sad", "Angry", "Fearful", "Disgusted", "Surprised", Neutral}

const promptPrefix = "Classify the dominant emotion of the following message. " +
	"Reply with exactly one word from this list: Happy, Sad, Angry, Fearful, Disgusted, Surprised, Neutral.\n\nMessage: "

// Classifier detects mood via a single completion call.
type Classifier struct {
	engine llm.Engine
	logger *slog.Logger
}

// NewClassifier creates a mood classifier.
func NewClassifier(engine llm.Engine, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{engine: engine, logger: logger}
}

// Detect returns one of the recognized mood labels, or Neutral when
// the text is empty, the engine fails, or the reply is not a known
// label.
func (c *Classifier) Detect(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return Neutral
	}

	reply, err := c.engine.Complete(ctx, promptPrefix+text)
	if err != nil {
		c.logger.Warn("mood detection failed", "error", err)
		return Neutral
	}

	reply = strings.TrimSpace(reply)
	for _, m := range moods {
		if strings.EqualFold(reply, m) {
			return m
		}
	}
	return Neutral
}
