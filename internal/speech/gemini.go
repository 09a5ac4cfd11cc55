package speech

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const transcribePrompt = "First, identify the language of this audio clip. " +
	"Then, provide a perfect word-for-word transcription. " +
	"Format your response as: 'Language: [Detected Language]\nTranscription: [Perfect Transcription]'"

// GeminiTranscriber implements Transcriber by sending the audio clip
// to the Gemini API together with a transcription instruction.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

// NewGeminiTranscriber creates a transcriber using an existing genai
// client.
func NewGeminiTranscriber(client *genai.Client, model string) *GeminiTranscriber {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiTranscriber{client: client, model: model}
}

// Transcribe returns the clip's detected language and transcription.
// When the response does not follow the expected two-line shape, the
// language comes back "Unknown" and the whole response text is used as
// the transcription.
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(transcribePrompt),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", "", fmt.Errorf("transcribe: %w", err)
	}

	language, text := ParseTranscription(resp.Text())
	return language, text, nil
}

// ParseTranscription extracts the language and transcription from the
// engine's 'Language: ... / Transcription: ...' reply shape. A reply
// without both markers yields language "Unknown" and the full text.
func ParseTranscription(full string) (string, string) {
	if !strings.Contains(full, "Language:") || !strings.Contains(full, "Transcription:") {
		return "Unknown", full
	}

	language := "Unknown"
	for _, line := range strings.Split(full, "\n") {
		if strings.HasPrefix(line, "Language:") {
			language = strings.TrimSpace(strings.TrimPrefix(line, "Language:"))
			break
		}
	}

	idx := strings.Index(full, "Transcription:")
	text := strings.TrimSpace(full[idx+len("Transcription:"):])
	return language, text
}
