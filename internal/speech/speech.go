// Package speech provides the daemon's speech conversion contracts:
// text to audio for outbound voice replies, and audio to text (with
// language identification) for inbound voice messages.
package speech

import "context"

// Synthesizer converts reply text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Transcriber converts an audio clip into its detected language and a
// word-for-word transcription.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (language, text string, err error)
}
