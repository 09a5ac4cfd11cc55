// Package llm provides the completion engine contract and its Gemini
// implementation. The engine is stateless from the daemon's point of
// view: one prompt in, one text response out. Everything that needs
// language generation (the orchestrator, tool handlers, mood and
// transcription passes) depends on the Engine interface, never on a
// concrete client.
package llm

import "context"

// Engine is an opaque text-completion service.
type Engine interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
