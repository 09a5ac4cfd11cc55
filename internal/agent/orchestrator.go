// Package agent implements the per-turn orchestration loop: build the
// decision prompt, ask the completion engine once, dispatch a tool if
// one was requested, and phrase the final answer.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cityguide/cityguided/internal/llm"
	"github.com/cityguide/cityguided/internal/prompts"
	"github.com/cityguide/cityguided/internal/tools"
)

// TurnState is the immutable per-request state threaded through one
// orchestrator pass. It is built by the session runner and never
// persisted directly.
type TurnState struct {
	Identity         string // normalized identity key
	Message          string // the incoming user message
	Location         string
	Mood             string
	ChatHistory      string // rendered transcript
	DetectedLanguage string
}

// Orchestrator runs one decision/dispatch/finalize pass per turn.
type Orchestrator struct {
	engine   llm.Engine
	registry *tools.Registry
	logger   *slog.Logger
}

// New creates an orchestrator.
func New(engine llm.Engine, registry *tools.Registry, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		engine:   engine,
		registry: registry,
		logger:   logger,
	}
}

// Run executes a single pass and returns the turn's answer. The pass
// makes at most two engine calls: one to decide, and one to finalize
// around a tool result. Tool-level failures are absorbed into the
// answer text; Run itself fails only when the engine is unreachable
// for the decision call.
func (o *Orchestrator) Run(ctx context.Context, state *TurnState) (string, error) {
	decisionPrompt := prompts.Decision(prompts.DecisionInput{
		Location:    state.Location,
		Mood:        state.Mood,
		ChatHistory: state.ChatHistory,
		Catalog:     o.registry.Catalog(),
		Message:     state.Message,
	})

	response, err := o.engine.Complete(ctx, decisionPrompt)
	if err != nil {
		return "", fmt.Errorf("decision completion: %w", err)
	}

	action, ok := ParseAction(response)
	if !ok {
		// No action requested: the first response is the answer.
		return response, nil
	}

	tool, found := o.registry.Get(action.Tool)
	if !found {
		o.logger.Warn("engine requested unknown tool", "tool", action.Tool, "identity", state.Identity)
		return fmt.Sprintf("I tried to use a tool called %q, but I don't have one by that name. Could you rephrase your request?", action.Tool), nil
	}

	o.logger.Info("dispatching tool",
		"tool", action.Tool,
		"identity", state.Identity,
		"location", state.Location,
	)

	result := o.registry.Invoke(ctx, tool, action.Input, &tools.Call{
		Identity: state.Identity,
		Location: state.Location,
		Mood:     state.Mood,
	})

	final, err := o.engine.Complete(ctx, prompts.Finalize(decisionPrompt, action.Tool, action.Input, result))
	if err != nil {
		// The tool already did its work; hand its result over rather
		// than losing the turn to a phrasing failure.
		o.logger.Warn("finalize completion failed", "tool", action.Tool, "error", err)
		return result, nil
	}
	return final, nil
}
