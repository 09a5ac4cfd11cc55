// Package tools defines the capability catalog available to the
// orchestrator: a fixed registry of named tools, each with a
// positional pipe-delimited argument spec and a handler. The catalog
// is immutable after construction and renders deterministically into
// the decision prompt, so identical inputs always produce identical
// prompts.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cityguide/cityguided/internal/llm"
	"github.com/cityguide/cityguided/internal/lookup"
	"github.com/cityguide/cityguided/internal/profile"
)

// Call carries the per-turn context a handler may need beyond its
// decoded arguments.
type Call struct {
	Args     *Args
	Identity string // normalized identity key
	Location string // the turn's current location
	Mood     string
}

// Tool is one named capability.
type Tool struct {
	Name        string
	Description string
	Spec        []Field
	Handler     func(ctx context.Context, call *Call) (string, error)
}

// Deps are the external collaborators handlers work with.
type Deps struct {
	Profiles *profile.Store
	Engine   llm.Engine
	Lookup   *lookup.Client
	Clock    func() time.Time
	Logger   *slog.Logger
}

// Registry is the closed catalog of capabilities. Lookups are by
// exact, case-sensitive name.
type Registry struct {
	deps  Deps
	order []string
	tools map[string]*Tool
}

// NewRegistry builds the catalog with all built-in capabilities
// registered in their fixed order.
func NewRegistry(deps Deps) *Registry {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := &Registry{
		deps:  deps,
		tools: make(map[string]*Tool),
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) register(t *Tool) {
	if _, exists := r.tools[t.Name]; exists {
		panic(fmt.Sprintf("tools: duplicate registration of %q", t.Name))
	}
	r.order = append(r.order, t.Name)
	r.tools[t.Name] = t
}

func (r *Registry) registerBuiltins() {
	r.register(r.timeTool())
	r.register(r.dayPlannerTool())
	r.register(r.bookmarkTool())
	r.register(r.getBookmarksTool())
	r.register(r.poiTool())
	r.register(r.interestTool())
	r.register(r.storyModeTool())
	r.register(r.userProfileTool())
	r.register(r.liveEventsTool())
	r.register(r.weatherTool())
	r.register(r.newsTool())
	r.register(r.placesFinderTool())
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Catalog renders every tool's name and description in registration
// order, one entry per line, for embedding in the decision prompt.
func (r *Registry) Catalog() string {
	var b strings.Builder
	for _, name := range r.order {
		fmt.Fprintf(&b, "- %s: %s\n", name, r.tools[name].Description)
	}
	return b.String()
}

// Invoke decodes the raw argument string per the tool's spec and runs
// its handler. Handler failures never propagate: they are logged and
// absorbed into a user-facing apology so the turn always completes.
func (r *Registry) Invoke(ctx context.Context, t *Tool, rawInput string, call *Call) string {
	call.Args = Decode(rawInput, t.Spec)

	result, err := t.Handler(ctx, call)
	if err != nil {
		r.deps.Logger.Warn("tool handler failed",
			"tool", t.Name,
			"identity", call.Identity,
			"error", err,
		)
		return fmt.Sprintf("Sorry, something went wrong while using %s. Please try again later.", t.Name)
	}
	return result
}

// resolveLocation substitutes the turn's current location for an
// empty or placeholder location argument.
func resolveLocation(call *Call, value string) string {
	if value == "" || strings.EqualFold(value, "current location") {
		return call.Location
	}
	return value
}

// timestamp formats the registry clock's now as RFC 3339.
func (r *Registry) timestamp() string {
	return r.deps.Clock().Format(time.RFC3339)
}
