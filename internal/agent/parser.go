package agent

import "strings"

// Action protocol markers. These two line prefixes are the wire format
// between the orchestrator and the completion engine: a response
// carrying both is a tool invocation request, anything else is a
// direct answer.
const (
	actionMarker = "Action:"
	inputMarker  = "Action Input:"
)

// Action is a parsed tool invocation request.
type Action struct {
	Tool  string // tool name after "Action:"
	Input string // raw argument string after "Action Input:"
}

// ParseAction scans an engine response line by line for the first
// "Action:" line and the first "Action Input:" line. The two searches
// are independent; the markers need not be adjacent. Only the first
// occurrence of each marker counts, so an echoed example later in the
// response cannot retrigger parsing. Returns ok=false when either
// marker is absent, which callers treat as "no action requested".
func ParseAction(response string) (Action, bool) {
	var action Action
	var haveTool, haveInput bool

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if !haveTool && strings.HasPrefix(trimmed, actionMarker) {
			action.Tool = strings.TrimSpace(strings.TrimPrefix(trimmed, actionMarker))
			haveTool = true
		}
		if !haveInput && strings.HasPrefix(trimmed, inputMarker) {
			action.Input = strings.TrimSpace(strings.TrimPrefix(trimmed, inputMarker))
			haveInput = true
		}
		if haveTool && haveInput {
			break
		}
	}

	if !haveTool || !haveInput {
		return Action{}, false
	}
	return action, true
}
