package prompts

import "fmt"

// finalizeTemplate asks the engine to phrase a tool's raw result into
// the user-facing reply. The result must appear verbatim: a summary of
// an itinerary or a weather report is useless to the user.
const finalizeTemplate = `%s

Action: %s
Action Input: %s
Observation: %s

Now provide your final response to the user.

IMPORTANT:
- DO NOT summarize or say "see the above result".
- DIRECTLY INCLUDE the full tool output in your reply, as if you wrote it yourself.
- You are CityGuide.AI - speak in your usual cheerful tone, but make sure the full tool output is visible to the user.`

// Finalize renders the second engine prompt of a tool turn: the
// original decision prompt plus the chosen action, its input, and the
// tool's result.
func Finalize(decisionPrompt, action, input, result string) string {
	return fmt.Sprintf(finalizeTemplate, decisionPrompt, action, input, result)
}
