package tools

import (
	"context"
	"fmt"
	"strings"
)

func (r *Registry) poiTool() *Tool {
	return &Tool{
		Name: "POITool",
		Description: "Recommend interesting points of interest (POIs), attractions, or activities in a given city, " +
			"optionally focusing only on 'hidden gems' or local secrets. " +
			"Use this when the user asks for 'recommendations', 'places to visit', 'things to do', 'hidden gems', " +
			"'best restaurants', or similar discovery queries.\n" +
			"Format: 'interest_type|location|hidden_gems_only'\n" +
			"Example: 'local food|Tokyo|true' (for hidden food gems in Tokyo)\n" +
			"interest_type: (e.g., 'food', 'museums', 'nature', 'nightlife', 'shopping', 'historical sites')\n" +
			"location: (e.g., 'Kyoto', 'Rome') - ALWAYS provide a specific city\n" +
			"hidden_gems_only: (boolean, 'true' or 'false'. Use 'true' if user explicitly asks for 'hidden' or 'local' spots)",
		Spec: []Field{
			{Name: "interest_type"},
			{Name: "location", Default: "current location"},
			{Name: "hidden_gems_only", Kind: KindBool, Default: "false"},
		},
		Handler: r.handlePOI,
	}
}

func (r *Registry) handlePOI(ctx context.Context, call *Call) (string, error) {
	interestType := call.Args.String("interest_type")
	if interestType == "" {
		return "I need an interest to recommend for. Try something like 'local food|Tokyo|true'.", nil
	}

	location := resolveLocation(call, call.Args.String("location"))
	hiddenOnly := call.Args.Bool("hidden_gems_only")

	p, err := r.deps.Profiles.Get(call.Identity)
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}

	gemInstruction := "Include both popular attractions and hidden gems"
	if hiddenOnly {
		gemInstruction = "Focus ONLY on hidden gems, local secrets, and off-the-beaten-path places"
	}

	prompt := fmt.Sprintf(`You are a %[1]s local who knows the city's best-kept secrets, authentic experiences, and local hotspots.

Recommend places in %[1]s for someone interested in %[2]s:

Location: %[1]s
Interest Type: %[2]s
Hidden Gems Focus: %[3]t

User Profile:
- Likes: %[4]s
- Dislikes: %[5]s
- Already visited in %[1]s: %[6]s
- Budget preference: %[7]s

Instructions: %[8]s

Provide 3-4 recommendations with:
1. Place name and location within %[1]s
2. Brief description and why it's special
3. Best time to visit
4. Approximate cost/budget level
5. Local tips or insider knowledge

Focus on authentic, local experiences that match the user's interests.
Avoid places they've already visited.`,
		location, interestType, hiddenOnly,
		strings.Join(p.Interests.Likes, ", "),
		strings.Join(p.Interests.Dislikes, ", "),
		strings.Join(visitedIn(p.Interests.VisitedPlaces, location), ", "),
		p.Interests.BudgetRange,
		gemInstruction,
	)

	recommendations, err := r.deps.Engine.Complete(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("Sorry, I couldn't find %s recommendations in %s right now. Please try again later.", interestType, location), nil
	}

	return fmt.Sprintf("%s recommendations in %s:\n\n%s", titleCase(interestType), location, recommendations), nil
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
