package tools

import (
	"context"
	"fmt"
	"strings"
)

func (r *Registry) userProfileTool() *Tool {
	return &Tool{
		Name: "GetUserProfileTool",
		Description: "Retrieve and display the user's comprehensive travel profile, " +
			"including their interests, saved bookmarks, story history, and current plan details. " +
			"Optionally filter profile data to be specific to a given location. " +
			"Use this when the user asks to 'see my profile', 'my preferences', 'my saved data', or 'what do you know about me'.\n" +
			"Format: 'location' (optional, e.g., 'London') or leave empty for a general profile.\n" +
			"Example: 'Delhi' (to get profile data specific to Delhi)\n" +
			"Example: '' (empty string to get overall profile data)",
		Spec: []Field{
			{Name: "location"},
		},
		Handler: r.handleUserProfile,
	}
}

func (r *Registry) handleUserProfile(ctx context.Context, call *Call) (string, error) {
	// The location may still be empty after resolution (new user, no
	// known current location); that renders the general profile.
	location := resolveLocation(call, call.Args.String("location"))

	p, err := r.deps.Profiles.Get(call.Identity)
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}

	cities := make(map[string]struct{})
	for _, b := range p.Bookmarks {
		cities[b.Location] = struct{}{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Your Travel Profile:

Interests:
    Likes: %s
    Dislikes: %s
    Preferred time: %s
    Budget range: %s
    Language: %s
`,
		strings.Join(p.Interests.Likes, ", "),
		strings.Join(p.Interests.Dislikes, ", "),
		p.Interests.PreferredTime,
		p.Interests.BudgetRange,
		p.DetectedLanguage,
	)

	if location != "" {
		var locationBookmarks, locationStories int
		for _, bm := range p.Bookmarks {
			if strings.Contains(strings.ToLower(bm.Location), strings.ToLower(location)) {
				locationBookmarks++
			}
		}
		for _, s := range p.StoryHistory {
			if strings.Contains(strings.ToLower(s.Location), strings.ToLower(location)) {
				locationStories++
			}
		}
		hasPlan := "No"
		if p.CurrentPlan != nil && strings.EqualFold(p.CurrentPlan.Location, location) {
			hasPlan = "Yes"
		}

		fmt.Fprintf(&b, `
In %s:
    Bookmarks: %d
    Stories created: %d
    Current plan: %s
`,
			location,
			locationBookmarks,
			locationStories,
			hasPlan,
		)
	}

	hasAnyPlan := "No"
	if p.CurrentPlan != nil {
		hasAnyPlan = "Yes"
	}
	fmt.Fprintf(&b, `
Overall:
    Total bookmarks: %d
    Total stories: %d
    Cities explored: %d
    Current plan: %s`,
		len(p.Bookmarks),
		len(p.StoryHistory),
		len(cities),
		hasAnyPlan,
	)

	return b.String(), nil
}
