package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cityguide/cityguided/internal/profile"
)

func (r *Registry) interestTool() *Tool {
	return &Tool{
		Name: "InterestTool",
		Description: "Manage the user's personal likes, dislikes, and travel preferences. " +
			"This tool updates the user's profile to personalize future recommendations. " +
			"Use this when the user explicitly states they 'like', 'dislike', 'want to add', 'want to remove', or 'are interested in' something specific.\n" +
			"Format: 'interest|action|location'\n" +
			"Example: 'art galleries|add_like|Paris'\n" +
			"interest: (e.g., 'museums', 'street food', 'hiking', 'nightlife')\n" +
			"action: (string, required) Must be one of: 'add_like', 'add_dislike', or 'remove'\n" +
			"location: (e.g., 'Barcelona', 'Singapore') - ALWAYS provide a specific city if relevant to the interest",
		Spec: []Field{
			{Name: "interest"},
			{Name: "action", Default: "add_like"},
			{Name: "location", Default: "current location"},
		},
		Handler: r.handleInterest,
	}
}

func (r *Registry) handleInterest(ctx context.Context, call *Call) (string, error) {
	interest := call.Args.String("interest")
	if interest == "" {
		return "I need an interest to work with. Try something like 'art galleries|add_like|Paris'.", nil
	}

	action := call.Args.String("action")
	location := resolveLocation(call, call.Args.String("location"))

	var message string
	interests, err := r.deps.Profiles.ModifyInterests(call.Identity, func(i *profile.Interests) bool {
		switch action {
		case "add_like":
			if slices.Contains(i.Likes, interest) {
				message = fmt.Sprintf("'%s' is already in your likes", interest)
				return false
			}
			i.Likes = append(i.Likes, interest)
			message = fmt.Sprintf("Added '%s' to your likes", interest)
			return true

		case "add_dislike":
			if slices.Contains(i.Dislikes, interest) {
				message = fmt.Sprintf("'%s' is already in your dislikes", interest)
				return false
			}
			i.Dislikes = append(i.Dislikes, interest)
			message = fmt.Sprintf("Added '%s' to your dislikes", interest)
			return true

		case "remove":
			if idx := slices.Index(i.Likes, interest); idx >= 0 {
				i.Likes = slices.Delete(i.Likes, idx, idx+1)
				message = fmt.Sprintf("Removed '%s' from your likes", interest)
				return true
			}
			if idx := slices.Index(i.Dislikes, interest); idx >= 0 {
				i.Dislikes = slices.Delete(i.Dislikes, idx, idx+1)
				message = fmt.Sprintf("Removed '%s' from your dislikes", interest)
				return true
			}
			message = fmt.Sprintf("'%s' not found in your preferences", interest)
			return false

		default:
			return false
		}
	})
	if err != nil {
		return "", fmt.Errorf("update interests: %w", err)
	}
	if message == "" {
		return "Invalid action. Use 'add_like', 'add_dislike', or 'remove'", nil
	}

	prompt := fmt.Sprintf(`You are a %[1]s travel expert who understands how different interests connect and what's available locally.

Based on the user's interest in '%[2]s', suggest 3-5 related interests they might enjoy in %[1]s.

Current likes: %[3]s
Current dislikes: %[4]s
Location: %[1]s

Provide brief explanations for each suggestion, focusing on what's available in %[1]s.`,
		location, interest,
		strings.Join(interests.Likes, ", "),
		strings.Join(interests.Dislikes, ", "),
	)

	suggestions, err := r.deps.Engine.Complete(ctx, prompt)
	if err != nil {
		return message, nil
	}

	return fmt.Sprintf("%s\n\nRelated interests you might enjoy in %s:\n%s", message, location, suggestions), nil
}
