package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cityguide/cityguided/internal/profile"
)

func (r *Registry) dayPlannerTool() *Tool {
	return &Tool{
		Name: "DayPlannerTool",
		Description: "Generate a customized day itinerary for any city based on user preferences. " +
			"This tool provides a structured plan with activities, time slots, and practical tips. " +
			"Use it when the user explicitly asks for a 'day plan', 'itinerary', or 'what to do in X city'.\n" +
			"Format: 'mood|time_slot|specific_interests|location'\n" +
			"Example: 'energetic|morning to evening|history and art museums|London'\n" +
			"mood: (e.g., 'relaxing', 'adventurous', 'neutral')\n" +
			"time_slot: (e.g., 'morning', 'afternoon', 'full day', '9am-6pm')\n" +
			"specific_interests: (e.g., 'food', 'shopping', 'nature', 'historical sites')\n" +
			"location: (e.g., 'Paris', 'Tokyo') - ALWAYS provide a specific city",
		Spec: []Field{
			{Name: "mood", Default: "neutral"},
			{Name: "time_slot", Default: "full day"},
			{Name: "specific_interests", Default: "local attractions"},
			{Name: "location", Default: "current location"},
		},
		Handler: r.handleDayPlanner,
	}
}

func (r *Registry) handleDayPlanner(ctx context.Context, call *Call) (string, error) {
	mood := call.Args.String("mood")
	timeSlot := call.Args.String("time_slot")
	interests := call.Args.String("specific_interests")
	location := resolveLocation(call, call.Args.String("location"))

	p, err := r.deps.Profiles.Get(call.Identity)
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}

	prompt := fmt.Sprintf(`You are a local travel expert for %[1]s who creates personalized itineraries. Provide practical, location-specific advice with local insights.

Create a detailed day itinerary for %[1]s with the following specifications:

Location: %[1]s
Mood: %[2]s
Time Slot: %[3]s
Specific Interests: %[4]s

User Profile:
- Likes: %[5]s
- Dislikes: %[6]s
- Previously visited in %[1]s: %[7]s
- Preferred time: %[8]s
- Budget range: %[9]s

Generate a structured itinerary with time slots and activities.
Include specific %[1]s locations, brief descriptions, and practical tips.
Focus on authentic local experiences and hidden gems when possible.
Consider local culture, weather, and transportation.

Format as a clear, readable itinerary with time slots and detailed descriptions.`,
		location, mood, timeSlot, interests,
		strings.Join(p.Interests.Likes, ", "),
		strings.Join(p.Interests.Dislikes, ", "),
		strings.Join(visitedIn(p.Interests.VisitedPlaces, location), ", "),
		p.Interests.PreferredTime,
		p.Interests.BudgetRange,
	)

	itinerary, err := r.deps.Engine.Complete(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("Sorry, I couldn't put together a day plan for %s right now. Please try again later.", location), nil
	}

	if err := r.deps.Profiles.SetPlan(call.Identity, profile.Itinerary{
		Itinerary: itinerary,
		Mood:      mood,
		Location:  location,
		Date:      r.timestamp(),
		Preferences: profile.PlanPreferences{
			TimeSlot:  timeSlot,
			Interests: interests,
		},
	}); err != nil {
		return "", fmt.Errorf("save plan: %w", err)
	}

	// The original kept the location change in memory only; persisting
	// it keeps later turns consistent after a restart.
	if _, err := r.deps.Profiles.ModifyInterests(call.Identity, func(i *profile.Interests) bool {
		if i.CurrentLocation == location {
			return false
		}
		i.CurrentLocation = location
		return true
	}); err != nil {
		return "", fmt.Errorf("update current location: %w", err)
	}

	return fmt.Sprintf("Here's your day plan for %s (from %s):\n\n%s", location, timeSlot, itinerary), nil
}

// visitedIn filters visited places to those mentioning the location.
func visitedIn(places []string, location string) []string {
	var matched []string
	for _, place := range places {
		if strings.Contains(strings.ToLower(place), strings.ToLower(location)) {
			matched = append(matched, place)
		}
	}
	return matched
}
