package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cityguide/cityguided/internal/profile"
)

func (r *Registry) storyModeTool() *Tool {
	return &Tool{
		Name: "StoryModeTool",
		Description: "Generate an engaging narrative story about visiting specific locations in a given city. " +
			"This tool creates creative travel narratives based on user-defined locations, theme, and perspective. " +
			"Use this when the user explicitly asks for a 'story', 'narrative', 'tale', or 'fiction' about places.\n" +
			"Format: 'location1,location2,location3|theme|perspective|city'\n" +
			"Example: 'Eiffel Tower,Louvre Museum|romantic|first person|Paris'\n" +
			"locations: (comma-separated list of specific places, e.g., 'Red Fort,India Gate')\n" +
			"theme: (e.g., 'adventure', 'historical', 'romantic', 'mystery', 'quirky', 'whimsical')\n" +
			"perspective: (e.g., 'first person', 'third person', 'tour guide', 'adventurer's log')\n" +
			"city: (e.g., 'London', 'Delhi') - ALWAYS provide a specific city where the story takes place",
		Spec: []Field{
			{Name: "locations", Kind: KindList},
			{Name: "theme", Default: "adventure"},
			{Name: "perspective", Default: "third person"},
			{Name: "city", Default: "current location"},
		},
		Handler: r.handleStoryMode,
	}
}

func (r *Registry) handleStoryMode(ctx context.Context, call *Call) (string, error) {
	locations := call.Args.List("locations")
	if len(locations) == 0 {
		return "I need at least one place for the story. Try something like 'Eiffel Tower,Louvre Museum|romantic|first person|Paris'.", nil
	}

	theme := call.Args.String("theme")
	perspective := call.Args.String("perspective")
	city := resolveLocation(call, call.Args.String("city"))

	p, err := r.deps.Profiles.Get(call.Identity)
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}

	prompt := fmt.Sprintf(`You are a master storyteller who knows %[1]s's history, culture, hidden stories, and local life intimately. Create immersive narratives that educate and entertain.

Create an engaging %[2]s story about visiting these locations in %[1]s:

City: %[1]s
Locations: %[3]s
Theme: %[2]s
Perspective: %[4]s

User Profile (for personalization):
- Likes: %[5]s
- Dislikes: %[6]s

Story Requirements:
1. Connect all locations in a logical sequence within %[1]s
2. Include local culture, history, and authentic details about %[1]s
3. Create vivid descriptions of each place
4. Make it engaging and immersive
5. Include practical details naturally (transportation, timing, local tips)
6. Use %[4]s perspective throughout
7. Incorporate local customs, food, and cultural elements

Length: 600-800 words
Style: Engaging, descriptive, with local insights and cultural authenticity`,
		city, theme,
		strings.Join(locations, ", "),
		perspective,
		strings.Join(p.Interests.Likes, ", "),
		strings.Join(p.Interests.Dislikes, ", "),
	)

	story, err := r.deps.Engine.Complete(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("Sorry, I couldn't write your %s story in %s right now. Please try again later.", theme, city), nil
	}

	if err := r.deps.Profiles.AddStory(call.Identity, profile.StoryEntry{
		Story:       story,
		Locations:   locations,
		Theme:       theme,
		Perspective: perspective,
		Location:    city,
		Timestamp:   r.timestamp(),
	}); err != nil {
		return "", fmt.Errorf("save story: %w", err)
	}

	return fmt.Sprintf("Your %s story in %s:\n\n%s", theme, city, story), nil
}
