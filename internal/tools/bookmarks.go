package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cityguide/cityguided/internal/profile"
)

func (r *Registry) bookmarkTool() *Tool {
	return &Tool{
		Name: "BookmarkTool",
		Description: "Save a specific place to the user's personal bookmarks with a note, category, and location. " +
			"Use this when the user expresses a desire to 'save', 'bookmark', 'remember', or 'add to favorites' a place.\n" +
			"Format: 'place|note|category|location'\n" +
			"Example: 'Eiffel Tower|Great for sunset views|landmark|Paris'\n" +
			"place: (e.g., 'Central Park', 'British Museum')\n" +
			"note: (a short personal note about the place)\n" +
			"category: (e.g., 'attraction', 'restaurant', 'park', 'museum', 'shop')\n" +
			"location: (e.g., 'New York', 'London') - ALWAYS provide a specific city",
		Spec: []Field{
			{Name: "place"},
			{Name: "note", Default: "No note provided."},
			{Name: "category", Default: "general"},
			{Name: "location", Default: "current location"},
		},
		Handler: r.handleBookmark,
	}
}

func (r *Registry) handleBookmark(ctx context.Context, call *Call) (string, error) {
	place := call.Args.String("place")
	if place == "" {
		return "I need a place name to bookmark. Try something like 'Eiffel Tower|Great for sunset views|landmark|Paris'.", nil
	}

	note := call.Args.String("note")
	category := call.Args.String("category")
	location := resolveLocation(call, call.Args.String("location"))

	dup, total, err := r.deps.Profiles.AddBookmark(call.Identity, profile.Bookmark{
		Place:     place,
		Note:      note,
		Category:  category,
		Location:  location,
		Timestamp: r.timestamp(),
	})
	if err != nil {
		return "", fmt.Errorf("add bookmark: %w", err)
	}
	if dup != nil {
		return fmt.Sprintf("'%s' in %s is already bookmarked with note: '%s'", place, location, dup.Note), nil
	}

	prompt := fmt.Sprintf(`You are a %[1]s local expert providing practical travel advice with insider knowledge.

Enhance this bookmark with useful local context for %[1]s:

Place: %[2]s
Location: %[1]s
User Note: %[3]s
Category: %[4]s

Provide brief, practical information about:
1. Best time to visit
2. What makes it special locally
3. Nearby attractions in %[1]s
4. Local tips or insider knowledge

Keep it concise and %[1]s-specific.`, location, place, note, category)

	enhancement, err := r.deps.Engine.Complete(ctx, prompt)
	if err != nil {
		// The bookmark is saved either way; the enrichment is a bonus.
		return fmt.Sprintf("'%s' bookmarked successfully in %s!\n\nYour note: %s\n\nTotal bookmarks: %d", place, location, note, total), nil
	}

	return fmt.Sprintf("'%s' bookmarked successfully in %s!\n\nYour note: %s\n\nLocal insights:\n%s\n\nTotal bookmarks: %d",
		place, location, note, enhancement, total), nil
}

func (r *Registry) getBookmarksTool() *Tool {
	return &Tool{
		Name: "GetBookmarksTool",
		Description: "Retrieve and list all of the user's saved bookmarks. " +
			"Optionally filter bookmarks by a specific location. " +
			"Use this when the user asks to 'see my bookmarks', 'what have I saved', or 'show my saved places in X city'.\n" +
			"Format: 'location' (optional, e.g., 'Paris') or leave empty for all bookmarks.\n" +
			"Example: 'London' (to get bookmarks only in London)\n" +
			"Example: '' (empty string to get all bookmarks from all locations)",
		Spec: []Field{
			{Name: "location"},
		},
		Handler: r.handleGetBookmarks,
	}
}

func (r *Registry) handleGetBookmarks(ctx context.Context, call *Call) (string, error) {
	location := call.Args.String("location")

	p, err := r.deps.Profiles.Get(call.Identity)
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}

	var filtered []profile.Bookmark
	header := "All your bookmarks:"
	if location != "" {
		for _, b := range p.Bookmarks {
			if strings.Contains(strings.ToLower(b.Location), strings.ToLower(location)) {
				filtered = append(filtered, b)
			}
		}
		header = fmt.Sprintf("Your bookmarks in %s:", location)
	} else {
		filtered = p.Bookmarks
	}

	if len(filtered) == 0 {
		suffix := ""
		if location != "" {
			suffix = " in " + location
		}
		return fmt.Sprintf("No bookmarks found%s. Start exploring and bookmark your favorite places!", suffix), nil
	}

	lines := []string{header}
	for _, b := range filtered {
		added := b.Timestamp
		if len(added) > 10 {
			added = added[:10]
		}
		lines = append(lines,
			fmt.Sprintf("\n%s (%s)", b.Place, b.Location),
			fmt.Sprintf("   %s", b.Note),
			fmt.Sprintf("   Category: %s", b.Category),
			fmt.Sprintf("   Added: %s", added),
		)
	}
	return strings.Join(lines, "\n"), nil
}
