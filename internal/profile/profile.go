// Package profile defines the per-user profile record and its store.
package profile

// Turn roles, matching the transcript wire names used by the prompt
// renderer ("system", "human", "ai").
const (
	RoleSystem = "system"
	RoleHuman  = "human"
	RoleAI     = "ai"
)

// Turn is one role-tagged message in a user's transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Bookmark is a saved place. Uniqueness is enforced at write time by
// case-insensitive (place, location) match.
type Bookmark struct {
	Place     string `json:"place"`
	Note      string `json:"note"`
	Category  string `json:"category"`
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"` // RFC 3339
}

// StoryEntry is one generated narrative, append-only.
type StoryEntry struct {
	Story       string   `json:"story"`
	Locations   []string `json:"locations"`
	Theme       string   `json:"theme"`
	Perspective string   `json:"perspective"`
	Location    string   `json:"location"`
	Timestamp   string   `json:"timestamp"` // RFC 3339
}

// PlanPreferences are the inputs a plan was generated from.
type PlanPreferences struct {
	TimeSlot  string `json:"time_slot"`
	Interests string `json:"interests"`
}

// Itinerary is the user's current day plan. Each new plan overwrites
// the previous one; at most one is live per user.
type Itinerary struct {
	Itinerary   string          `json:"itinerary"`
	Mood        string          `json:"mood"`
	Location    string          `json:"location"`
	Date        string          `json:"date"` // RFC 3339
	Preferences PlanPreferences `json:"preferences"`
}

// Interests holds the user's travel preferences. Likes and dislikes
// are deduplicated by exact case-sensitive match.
type Interests struct {
	Likes           []string `json:"likes"`
	Dislikes        []string `json:"dislikes"`
	VisitedPlaces   []string `json:"visited_places"`
	PreferredTime   string   `json:"preferred_time"`
	BudgetRange     string   `json:"budget_range"`
	CurrentLocation string   `json:"current_location"`
}

// Profile is one user's full record. Exactly one exists per normalized
// identity key; it is created on first contact with all-default fields
// and never deleted by this daemon.
type Profile struct {
	PhoneNumber      string       `json:"phone_number"`
	Name             string       `json:"name"`
	Bookmarks        []Bookmark   `json:"bookmarks"`
	Interests        Interests    `json:"interests"`
	CurrentPlan      *Itinerary   `json:"current_plan,omitempty"`
	StoryHistory     []StoryEntry `json:"story_history"`
	DetectedLanguage string       `json:"detected_language"`
	ChatHistory      []Turn       `json:"chat_history"`
}

// New returns a default profile for a normalized identity key.
func New(key string) *Profile {
	return &Profile{
		PhoneNumber: key,
		Interests: Interests{
			PreferredTime: "morning",
			BudgetRange:   "moderate",
		},
		DetectedLanguage: "Unknown",
	}
}
