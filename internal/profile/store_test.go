package profile

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cityguide/cityguided/internal/docstore"
	"github.com/cityguide/cityguided/internal/identity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	docs, err := docstore.NewStore(filepath.Join(t.TempDir(), "users.db"), slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { docs.Close() })
	return NewStore(docs, slog.Default())
}

func TestGetOrCreateDefaults(t *testing.T) {
	store := newTestStore(t)

	key, p, created, err := store.GetOrCreate("+1 (415) 555-0100")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if !created {
		t.Error("first GetOrCreate() should create")
	}
	if key != "14155550100" {
		t.Errorf("key = %q, want 14155550100", key)
	}
	if p.Interests.PreferredTime != "morning" {
		t.Errorf("PreferredTime = %q, want morning", p.Interests.PreferredTime)
	}
	if p.Interests.BudgetRange != "moderate" {
		t.Errorf("BudgetRange = %q, want moderate", p.Interests.BudgetRange)
	}
	if p.DetectedLanguage != "Unknown" {
		t.Errorf("DetectedLanguage = %q, want Unknown", p.DetectedLanguage)
	}
}

func TestGetOrCreateIdempotent(t *testing.T) {
	store := newTestStore(t)

	key, _, _, err := store.GetOrCreate("14155550100")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetName(key, "Asha"); err != nil {
		t.Fatal(err)
	}

	_, p, created, err := store.GetOrCreate("+1 415 555 0100")
	if err != nil {
		t.Fatalf("second GetOrCreate() error = %v", err)
	}
	if created {
		t.Error("second GetOrCreate() should not create")
	}
	if p.Name != "Asha" {
		t.Errorf("Name = %q, want existing record's Asha", p.Name)
	}
}

func TestGetOrCreateRejectsBadIdentity(t *testing.T) {
	store := newTestStore(t)

	if _, _, _, err := store.GetOrCreate("12345"); !errors.Is(err, identity.ErrInvalid) {
		t.Errorf("GetOrCreate() error = %v, want identity.ErrInvalid", err)
	}
}

func TestAddBookmarkUniqueness(t *testing.T) {
	store := newTestStore(t)
	key, _, _, _ := store.GetOrCreate("14155550100")

	dup, total, err := store.AddBookmark(key, Bookmark{
		Place: "Eiffel Tower", Note: "sunset views", Category: "landmark", Location: "Paris",
	})
	if err != nil {
		t.Fatalf("AddBookmark() error = %v", err)
	}
	if dup != nil {
		t.Error("first AddBookmark() should not report a duplicate")
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}

	dup, total, err = store.AddBookmark(key, Bookmark{
		Place: "eiffel tower", Note: "other note", Category: "general", Location: "paris",
	})
	if err != nil {
		t.Fatalf("duplicate AddBookmark() error = %v", err)
	}
	if dup == nil {
		t.Fatal("case-insensitive duplicate should be reported")
	}
	if dup.Note != "sunset views" {
		t.Errorf("duplicate Note = %q, want stored note", dup.Note)
	}
	if total != 1 {
		t.Errorf("total after duplicate = %d, want 1", total)
	}
}

func TestModifyInterestsNoOpSkipsWrite(t *testing.T) {
	store := newTestStore(t)
	key, _, _, _ := store.GetOrCreate("14155550100")

	if _, err := store.ModifyInterests(key, func(i *Interests) bool {
		i.Likes = append(i.Likes, "museums")
		return true
	}); err != nil {
		t.Fatal(err)
	}

	// Report no change; likes appended in-memory must not persist.
	if _, err := store.ModifyInterests(key, func(i *Interests) bool {
		i.Likes = append(i.Likes, "should-not-persist")
		return false
	}); err != nil {
		t.Fatal(err)
	}

	p, err := store.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Interests.Likes) != 1 || p.Interests.Likes[0] != "museums" {
		t.Errorf("Likes = %v, want [museums]", p.Interests.Likes)
	}
}

func TestConcurrentInterestUpdatesSerialize(t *testing.T) {
	store := newTestStore(t)
	key, _, _, _ := store.GetOrCreate("14155550100")

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.ModifyInterests(key, func(in *Interests) bool {
				in.Likes = append(in.Likes, string(rune('a'+i)))
				return true
			})
			if err != nil {
				t.Errorf("ModifyInterests() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	p, err := store.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Interests.Likes) != n {
		t.Errorf("len(Likes) = %d after %d serialized updates, want %d", len(p.Interests.Likes), n, n)
	}
}

func TestSetPlanOverwrites(t *testing.T) {
	store := newTestStore(t)
	key, _, _, _ := store.GetOrCreate("14155550100")

	if err := store.SetPlan(key, Itinerary{Itinerary: "old", Location: "Paris"}); err != nil {
		t.Fatal(err)
	}
	if err := store.SetPlan(key, Itinerary{Itinerary: "new", Location: "Tokyo"}); err != nil {
		t.Fatal(err)
	}

	p, err := store.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if p.CurrentPlan == nil || p.CurrentPlan.Location != "Tokyo" {
		t.Errorf("CurrentPlan = %+v, want the Tokyo plan", p.CurrentPlan)
	}
}

func TestSaveTranscriptRoundTrip(t *testing.T) {
	store := newTestStore(t)
	key, _, _, _ := store.GetOrCreate("14155550100")

	turns := []Turn{
		{Role: RoleSystem, Content: "preamble"},
		{Role: RoleHuman, Content: "hello"},
		{Role: RoleAI, Content: "hi there"},
	}
	if err := store.SaveTranscript(key, turns); err != nil {
		t.Fatalf("SaveTranscript() error = %v", err)
	}

	got, err := store.Transcript(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len(transcript) = %d, want 3", len(got))
	}
	if got[1].Role != RoleHuman || got[1].Content != "hello" {
		t.Errorf("turn[1] = %+v, want human hello", got[1])
	}
}
