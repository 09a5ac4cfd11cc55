package profile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cityguide/cityguided/internal/docstore"
	"github.com/cityguide/cityguided/internal/identity"
)

// Store provides typed access to user profiles over the document
// store. Every mutating method performs its read-modify-write under a
// per-identity mutex, so concurrent turns for the same user cannot
// lose each other's field updates. Turns for different users do not
// contend.
type Store struct {
	docs   *docstore.Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a profile store over the given document store.
func NewStore(docs *docstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		docs:   docs,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing writes for one identity key.
func (s *Store) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// GetOrCreate resolves a raw contact string to a normalized identity
// key and returns that user's profile, creating a default record on
// first contact. Creation is idempotent: a concurrent or repeated
// create returns the already-stored record.
func (s *Store) GetOrCreate(rawIdentity string) (string, *Profile, bool, error) {
	key, err := identity.Normalize(rawIdentity)
	if err != nil {
		return "", nil, false, err
	}

	doc, err := json.Marshal(New(key))
	if err != nil {
		return "", nil, false, fmt.Errorf("encode default profile: %w", err)
	}

	raw, created, err := s.docs.Create(key, doc)
	if err != nil {
		return "", nil, false, err
	}

	p, err := decode(raw)
	if err != nil {
		return "", nil, false, fmt.Errorf("profile %s: %w", key, err)
	}
	if created {
		s.logger.Info("profile created", "identity", key)
	}
	return key, p, created, nil
}

// Get loads the profile for a normalized identity key.
func (s *Store) Get(key string) (*Profile, error) {
	raw, err := s.docs.Get(key)
	if err != nil {
		return nil, err
	}
	p, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", key, err)
	}
	return p, nil
}

func decode(raw []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &p, nil
}

// update runs one read-modify-write cycle for a single document field
// under the identity's lock. compute inspects the current profile and
// returns the new field value, or ok=false to skip the write.
func (s *Store) update(key, field string, compute func(p *Profile) (value any, ok bool, err error)) error {
	l := s.lockFor(key)
	l.Lock()
	defer l.Unlock()

	p, err := s.Get(key)
	if err != nil {
		return err
	}

	value, ok, err := compute(p)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return s.docs.SetField(key, field, value)
}

// AddBookmark appends a bookmark unless one with the same place and
// location (case-insensitive) already exists. It returns the existing
// duplicate (nil if the bookmark was added) and the bookmark count
// after the call.
func (s *Store) AddBookmark(key string, b Bookmark) (*Bookmark, int, error) {
	var dup *Bookmark
	var total int
	err := s.update(key, "bookmarks", func(p *Profile) (any, bool, error) {
		for i := range p.Bookmarks {
			if strings.EqualFold(p.Bookmarks[i].Place, b.Place) &&
				strings.EqualFold(p.Bookmarks[i].Location, b.Location) {
				dup = &p.Bookmarks[i]
				total = len(p.Bookmarks)
				return nil, false, nil
			}
		}
		updated := append(p.Bookmarks, b)
		total = len(updated)
		return updated, true, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return dup, total, nil
}

// AddStory appends a story entry to the user's history.
func (s *Store) AddStory(key string, e StoryEntry) error {
	return s.update(key, "story_history", func(p *Profile) (any, bool, error) {
		return append(p.StoryHistory, e), true, nil
	})
}

// SetPlan replaces the user's current day plan.
func (s *Store) SetPlan(key string, plan Itinerary) error {
	return s.update(key, "current_plan", func(p *Profile) (any, bool, error) {
		return plan, true, nil
	})
}

// ModifyInterests applies fn to the user's interests under the
// identity lock. fn returns false to report a no-op, in which case
// nothing is written. The interests as seen by fn are returned either
// way so callers can render them.
func (s *Store) ModifyInterests(key string, fn func(*Interests) bool) (Interests, error) {
	var result Interests
	err := s.update(key, "interests", func(p *Profile) (any, bool, error) {
		changed := fn(&p.Interests)
		result = p.Interests
		return p.Interests, changed, nil
	})
	if err != nil {
		return Interests{}, err
	}
	return result, nil
}

// SetDetectedLanguage records the language detected from the user's
// voice messages.
func (s *Store) SetDetectedLanguage(key, language string) error {
	return s.update(key, "detected_language", func(p *Profile) (any, bool, error) {
		return language, true, nil
	})
}

// SetName records the user's name.
func (s *Store) SetName(key, name string) error {
	return s.update(key, "name", func(p *Profile) (any, bool, error) {
		return name, true, nil
	})
}

// Transcript loads the user's full chat history.
func (s *Store) Transcript(key string) ([]Turn, error) {
	p, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	return p.ChatHistory, nil
}

// SaveTranscript persists the full transcript as one write.
func (s *Store) SaveTranscript(key string, turns []Turn) error {
	return s.update(key, "chat_history", func(p *Profile) (any, bool, error) {
		return turns, true, nil
	})
}
