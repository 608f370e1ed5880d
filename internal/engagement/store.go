// Package engagement owns per-profile ratings, likes and comments for
// tracks, persisted through the storage gateway. All state is local to
// one profile; there is no cross-device identity.
package engagement

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sosoxd3/f90-music/internal/storage"
)

// Persisted keys. These mirror the browser build's localStorage layout so
// an exported profile maps over 1:1.
const (
	keyRatings   = "track-ratings"
	keyComments  = "track-comments"
	keyFavorites = "favorite-tracks"

	maxCommentsPerTrack = 20
)

type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// Summary is the engagement decoration for one rendered track.
type Summary struct {
	TrackID       string  `json:"trackId"`
	Rating        int     `json:"rating"` // 0 = unrated
	AverageRating float64 `json:"averageRating"`
	Liked         bool    `json:"liked"`
	CommentCount  int     `json:"commentCount"`
}

type Store struct {
	mu   sync.Mutex
	back storage.Store
	bus  *Bus
	now  func() time.Time
}

func NewStore(back storage.Store, bus *Bus) *Store {
	return &Store{back: back, bus: bus, now: time.Now}
}

// Bus returns the change-event bus this store publishes to.
func (s *Store) Bus() *Bus { return s.bus }

func (s *Store) ratings() map[string]int {
	m := make(map[string]int)
	s.back.Get(keyRatings, &m)
	if m == nil {
		m = make(map[string]int)
	}
	return m
}

// SetRating records the profile's rating for a track, overwriting any
// previous value. Values outside 1..5 are ignored.
func (s *Store) SetRating(trackID string, rating int) {
	if rating < 1 || rating > 5 {
		return
	}
	s.mu.Lock()
	m := s.ratings()
	m[trackID] = rating
	s.back.Set(keyRatings, m)
	s.mu.Unlock()

	s.bus.Publish(Event{TrackID: trackID, Field: "rating", NewValue: rating})
}

// Rating returns the stored rating for a track, 0 when unrated.
func (s *Store) Rating(trackID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ratings()[trackID]
}

// AverageRating returns the profile's own rating when present, otherwise
// a stable pseudo-random value derived from the track id so cards always
// have something plausible to show.
func (s *Store) AverageRating(trackID string) float64 {
	if r := s.Rating(trackID); r > 0 {
		return float64(r)
	}
	avg := float64((hashCode(trackID)%5)+3) / 2 // 1.5 .. 3.5
	if avg < 1 {
		avg = 1
	}
	if avg > 5 {
		avg = 5
	}
	return avg
}

func (s *Store) favorites() []string {
	var f []string
	s.back.Get(keyFavorites, &f)
	return f
}

// ToggleLike flips the liked state for a track and returns the new state.
// Toggling twice restores the original state exactly.
func (s *Store) ToggleLike(trackID string) bool {
	s.mu.Lock()
	favs := s.favorites()
	liked := false
	idx := -1
	for i, id := range favs {
		if id == trackID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		favs = append(favs[:idx], favs[idx+1:]...)
	} else {
		favs = append(favs, trackID)
		liked = true
	}
	s.back.Set(keyFavorites, favs)
	s.mu.Unlock()

	s.bus.Publish(Event{TrackID: trackID, Field: "liked", NewValue: liked})
	return liked
}

func (s *Store) IsLiked(trackID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.favorites() {
		if id == trackID {
			return true
		}
	}
	return false
}

func (s *Store) comments() map[string][]Comment {
	m := make(map[string][]Comment)
	s.back.Get(keyComments, &m)
	if m == nil {
		m = make(map[string][]Comment)
	}
	return m
}

// AddComment prepends a comment for a track, keeping only the newest 20.
// Empty or whitespace-only text is ignored.
func (s *Store) AddComment(trackID, text, author string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if author = strings.TrimSpace(author); author == "" {
		author = "anonymous"
	}

	s.mu.Lock()
	m := s.comments()
	list := append([]Comment{{
		ID:        uuid.New().String(),
		Text:      text,
		Author:    author,
		Timestamp: s.now().UnixMilli(),
	}}, m[trackID]...)
	if len(list) > maxCommentsPerTrack {
		list = list[:maxCommentsPerTrack]
	}
	m[trackID] = list
	s.back.Set(keyComments, m)
	count := len(list)
	s.mu.Unlock()

	s.bus.Publish(Event{TrackID: trackID, Field: "comments", NewValue: count})
}

// Comments returns a track's comments, newest first.
func (s *Store) Comments(trackID string) []Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.comments()[trackID]
	if list == nil {
		list = []Comment{}
	}
	return list
}

func (s *Store) Summary(trackID string) Summary {
	return Summary{
		TrackID:       trackID,
		Rating:        s.Rating(trackID),
		AverageRating: s.AverageRating(trackID),
		Liked:         s.IsLiked(trackID),
		CommentCount:  len(s.Comments(trackID)),
	}
}

// hashCode reproduces the classic 31-based string hash the web build used
// for its stable rating fallback.
func hashCode(s string) int {
	var h int32
	for _, c := range s {
		h = (h << 5) - h + c
	}
	if h < 0 {
		h = -h
	}
	return int(h)
}
