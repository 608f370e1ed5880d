package engagement

import "time"

// Player session state shares the engagement persistence layer. Playback
// itself is simulated client-side; only the knobs survive a reload.
const (
	keyPlayerState    = "player-state"
	keyCurrentTrack   = "current-track"
	keyRecentlyPlayed = "recently-played"

	maxRecentlyPlayed = 50
	// A saved current track is only restored within this window.
	currentTrackMaxAge = 24 * time.Hour
)

type PlayerState struct {
	Volume    float64 `json:"volume"`
	Shuffled  bool    `json:"isShuffled"`
	Repeating bool    `json:"isRepeating"`
}

type currentTrack struct {
	TrackID   string `json:"trackId"`
	Index     int    `json:"index"`
	Timestamp int64  `json:"timestamp"`
}

type RecentEntry struct {
	TrackID  string `json:"trackId"`
	PlayedAt int64  `json:"playedAt"`
}

func (s *Store) SavePlayerState(st PlayerState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.back.Set(keyPlayerState, st)
}

// PlayerState returns the saved session state, defaulting the volume when
// nothing usable is stored.
func (s *Store) PlayerState() PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := PlayerState{Volume: 0.7}
	var saved PlayerState
	if s.back.Get(keyPlayerState, &saved) {
		st = saved
	}
	return st
}

func (s *Store) SaveCurrentTrack(trackID string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.back.Set(keyCurrentTrack, currentTrack{
		TrackID:   trackID,
		Index:     index,
		Timestamp: s.now().UnixMilli(),
	})
}

// CurrentTrack returns the last loaded track if it was saved recently
// enough to be worth restoring.
func (s *Store) CurrentTrack() (trackID string, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur currentTrack
	if !s.back.Get(keyCurrentTrack, &cur) || cur.TrackID == "" {
		return "", 0, false
	}
	if s.now().UnixMilli()-cur.Timestamp > currentTrackMaxAge.Milliseconds() {
		return "", 0, false
	}
	return cur.TrackID, cur.Index, true
}

// AddRecentlyPlayed moves a track to the front of the recently-played
// list, deduplicated by id and capped at 50 entries.
func (s *Store) AddRecentlyPlayed(trackID string) {
	if trackID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var recent []RecentEntry
	s.back.Get(keyRecentlyPlayed, &recent)

	out := make([]RecentEntry, 0, len(recent)+1)
	out = append(out, RecentEntry{TrackID: trackID, PlayedAt: s.now().UnixMilli()})
	for _, e := range recent {
		if e.TrackID != trackID {
			out = append(out, e)
		}
	}
	if len(out) > maxRecentlyPlayed {
		out = out[:maxRecentlyPlayed]
	}
	s.back.Set(keyRecentlyPlayed, out)
}

func (s *Store) RecentlyPlayed() []RecentEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	recent := []RecentEntry{}
	s.back.Get(keyRecentlyPlayed, &recent)
	if recent == nil {
		recent = []RecentEntry{}
	}
	return recent
}
