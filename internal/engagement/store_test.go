package engagement

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosoxd3/f90-music/internal/storage"
)

func newTestStore() (*Store, *storage.MemStore) {
	back := storage.NewMemStore()
	return NewStore(back, NewBus()), back
}

func TestSetRating(t *testing.T) {
	s, _ := newTestStore()

	s.SetRating("vid1", 4)
	assert.Equal(t, 4, s.Rating("vid1"))

	// Overwrites, never appends.
	s.SetRating("vid1", 2)
	assert.Equal(t, 2, s.Rating("vid1"))

	// Out-of-range values are no-ops.
	s.SetRating("vid1", 0)
	s.SetRating("vid1", 6)
	assert.Equal(t, 2, s.Rating("vid1"))

	assert.Equal(t, 0, s.Rating("never-rated"))
}

func TestAverageRating(t *testing.T) {
	s, _ := newTestStore()

	// User rating wins.
	s.SetRating("vid1", 5)
	assert.Equal(t, 5.0, s.AverageRating("vid1"))

	// Fallback is stable and in range.
	a := s.AverageRating("vid2")
	b := s.AverageRating("vid2")
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 1.0)
	assert.LessOrEqual(t, a, 5.0)
}

func TestToggleLikeIsInvolution(t *testing.T) {
	s, _ := newTestStore()

	assert.False(t, s.IsLiked("vid1"))
	assert.True(t, s.ToggleLike("vid1"))
	assert.True(t, s.IsLiked("vid1"))
	assert.False(t, s.ToggleLike("vid1"))
	assert.False(t, s.IsLiked("vid1"))
}

func TestToggleLikeKeepsOtherFavorites(t *testing.T) {
	s, _ := newTestStore()

	s.ToggleLike("a")
	s.ToggleLike("b")
	s.ToggleLike("a")

	assert.False(t, s.IsLiked("a"))
	assert.True(t, s.IsLiked("b"))
}

func TestCommentBounding(t *testing.T) {
	s, _ := newTestStore()
	base := time.Now()
	i := 0
	s.now = func() time.Time { i++; return base.Add(time.Duration(i) * time.Second) }

	for n := 1; n <= 25; n++ {
		s.AddComment("vid1", fmt.Sprintf("comment %d", n), "tester")
	}

	got := s.Comments("vid1")
	require.Len(t, got, 20)
	// Newest first, five oldest dropped.
	assert.Equal(t, "comment 25", got[0].Text)
	assert.Equal(t, "comment 6", got[19].Text)
	for j := 1; j < len(got); j++ {
		assert.GreaterOrEqual(t, got[j-1].Timestamp, got[j].Timestamp)
	}
}

func TestAddCommentIgnoresBlank(t *testing.T) {
	s, _ := newTestStore()

	s.AddComment("vid1", "", "tester")
	s.AddComment("vid1", "   \t\n", "tester")
	assert.Empty(t, s.Comments("vid1"))

	s.AddComment("vid1", "  hello  ", "")
	got := s.Comments("vid1")
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
	assert.Equal(t, "anonymous", got[0].Author)
	assert.NotEmpty(t, got[0].ID)
}

func TestChangeNotificationFanOut(t *testing.T) {
	s, _ := newTestStore()

	// Two independent views subscribed to the same track.
	viewA, cancelA := s.Bus().Subscribe()
	viewB, cancelB := s.Bus().Subscribe()
	defer cancelA()
	defer cancelB()

	s.ToggleLike("vid1")

	for _, ch := range []<-chan Event{viewA, viewB} {
		select {
		case ev := <-ch:
			assert.Equal(t, "vid1", ev.TrackID)
			assert.Equal(t, "liked", ev.Field)
			assert.Equal(t, true, ev.NewValue)
		case <-time.After(time.Second):
			t.Fatal("view did not observe the like event")
		}
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	bus.Publish(Event{TrackID: "x", Field: "rating", NewValue: 1})

	_, open := <-ch
	assert.False(t, open)
}

func TestCorruptStorageTolerance(t *testing.T) {
	s, back := newTestStore()

	back.SetRaw(keyRatings, []byte("{definitely not json"))
	back.SetRaw(keyFavorites, []byte("]["))
	back.SetRaw(keyComments, []byte(`"wrong shape"`))

	assert.NotPanics(t, func() {
		assert.Equal(t, 0, s.Rating("vid1"))
		assert.False(t, s.IsLiked("vid1"))
		assert.Empty(t, s.Comments("vid1"))
	})

	// Writes recover from the corrupt state.
	s.SetRating("vid1", 3)
	assert.Equal(t, 3, s.Rating("vid1"))
}

func TestSummary(t *testing.T) {
	s, _ := newTestStore()

	s.SetRating("vid1", 4)
	s.ToggleLike("vid1")
	s.AddComment("vid1", "nice", "tester")

	got := s.Summary("vid1")
	assert.Equal(t, Summary{
		TrackID:       "vid1",
		Rating:        4,
		AverageRating: 4,
		Liked:         true,
		CommentCount:  1,
	}, got)
}

func TestPlayerState(t *testing.T) {
	s, back := newTestStore()

	// Defaults when nothing stored.
	st := s.PlayerState()
	assert.Equal(t, 0.7, st.Volume)
	assert.False(t, st.Shuffled)

	s.SavePlayerState(PlayerState{Volume: 0.3, Shuffled: true, Repeating: true})
	st = s.PlayerState()
	assert.Equal(t, PlayerState{Volume: 0.3, Shuffled: true, Repeating: true}, st)

	// Corrupt state falls back to defaults.
	back.SetRaw(keyPlayerState, []byte("{"))
	assert.Equal(t, 0.7, s.PlayerState().Volume)
}

func TestCurrentTrackRestoreWindow(t *testing.T) {
	s, _ := newTestStore()
	base := time.Now()
	s.now = func() time.Time { return base }

	_, _, ok := s.CurrentTrack()
	assert.False(t, ok)

	s.SaveCurrentTrack("vid9", 3)
	id, idx, ok := s.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, "vid9", id)
	assert.Equal(t, 3, idx)

	// Beyond 24h the saved track is stale.
	s.now = func() time.Time { return base.Add(25 * time.Hour) }
	_, _, ok = s.CurrentTrack()
	assert.False(t, ok)
}

func TestRecentlyPlayed(t *testing.T) {
	s, _ := newTestStore()

	for n := 0; n < 60; n++ {
		s.AddRecentlyPlayed(fmt.Sprintf("vid%d", n))
	}
	// Replaying an old track moves it to the front without duplicating.
	s.AddRecentlyPlayed("vid30")

	got := s.RecentlyPlayed()
	require.Len(t, got, 50)
	assert.Equal(t, "vid30", got[0].TrackID)
	seen := map[string]bool{}
	for _, e := range got {
		assert.False(t, seen[e.TrackID], "duplicate entry %s", e.TrackID)
		seen[e.TrackID] = true
	}
}
