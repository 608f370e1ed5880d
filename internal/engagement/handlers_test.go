package engagement

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosoxd3/f90-music/internal/storage"
)

func newTestRouter() (*Store, http.Handler) {
	s := NewStore(storage.NewMemStore(), NewBus())
	return s, s.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleRating(t *testing.T) {
	s, r := newTestRouter()

	w := doJSON(t, r, "PUT", "/tracks/vid1/rating", map[string]int{"rating": 4})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, s.Rating("vid1"))

	w = doJSON(t, r, "GET", "/tracks/vid1/rating", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, float64(4), got["rating"])

	t.Run("out of range", func(t *testing.T) {
		for _, v := range []int{0, 6, -1} {
			w := doJSON(t, r, "PUT", "/tracks/vid1/rating", map[string]int{"rating": v})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
		assert.Equal(t, 4, s.Rating("vid1"))
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/tracks/vid1/rating", bytes.NewBufferString("nope"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleLike(t *testing.T) {
	s, r := newTestRouter()

	w := doJSON(t, r, "POST", "/tracks/vid1/like", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"liked":true`)
	assert.True(t, s.IsLiked("vid1"))

	w = doJSON(t, r, "POST", "/tracks/vid1/like", nil)
	assert.Contains(t, w.Body.String(), `"liked":false`)

	w = doJSON(t, r, "GET", "/tracks/vid1/like", nil)
	assert.Contains(t, w.Body.String(), `"liked":false`)
}

func TestHandleComments(t *testing.T) {
	_, r := newTestRouter()

	w := doJSON(t, r, "POST", "/tracks/vid1/comments", map[string]string{"text": "great track", "author": "sam"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/tracks/vid1/comments", map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "GET", "/tracks/vid1/comments", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Items []Comment `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "great track", got.Items[0].Text)
	assert.Equal(t, "sam", got.Items[0].Author)
}

func TestHandleSummary(t *testing.T) {
	s, r := newTestRouter()
	s.SetRating("vid1", 5)
	s.ToggleLike("vid1")

	w := doJSON(t, r, "GET", "/tracks/vid1/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 5, got.Rating)
	assert.True(t, got.Liked)
}

func TestHandlePlayerState(t *testing.T) {
	_, r := newTestRouter()

	w := doJSON(t, r, "GET", "/player/state", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"volume":0.7`)

	w = doJSON(t, r, "PUT", "/player/state", PlayerState{Volume: 0.4, Shuffled: true})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "PUT", "/player/state", PlayerState{Volume: 1.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "GET", "/player/state", nil)
	assert.Contains(t, w.Body.String(), `"volume":0.4`)
}

func TestHandleRecent(t *testing.T) {
	_, r := newTestRouter()

	w := doJSON(t, r, "POST", "/player/recent", map[string]string{"trackId": "vid1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", "/player/recent", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "GET", "/player/recent", nil)
	var got struct {
		Items []RecentEntry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "vid1", got.Items[0].TrackID)
}
