package gateway

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentAPI(t *testing.T) {
	p := &stubProxy{}
	p.handle = func(path string, body map[string]any) (int, string) {
		switch path {
		case "/channel":
			return 200, `{"items":[{"id":"UCtest","snippet":{"title":"F90"},"contentDetails":{"relatedPlaylists":{"uploads":"PLup"}}}]}`
		case "/channel-stats":
			return 200, `{"items":[{"snippet":{"title":"F90"},"statistics":{"viewCount":"9","subscriberCount":"2","videoCount":"1"}}]}`
		case "/playlist-items":
			return 200, playlistPage(2, 0, "")
		case "/search":
			return 200, `{"items":[{"id":{"videoId":"hit1"},"snippet":{"title":"Hit"}}]}`
		case "/videos":
			return 200, `{"items":[{"id":"a","snippet":{"title":"A"},"contentDetails":{"duration":"PT1M"}}]}`
		}
		return 404, `{}`
	}
	g := newTestGateway(t, p)
	router := g.Router()

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		return w
	}

	t.Run("channel", func(t *testing.T) {
		w := get("/channel")
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"uploadsPlaylistId":"PLup"`)
	})

	t.Run("channel stats", func(t *testing.T) {
		w := get("/channel/stats")
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"viewCount":"9"`)
	})

	t.Run("videos", func(t *testing.T) {
		w := get("/videos?maxResults=10")
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"vid0"`)
	})

	t.Run("playlist items", func(t *testing.T) {
		w := get("/playlists/PL9/items")
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"playlistId":"PL9"`)
	})

	t.Run("playlists aggregate", func(t *testing.T) {
		w := get("/playlists")
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"allItems"`)
	})

	t.Run("video details requires ids", func(t *testing.T) {
		assert.Equal(t, 400, get("/videos/details").Code)
		w := get("/videos/details?ids=a")
		require.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"PT1M"`)
	})

	t.Run("search requires q", func(t *testing.T) {
		assert.Equal(t, 400, get("/search").Code)
		w := get("/search?q=oud")
		require.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"hit1"`)
	})

	t.Run("status", func(t *testing.T) {
		w := get("/status")
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"degraded":false`)
	})
}
