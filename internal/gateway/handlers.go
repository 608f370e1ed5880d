package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Router is the content API the view layer reads. Every data route
// answers 200 with usable (possibly mock) data; only malformed requests
// are rejected.
func (g *Gateway) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/channel", g.handleChannel)
	r.Get("/channel/stats", g.handleChannelStats)
	r.Get("/videos", g.handleVideos)
	r.Get("/videos/details", g.handleVideoDetails)
	r.Get("/playlists", g.handlePlaylists)
	r.Get("/playlists/{playlistID}/items", g.handlePlaylistItems)
	r.Get("/search", g.handleSearch)
	r.Get("/status", g.handleStatus)

	return r
}

func (g *Gateway) handleChannel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, g.ChannelInfo(r.Context()))
}

func (g *Gateway) handleChannelStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, g.ChannelStatistics(r.Context()))
}

func (g *Gateway) handleVideos(w http.ResponseWriter, r *http.Request) {
	max := queryInt(r, "maxResults", pageSize)
	writeJSON(w, http.StatusOK, map[string]any{
		"items": g.AllChannelVideos(r.Context(), max),
	})
}

func (g *Gateway) handleVideoDetails(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}
	ids := strings.Split(raw, ",")
	writeJSON(w, http.StatusOK, map[string]any{
		"items": g.VideoDetails(r.Context(), ids),
	})
}

func (g *Gateway) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, all := g.ShowcasePlaylists(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"playlists": playlists,
		"allItems":  all,
	})
}

func (g *Gateway) handlePlaylistItems(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")
	max := queryInt(r, "maxResults", pageSize)
	writeJSON(w, http.StatusOK, map[string]any{
		"playlistId": playlistID,
		"items":      g.PlaylistItems(r.Context(), playlistID, max),
	})
}

func (g *Gateway) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	max := queryInt(r, "maxResults", 20)
	writeJSON(w, http.StatusOK, map[string]any{
		"query": q,
		"items": g.SearchChannelVideos(r.Context(), q, max),
	})
}

// handleStatus feeds the degraded-mode banner: content may be
// illustrative rather than live.
func (g *Gateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"degraded": g.Degraded(),
	})
}

func queryInt(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v > 0 {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
