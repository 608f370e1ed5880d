package engagement

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router exposes the store over HTTP so every rendered surface (grid,
// list, detail page) reads and writes the same per-profile state.
func (s *Store) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/tracks/{trackID}", func(r chi.Router) {
		r.Get("/summary", s.handleGetSummary)
		r.Get("/rating", s.handleGetRating)
		r.Put("/rating", s.handleSetRating)
		r.Get("/like", s.handleGetLike)
		r.Post("/like", s.handleToggleLike)
		r.Get("/comments", s.handleGetComments)
		r.Post("/comments", s.handleAddComment)
	})

	r.Route("/player", func(r chi.Router) {
		r.Get("/state", s.handleGetPlayerState)
		r.Put("/state", s.handleSetPlayerState)
		r.Get("/recent", s.handleGetRecent)
		r.Post("/recent", s.handleAddRecent)
	})

	return r
}

func (s *Store) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Summary(chi.URLParam(r, "trackID")))
}

func (s *Store) handleGetRating(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")
	writeJSON(w, http.StatusOK, map[string]any{
		"trackId":       trackID,
		"rating":        s.Rating(trackID),
		"averageRating": s.AverageRating(trackID),
	})
}

func (s *Store) handleSetRating(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")

	var body struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	s.SetRating(trackID, body.Rating)
	writeJSON(w, http.StatusOK, map[string]any{
		"trackId": trackID,
		"rating":  body.Rating,
	})
}

func (s *Store) handleGetLike(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")
	writeJSON(w, http.StatusOK, map[string]any{
		"trackId": trackID,
		"liked":   s.IsLiked(trackID),
	})
}

func (s *Store) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")
	liked := s.ToggleLike(trackID)
	writeJSON(w, http.StatusOK, map[string]any{
		"trackId": trackID,
		"liked":   liked,
	})
}

func (s *Store) handleGetComments(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")
	writeJSON(w, http.StatusOK, map[string]any{
		"trackId": trackID,
		"items":   s.Comments(trackID),
	})
}

func (s *Store) handleAddComment(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")

	var body struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	before := len(s.Comments(trackID))
	s.AddComment(trackID, body.Text, body.Author)
	items := s.Comments(trackID)
	if len(items) == before {
		// Store rejected the comment (blank text).
		writeError(w, http.StatusBadRequest, "comment text is required")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"trackId": trackID,
		"comment": items[0],
	})
}

func (s *Store) handleGetPlayerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.PlayerState())
}

func (s *Store) handleSetPlayerState(w http.ResponseWriter, r *http.Request) {
	var st PlayerState
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if st.Volume < 0 || st.Volume > 1 {
		writeError(w, http.StatusBadRequest, "volume must be between 0 and 1")
		return
	}
	s.SavePlayerState(st)
	writeJSON(w, http.StatusOK, st)
}

func (s *Store) handleGetRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.RecentlyPlayed()})
}

func (s *Store) handleAddRecent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TrackID string `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.TrackID == "" {
		writeError(w, http.StatusBadRequest, "trackId is required")
		return
	}
	s.AddRecentlyPlayed(body.TrackID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
