// Package proxy is the stateless translator between the site's logical
// data operations and the YouTube Data API. It injects the server-held
// API key (never exposed to callers), clamps page sizes, and normalizes
// upstream failures, flagging quota exhaustion so the data gateway can
// switch to degraded mode.
package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// The YouTube API caps playlistItems/search pages at 50 results.
const maxPageSize = 50

const defaultAPIBase = "https://www.googleapis.com/youtube/v3"

type Server struct {
	apiKey    string
	apiBase   string
	channelID string // default channel for in-channel search
	http      *http.Client
	limiter   *rate.Limiter
	logger    *log.Logger
}

func NewServer(apiKey, apiBase, channelID string, logger *log.Logger) *Server {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Server{
		apiKey:    apiKey,
		apiBase:   strings.TrimSuffix(apiBase, "/"),
		channelID: channelID,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		// The daily quota is the scarce resource here, not bandwidth.
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		logger:  logger,
	}
}

// Router mounts every logical operation on the same relay handler; the
// path suffix participates in operation resolution.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	for _, p := range []string{"/channel", "/channel-stats", "/playlist-items", "/videos", "/search"} {
		r.Options(p, s.handleRelay)
		r.Post(p, s.handleRelay)
		r.Get(p, s.handleRelay)
	}
	return r
}

// Request is the operation-dependent body accepted on every route.
type Request struct {
	ChannelID  string   `json:"channelId"`
	PlaylistID string   `json:"playlistId"`
	VideoIDs   VideoIDs `json:"videoIds"`
	Q          string   `json:"q"`
	MaxResults int      `json:"maxResults"`
	Part       string   `json:"part"`
	PageToken  string   `json:"pageToken"`
}

// VideoIDs accepts either a single string or an array of strings.
type VideoIDs []string

func (v *VideoIDs) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*v = nil
		} else {
			*v = VideoIDs{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*v = VideoIDs(many)
	return nil
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	var req Request
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	resource, params, ok := s.resolve(r.URL.Path, req)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required parameters"})
		return
	}

	if err := s.limiter.Wait(r.Context()); err != nil {
		s.writeFailure(w, 0, err.Error())
		return
	}

	params.Set("key", s.apiKey)
	upstreamURL := s.apiBase + resource + "?" + params.Encode()
	s.logger.Info("youtube request", "resource", resource, "params", redactKey(params))

	upReq, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstreamURL, nil)
	if err != nil {
		s.writeFailure(w, 0, err.Error())
		return
	}
	resp, err := s.http.Do(upReq)
	if err != nil {
		s.logger.Error("youtube request failed", "resource", resource, "err", err)
		s.writeFailure(w, 0, err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.writeFailure(w, 0, err.Error())
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("youtube error response", "resource", resource, "status", resp.StatusCode)
		s.writeFailure(w, resp.StatusCode, upstreamErrorMessage(body))
		return
	}

	// Pass the upstream payload through verbatim.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// resolve maps a route plus request fields onto an upstream resource and
// parameter set. The precedence order matches the serverless function the
// web client was written against.
func (s *Server) resolve(path string, req Request) (resource string, params url.Values, ok bool) {
	params = url.Values{}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}
	if maxResults > maxPageSize {
		maxResults = maxPageSize
	}

	switch {
	case strings.Contains(path, "/channel-stats") && req.ChannelID != "":
		params.Set("id", req.ChannelID)
		params.Set("part", "snippet,statistics,brandingSettings")
		return "/channels", params, true

	case strings.Contains(path, "/channel") && req.ChannelID != "":
		params.Set("id", req.ChannelID)
		params.Set("part", defaultPart(req.Part, "snippet,contentDetails,statistics,brandingSettings"))
		return "/channels", params, true

	case req.PlaylistID != "":
		params.Set("playlistId", req.PlaylistID)
		params.Set("maxResults", fmt.Sprint(maxResults))
		params.Set("part", defaultPart(req.Part, "snippet,contentDetails"))
		if strings.Contains(path, "/playlist-items") && req.PageToken != "" {
			params.Set("pageToken", req.PageToken)
		}
		return "/playlistItems", params, true

	case len(req.VideoIDs) > 0:
		params.Set("id", strings.Join(req.VideoIDs, ","))
		params.Set("part", defaultPart(req.Part, "snippet,contentDetails,statistics"))
		return "/videos", params, true

	case req.Q != "":
		params.Set("q", req.Q)
		params.Set("maxResults", fmt.Sprint(maxResults))
		params.Set("part", "snippet")
		params.Set("type", "video")
		if strings.Contains(path, "/search") {
			// In-channel search; fall back to the showcase channel.
			if req.ChannelID != "" {
				params.Set("channelId", req.ChannelID)
			} else if s.channelID != "" {
				params.Set("channelId", s.channelID)
			}
		}
		return "/search", params, true
	}

	return "", nil, false
}

func defaultPart(part, def string) string {
	if part == "" || part == "snippet" {
		return def
	}
	return part
}

// Failure is the normalized error body relayed to callers.
type Failure struct {
	Error         string `json:"error"`
	Details       string `json:"details"`
	QuotaExceeded bool   `json:"quotaExceeded"`
}

func (s *Server) writeFailure(w http.ResponseWriter, upstreamStatus int, details string) {
	status := upstreamStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, Failure{
		Error:         "Failed to fetch data from YouTube",
		Details:       details,
		QuotaExceeded: upstreamStatus == http.StatusForbidden,
	})
}

// upstreamErrorMessage digs the human-readable message out of a YouTube
// API error payload, falling back to the raw body.
func upstreamErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return msg
}

func redactKey(params url.Values) string {
	clone := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if k == "key" {
				v = "***"
			}
			clone.Add(k, v)
		}
	}
	return clone.Encode()
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
