// Package gateway aggregates channel, playlist and video data from the
// YouTube proxy route. Results are cached for a fixed freshness window,
// paginated listings are merged into one collection, and every read
// operation degrades to deterministic mock data instead of returning an
// error, so callers never special-case data-loading failures. A quota
// exhaustion signal from the proxy puts the gateway into a sticky
// degraded mode for the rest of the session.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// Freshness window for cached results.
	cacheTTL = 5 * time.Minute
	// SweepInterval bounds cache memory between re-requests.
	SweepInterval = time.Minute
	// Upstream page cap; pagination requests pages of this size.
	pageSize = 50
)

var errDegraded = errors.New("gateway: degraded mode, network disabled")

type Config struct {
	// ProxyURL is the base of the same-origin proxy route,
	// e.g. "http://127.0.0.1:8080/api/youtube".
	ProxyURL string
	// ChannelID of the showcase channel.
	ChannelID string
	// FallbackPlaylistID is used when the uploads playlist cannot be
	// resolved from channel contentDetails.
	FallbackPlaylistID string
	// ShowcasePlaylistIDs are the curated playlists the site features.
	ShowcasePlaylistIDs []string
}

type Gateway struct {
	cfg    Config
	http   *http.Client
	cache  *memoryCache
	logger *log.Logger

	mu       sync.Mutex
	degraded bool
}

func New(cfg Config, logger *log.Logger) *Gateway {
	return &Gateway{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		cache:  newMemoryCache(cacheTTL),
		logger: logger,
	}
}

// Degraded reports whether the session has fallen back to mock-only data.
// The flag never resets within a session.
func (g *Gateway) Degraded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.degraded
}

func (g *Gateway) setDegraded() {
	g.mu.Lock()
	already := g.degraded
	g.degraded = true
	g.mu.Unlock()
	if !already {
		g.logger.Warn("quota exhausted, entering degraded mode for this session")
	}
}

// post performs one proxy call. In degraded mode it fails immediately
// without touching the network.
func (g *Gateway) post(ctx context.Context, path string, body map[string]any, out any) error {
	if g.Degraded() {
		return errDegraded
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.ProxyURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error         string `json:"error"`
			Details       string `json:"details"`
			QuotaExceeded bool   `json:"quotaExceeded"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.QuotaExceeded {
			g.setDegraded()
		}
		return fmt.Errorf("proxy status %d: %s", resp.StatusCode, failure.Details)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// ChannelInfo returns the showcase channel's metadata, including the id
// of its implicit uploads playlist.
func (g *Gateway) ChannelInfo(ctx context.Context) ChannelInfo {
	key := "channel_" + g.cfg.ChannelID
	if v, ok := g.cache.get(key); ok {
		return v.(ChannelInfo)
	}

	var resp channelsResponse
	err := g.post(ctx, "/channel", map[string]any{
		"channelId": g.cfg.ChannelID,
		"part":      "snippet,contentDetails,statistics,brandingSettings",
	}, &resp)
	if err != nil || len(resp.Items) == 0 {
		g.logFallback("channel info", err)
		return mockChannelInfo(g.cfg.ChannelID, g.cfg.FallbackPlaylistID)
	}

	it := resp.Items[0]
	info := ChannelInfo{
		ID:                it.ID,
		Title:             it.Snippet.Title,
		Description:       it.Snippet.Description,
		Thumbnails:        it.Snippet.Thumbnails,
		UploadsPlaylistID: it.ContentDetails.RelatedPlaylists.Uploads,
	}
	g.cache.set(key, info)
	return info
}

// ChannelStatistics returns view/subscriber/video counters for the
// showcase channel.
func (g *Gateway) ChannelStatistics(ctx context.Context) ChannelStats {
	key := "channel_stats_" + g.cfg.ChannelID
	if v, ok := g.cache.get(key); ok {
		return v.(ChannelStats)
	}

	var resp channelsResponse
	err := g.post(ctx, "/channel-stats", map[string]any{
		"channelId": g.cfg.ChannelID,
	}, &resp)
	if err != nil || len(resp.Items) == 0 {
		g.logFallback("channel stats", err)
		return mockChannelStats()
	}

	it := resp.Items[0]
	stats := ChannelStats{
		Title:           it.Snippet.Title,
		Description:     it.Snippet.Description,
		Thumbnails:      it.Snippet.Thumbnails,
		ViewCount:       it.Statistics.ViewCount,
		SubscriberCount: it.Statistics.SubscriberCount,
		VideoCount:      it.Statistics.VideoCount,
	}
	g.cache.set(key, stats)
	return stats
}

// PlaylistItems pages through a playlist and merges the pages into one
// collection, stopping when the continuation token runs out or the
// requested cap is reached. The cap is the backstop that guarantees
// termination even against an upstream that always hands back a token.
func (g *Gateway) PlaylistItems(ctx context.Context, playlistID string, maxResults int) []Track {
	if maxResults <= 0 {
		maxResults = pageSize
	}
	key := fmt.Sprintf("playlist_%s_%d", playlistID, maxResults)
	if v, ok := g.cache.get(key); ok {
		return v.([]Track)
	}

	var all []Track
	pageToken := ""
	for {
		body := map[string]any{
			"playlistId": playlistID,
			"maxResults": pageSize,
			"part":       "snippet,contentDetails",
		}
		if pageToken != "" {
			body["pageToken"] = pageToken
		}

		var page playlistItemsResponse
		if err := g.post(ctx, "/playlist-items", body, &page); err != nil {
			if len(all) == 0 {
				g.logFallback("playlist items", err)
				return mockChannelTracks(playlistID)
			}
			// Keep what we have; the next cache window retries.
			g.logger.Warn("playlist page fetch failed, keeping partial result",
				"playlist", playlistID, "have", len(all), "err", err)
			break
		}

		all = append(all, page.tracks(playlistID)...)
		if len(all) >= maxResults {
			all = all[:maxResults]
			break
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	g.cache.set(key, all)
	return all
}

// AllChannelVideos resolves the channel's uploads playlist and lists it.
// Tracks from the uploads listing carry no source playlist id.
func (g *Gateway) AllChannelVideos(ctx context.Context, maxResults int) []Track {
	uploads := g.ChannelInfo(ctx).UploadsPlaylistID
	if uploads == "" {
		uploads = g.cfg.FallbackPlaylistID
	}
	items := g.PlaylistItems(ctx, uploads, maxResults)
	out := make([]Track, len(items))
	for i, tr := range items {
		tr.SourcePlaylistID = ""
		out[i] = tr
	}
	return out
}

// VideoDetails looks up per-video duration and counters in one batch.
func (g *Gateway) VideoDetails(ctx context.Context, ids []string) []VideoDetail {
	if len(ids) == 0 {
		return []VideoDetail{}
	}
	key := "videos_" + strings.Join(ids, ",")
	if v, ok := g.cache.get(key); ok {
		return v.([]VideoDetail)
	}

	var resp videosResponse
	err := g.post(ctx, "/videos", map[string]any{
		"videoIds": ids,
		"part":     "snippet,contentDetails,statistics",
	}, &resp)
	if err != nil {
		g.logFallback("video details", err)
		return mockVideoDetails(ids)
	}

	out := make([]VideoDetail, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, VideoDetail{
			ID:           it.ID,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			Thumbnails:   it.Snippet.Thumbnails,
			Duration:     it.ContentDetails.Duration,
			ViewCount:    it.Statistics.ViewCount,
			LikeCount:    it.Statistics.LikeCount,
			CommentCount: it.Statistics.CommentCount,
		})
	}
	g.cache.set(key, out)
	return out
}

// SearchChannelVideos searches within the showcase channel.
func (g *Gateway) SearchChannelVideos(ctx context.Context, query string, maxResults int) []Track {
	if maxResults <= 0 {
		maxResults = 20
	}
	key := fmt.Sprintf("search_%s_%d", query, maxResults)
	if v, ok := g.cache.get(key); ok {
		return v.([]Track)
	}

	var resp searchResponse
	err := g.post(ctx, "/search", map[string]any{
		"q":          query,
		"maxResults": maxResults,
		"part":       "snippet",
		"type":       "video",
		"channelId":  g.cfg.ChannelID,
	}, &resp)
	if err != nil {
		g.logFallback("search", err)
		return mockSearchResults(query)
	}

	hits := resp.tracks()
	g.cache.set(key, hits)
	return hits
}

// ShowcasePlaylists fetches the configured curated playlists
// concurrently and returns them alongside the merged track list.
func (g *Gateway) ShowcasePlaylists(ctx context.Context) ([]Playlist, []Track) {
	ids := g.cfg.ShowcasePlaylistIDs
	results := make([][]Track, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = g.PlaylistItems(ctx, id, pageSize)
		}(i, id)
	}
	wg.Wait()

	playlists := make([]Playlist, len(ids))
	var all []Track
	for i, id := range ids {
		playlists[i] = Playlist{
			ID:     id,
			Title:  fmt.Sprintf("Playlist %d", i+1),
			Tracks: results[i],
		}
		all = append(all, results[i]...)
	}
	return playlists, all
}

func (g *Gateway) logFallback(op string, err error) {
	if errors.Is(err, errDegraded) {
		return
	}
	g.logger.Warn("falling back to mock data", "op", op, "err", err)
}
