package gateway

import "time"

// Thumbnail tiers as the YouTube API reports them.
type Thumbnail struct {
	URL string `json:"url"`
}

type Thumbnails struct {
	Default Thumbnail `json:"default"`
	Medium  Thumbnail `json:"medium"`
	High    Thumbnail `json:"high"`
}

// BestURL prefers the largest available tier.
func (t Thumbnails) BestURL() string {
	if t.High.URL != "" {
		return t.High.URL
	}
	if t.Medium.URL != "" {
		return t.Medium.URL
	}
	return t.Default.URL
}

// Track is one displayable unit derived from an upstream video.
type Track struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Thumbnails       Thumbnails `json:"thumbnails"`
	PublishedAt      time.Time  `json:"publishedAt"`
	SourcePlaylistID string     `json:"sourcePlaylistId,omitempty"`
}

// Playlist is a named, ordered collection of tracks. Rebuilt on every
// aggregation cycle, never persisted.
type Playlist struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Tracks []Track `json:"tracks"`
}

type ChannelInfo struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Thumbnails        Thumbnails `json:"thumbnails"`
	UploadsPlaylistID string     `json:"uploadsPlaylistId"`
}

// ChannelStats carries counters as the API reports them: decimal strings.
type ChannelStats struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Thumbnails      Thumbnails `json:"thumbnails"`
	ViewCount       string     `json:"viewCount"`
	SubscriberCount string     `json:"subscriberCount"`
	VideoCount      string     `json:"videoCount"`
}

type VideoDetail struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Thumbnails   Thumbnails `json:"thumbnails"`
	Duration     string     `json:"duration"` // ISO-8601, e.g. PT3M45S
	ViewCount    string     `json:"viewCount"`
	LikeCount    string     `json:"likeCount"`
	CommentCount string     `json:"commentCount"`
}

// Upstream response shapes, narrowed here at the gateway boundary so the
// rest of the app never touches loosely-shaped API JSON.

type channelsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string     `json:"title"`
			Description string     `json:"description"`
			Thumbnails  Thumbnails `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount       string `json:"viewCount"`
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Title       string     `json:"title"`
			Description string     `json:"description"`
			PublishedAt time.Time  `json:"publishedAt"`
			Thumbnails  Thumbnails `json:"thumbnails"`
			ResourceID  struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string     `json:"title"`
			Description string     `json:"description"`
			Thumbnails  Thumbnails `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string     `json:"title"`
			Description string     `json:"description"`
			PublishedAt time.Time  `json:"publishedAt"`
			Thumbnails  Thumbnails `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (r playlistItemsResponse) tracks(sourcePlaylistID string) []Track {
	out := make([]Track, 0, len(r.Items))
	for _, it := range r.Items {
		id := it.ContentDetails.VideoID
		if id == "" {
			id = it.Snippet.ResourceID.VideoID
		}
		if id == "" {
			continue
		}
		out = append(out, Track{
			ID:               id,
			Title:            it.Snippet.Title,
			Description:      it.Snippet.Description,
			Thumbnails:       it.Snippet.Thumbnails,
			PublishedAt:      it.Snippet.PublishedAt,
			SourcePlaylistID: sourcePlaylistID,
		})
	}
	return out
}

func (r searchResponse) tracks() []Track {
	out := make([]Track, 0, len(r.Items))
	for _, it := range r.Items {
		if it.ID.VideoID == "" {
			continue
		}
		out = append(out, Track{
			ID:          it.ID.VideoID,
			Title:       it.Snippet.Title,
			Description: it.Snippet.Description,
			Thumbnails:  it.Snippet.Thumbnails,
			PublishedAt: it.Snippet.PublishedAt,
		})
	}
	return out
}
