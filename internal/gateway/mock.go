package gateway

import (
	"strconv"
	"time"
)

// Deterministic mock data served whenever live data is unavailable. The
// view layer renders these exactly like live tracks, so an outage or an
// exhausted quota degrades to illustrative content instead of an error.

func placeholderThumb(text string) Thumbnails {
	url := "https://via.placeholder.com/320x180/000000/d4af37?text=" + text
	return Thumbnails{Default: Thumbnail{URL: url}, Medium: Thumbnail{URL: url}}
}

func mockChannelTracks(sourcePlaylistID string) []Track {
	return []Track{
		{
			ID:               "video1",
			Title:            "أغنية عربية رائعة - F90 Studio Production",
			Description:      "أحدث إنتاجات ستوديو F90 من الموسيقى العربية الحديثة",
			Thumbnails:       placeholderThumb("F90+Song+1"),
			PublishedAt:      time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			SourcePlaylistID: sourcePlaylistID,
		},
		{
			ID:               "video2",
			Title:            "موسيقى هادئة للاسترخاء - F90 Music",
			Description:      "موسيقى هادئة ومريحة من إنتاج F90 ستوديو",
			Thumbnails:       placeholderThumb("F90+Song+2"),
			PublishedAt:      time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC),
			SourcePlaylistID: sourcePlaylistID,
		},
		{
			ID:               "video3",
			Title:            "أغنية وطنية عربية - F90 Production",
			Description:      "إنتاج حديث لأغنية وطنية عربية كلاسيكية",
			Thumbnails:       placeholderThumb("F90+Song+3"),
			PublishedAt:      time.Date(2024, 1, 5, 20, 15, 0, 0, time.UTC),
			SourcePlaylistID: sourcePlaylistID,
		},
	}
}

func mockVideoDetails(ids []string) []VideoDetail {
	out := make([]VideoDetail, 0, len(ids))
	for _, id := range ids {
		h := stableHash(id)
		out = append(out, VideoDetail{
			ID:           id,
			Title:        "F90 Studio Song " + id,
			Description:  "Professional Arabic music production by F90 Studio",
			Thumbnails:   placeholderThumb("F90+Song+" + id),
			Duration:     "PT3M45S",
			ViewCount:    strconv.Itoa(10000 + h%100000),
			LikeCount:    strconv.Itoa(1000 + h%5000),
			CommentCount: strconv.Itoa(50 + h%500),
		})
	}
	return out
}

func mockSearchResults(query string) []Track {
	return []Track{
		{
			ID:          "search1",
			Title:       "نتائج البحث عن: " + query,
			Description: "نتائج البحث في قناة F90",
			Thumbnails:  placeholderThumb("Search+Result"),
		},
	}
}

func mockChannelInfo(channelID, fallbackPlaylistID string) ChannelInfo {
	return ChannelInfo{
		ID:                channelID,
		Title:             "F90 Music Studio",
		Description:       "ستوديو موسيقى عربي احترافي - Professional Arabic Music Studio",
		Thumbnails:        placeholderThumb("F90+Channel"),
		UploadsPlaylistID: fallbackPlaylistID,
	}
}

func mockChannelStats() ChannelStats {
	return ChannelStats{
		Title:           "F90 Music Studio",
		Description:     "ستوديو موسيقى عربي احترافي - Professional Arabic Music Studio",
		Thumbnails:      placeholderThumb("F90+Channel"),
		ViewCount:       "1250000",
		SubscriberCount: "15000",
		VideoCount:      "85",
	}
}

// stableHash is the 31-based string hash; it keeps mock counters stable
// per id across calls.
func stableHash(s string) int {
	var h int32
	for _, c := range s {
		h = (h << 5) - h + c
	}
	if h < 0 {
		h = -h
	}
	return int(h)
}
