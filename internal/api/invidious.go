package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"vinyl/internal/logging"
	"vinyl/internal/store"
)

// ErrNoInstances is returned when every configured Invidious instance
// failed to answer.
var ErrNoInstances = errors.New("api: no invidious instance answered")

// defaultInstances are tried in order until one answers. Overridable via
// config ([youtube] invidious_instances) and WithInstances.
var defaultInstances = []string{
	"https://vid.puffyan.us",
	"https://y.com.sb",
	"https://invidious.nerdvpn.de",
	"https://invidious.tiekoetter.com",
	"https://inv.bp.projectsegfau.lt",
}

type invidiousResponse struct {
	Title      string `json:"title"`
	PlaylistID string `json:"playlistId"`
	Videos     []struct {
		Title   string `json:"title"`
		VideoID string `json:"videoId"`
		Index   int    `json:"index"`
	} `json:"videos"`
}

func (c *Client) fetchInvidious(ctx context.Context, sourceID string) (store.Playlist, []*store.Track, error) {
	var lastErr error
	for _, instance := range c.instances {
		c.logger.Info("fetching playlist from invidious",
			logging.String(logging.FieldSourceID, sourceID),
			logging.String("instance", instance))

		playlist, tracks, err := c.invidiousPlaylist(ctx, instance, sourceID)
		if err == nil {
			return playlist, tracks, nil
		}
		if ctx.Err() != nil {
			return store.Playlist{}, nil, ctx.Err()
		}
		c.logger.Warn("invidious instance failed",
			logging.String("instance", instance),
			logging.Error(err))
		lastErr = err
	}
	if lastErr != nil {
		return store.Playlist{}, nil, fmt.Errorf("%w: last attempt: %v", ErrNoInstances, lastErr)
	}
	return store.Playlist{}, nil, ErrNoInstances
}

func (c *Client) invidiousPlaylist(ctx context.Context, instance, sourceID string) (store.Playlist, []*store.Track, error) {
	base := strings.TrimRight(strings.TrimSpace(instance), "/")
	playlist := store.Playlist{SourceID: sourceID}
	var tracks []*store.Track

	// Instances may repeat entries across page boundaries; the index field
	// orders entries globally, so anything at or before the previous page's
	// last index is a repeat.
	lastIndex := -1
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/api/v1/playlists/%s?page=%d", base, url.PathEscape(sourceID), page)
		var resp invidiousResponse
		if err := c.getJSON(ctx, "invidious playlist", endpoint, &resp); err != nil {
			return store.Playlist{}, nil, err
		}
		if resp.Title != "" {
			playlist.Title = resp.Title
		}
		if resp.PlaylistID != "" {
			playlist.SourceID = resp.PlaylistID
		}
		if len(resp.Videos) == 0 {
			return playlist, tracks, nil
		}

		pageLast := resp.Videos[len(resp.Videos)-1].Index
		for _, video := range resp.Videos {
			if video.Index <= lastIndex || skipInvidiousTitle(video.Title) {
				continue
			}
			tracks = append(tracks, &store.Track{Title: video.Title, SourceID: video.VideoID})
		}
		lastIndex = pageLast

		c.logger.Debug("fetched playlist page", logging.Int("tracks", len(tracks)))
	}
}

// skipInvidiousTitle reports the placeholder entries Invidious returns for
// videos that no longer resolve.
func skipInvidiousTitle(title string) bool {
	return title == "[Deleted video]" || title == "[Private video]"
}
